// Package errs defines the error types returned to API clients.
//
// Handlers and services return *HTTPError values (directly or wrapped);
// the router's error handler serializes them as JSON. Anything that is
// not an *HTTPError is collapsed into a generic 500 so internal details
// never reach the wire.
package errs
