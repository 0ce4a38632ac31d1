// Package handler is the HTTP layer: it parses and validates requests,
// calls the service layer, and serializes results. Entity endpoints go
// through the typed pipeline in base.go; status-style endpoints answer
// with the Response envelope.
package handler
