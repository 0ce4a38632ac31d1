// Package service contains the business logic between handlers and
// storage.
//
// Services own the blocking-call discipline: every repository call is
// wrapped in a closure and dispatched to the offload executor, so
// request goroutines only ever await results. Storage errors are
// funneled through sqlerr.HandleError on the way back so handlers deal
// in client-facing errors only.
package service
