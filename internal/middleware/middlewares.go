package middleware

import (
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/hollmark/staffd/internal/server"
)

// Middlewares groups the middleware components used by the HTTP server so
// routing code wires them from one place.
type Middlewares struct {
	// Global holds middleware applied to every route: CORS, request
	// logging, recovery, secure headers, gzip, and the global error
	// handler.
	Global *GlobalMiddlewares

	// ContextEnhancer enriches each request with a request-scoped logger
	// (request_id, method, path, ip, trace metadata).
	ContextEnhancer *ContextEnhancer

	// Tracing provides the New Relic middleware and transaction
	// attribute helpers.
	Tracing *TracingMiddleware

	// Guard provides per-route header guards.
	Guard *GuardMiddleware
}

// NewMiddlewares constructs all middleware components from the application
// container. When New Relic is not configured nrApp stays nil and tracing
// degrades to a no-op.
func NewMiddlewares(s *server.Server) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		Guard:           NewGuardMiddleware(s),
	}
}
