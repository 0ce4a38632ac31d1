package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/hollmark/staffd/internal/server"
)

// GuardMiddleware gates individual routes behind required request headers.
// A request that fails a guard gets the same 404 a nonexistent route
// produces, so guarded routes are indistinguishable from absent ones.
type GuardMiddleware struct {
	server *server.Server
}

func NewGuardMiddleware(s *server.Server) *GuardMiddleware {
	return &GuardMiddleware{
		server: s,
	}
}

// RequireHeader returns route middleware that rejects the request with a
// routing 404 unless the given header matches value exactly.
func (g *GuardMiddleware) RequireHeader(header, value string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get(header) != value {
				g.recordGuardMiss(c.Path())
				return echo.ErrNotFound
			}
			return next(c)
		}
	}
}

// recordGuardMiss emits a custom event so probing of guarded routes shows
// up in APM without changing what the client sees.
func (g *GuardMiddleware) recordGuardMiss(endpoint string) {
	if g.server.LoggerService != nil && g.server.LoggerService.GetApplication() != nil {
		g.server.LoggerService.GetApplication().RecordCustomEvent("GuardMiss", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}
