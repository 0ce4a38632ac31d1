package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/hollmark/staffd/internal/middleware"
	"github.com/hollmark/staffd/internal/server"
	"github.com/hollmark/staffd/internal/validation"
)

// Handler is the base type holding shared application dependencies. It is
// embedded by the concrete handlers so they reach config, loggers, and the
// rest of the container through one field.
type Handler struct {
	server *server.Server
}

// NewHandler constructs a base Handler. Returned by value; the struct only
// holds a pointer.
func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint function. It receives the bound and
// validated request payload and returns the response value or an error.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// Payload constrains PReq to a pointer to Req that validates itself. The
// pointer form lets Handle allocate a fresh payload per request, so
// concurrent requests never bind into shared memory.
type Payload[Req any] interface {
	*Req
	validation.Validatable
}

// Handle wraps a typed endpoint function into an echo.HandlerFunc. The
// shared pipeline binds and validates the payload, times both phases,
// reports failures to the active transaction, and writes the result as
// JSON with the given status.
//
// Usage:
//
//	g.POST("/employee", handler.Handle(h, h.Create, http.StatusCreated))
func Handle[Req any, PReq Payload[Req], Res any](
	h Handler,
	handler HandlerFunc[PReq, Res],
	status int,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req Req
		return handleRequest(c, PReq(&req), func(c echo.Context, req PReq) (interface{}, error) {
			return handler(c, req)
		}, status)
	}
}

// handleRequest is the shared execution pipeline behind every typed
// endpoint: bind + validate, run the handler, write the JSON response.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (interface{}, error),
	status int,
) error {
	start := time.Now()
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", "handler").
		Str("method", c.Request().Method).
		Str("route", route).
		Logger()

	validationStart := time.Now()

	if err := validation.BindAndValidate(c, req); err != nil {
		validationDuration := time.Since(validationStart)

		logger.Error().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}

		return err
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		totalDuration := time.Since(start)

		logger.Error().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", totalDuration).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
			txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		}
		return err
	}

	totalDuration := time.Since(start)

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
	}

	logger.Info().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed")

	return c.JSON(status, result)
}
