package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hollmark/staffd/internal/middleware"
	"github.com/hollmark/staffd/internal/server"
)

// SystemHandler serves the non-business demonstration endpoints.
type SystemHandler struct {
	Handler
}

func NewSystemHandler(s *server.Server) *SystemHandler {
	return &SystemHandler{
		Handler: NewHandler(s),
	}
}

// Index answers the classic greeting.
func (h *SystemHandler) Index(c echo.Context) error {
	return c.String(http.StatusOK, "Hello world!")
}

// Stream writes the response incrementally as a chunked stream instead
// of a buffered body.
func (h *SystemHandler) Stream(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEOctetStream)
	c.Response().WriteHeader(http.StatusOK)

	if _, err := c.Response().Write([]byte("test")); err != nil {
		return err
	}
	c.Response().Flush()

	return nil
}

// demoError is the deliberate failure produced by the error endpoint.
type demoError struct {
	name string
}

func (e demoError) Error() string {
	return "my error: " + e.name
}

// Error demonstrates the error envelope: the failure is logged and the
// envelope carries its text with a 500.
func (h *SystemHandler) Error(c echo.Context) error {
	err := demoError{name: "test error"}

	middleware.GetLogger(c).Info().Msg(err.Error())

	return c.JSON(http.StatusInternalServerError, Response{
		Status:  "error",
		Message: err.Error(),
	})
}

// Resource is the header-guarded probe target; reaching it at all is the
// demonstration, so the body stays empty.
func (h *SystemHandler) Resource(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}
