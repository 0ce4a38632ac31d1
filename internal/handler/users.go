package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hollmark/staffd/internal/errs"
	"github.com/hollmark/staffd/internal/extractor"
	"github.com/hollmark/staffd/internal/server"
	"github.com/hollmark/staffd/internal/validation"
)

// UsersHandler exposes the extraction demonstration endpoints.
type UsersHandler struct {
	Handler
}

func NewUsersHandler(s *server.Server) *UsersHandler {
	return &UsersHandler{
		Handler: NewHandler(s),
	}
}

// UserInfo is the demo schema echoed back by the payload and json
// endpoints.
type UserInfo struct {
	UserID uint32 `json:"user_id" validate:"required"`
	Friend string `json:"friend" validate:"required"`
}

func (i *UserInfo) Validate() error { return validation.Struct(i) }

// Path greets using two typed path segments.
func (h *UsersHandler) Path(c echo.Context) error {
	userID, err := extractor.PathUint32(c, "user_id")
	if err != nil {
		return err
	}

	friend := c.Param("friend")

	return c.String(http.StatusOK, fmt.Sprintf("Welcome %s! user_id:%d", friend, userID))
}

// Query greets using a required query parameter.
func (h *UsersHandler) Query(c echo.Context) error {
	name, err := extractor.QueryParam(c, "name")
	if err != nil {
		return err
	}

	return c.String(http.StatusOK, fmt.Sprintf("Welcome %s!", name))
}

// Payload reads the body through the bounded accumulator and decodes it
// by hand, keeping size enforcement independent of echo's binder.
func (h *UsersHandler) Payload(c echo.Context) error {
	body, err := extractor.ReadAllBounded(c.Request().Body, h.server.Config.Server.BodyLimit)
	if err != nil {
		return err
	}

	var info UserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return errs.NewBadRequestError("Malformed request payload", false, nil, nil)
	}

	if err := validation.ValidatePayload(&info); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, info)
}

// JSON echoes a typed bind of the same schema.
func (h *UsersHandler) JSON(c echo.Context, req *UserInfo) (*UserInfo, error) {
	return req, nil
}
