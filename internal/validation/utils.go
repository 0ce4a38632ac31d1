package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/hollmark/staffd/internal/errs"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validatable is implemented by request payload types that know how to
// validate themselves, usually by calling Struct with their tags.
type Validatable interface {
	Validate() error
}

// Struct runs tag-based validation against v.
func Struct(v any) error {
	return validate.Struct(v)
}

// CustomValidationError is a validation issue that cannot be expressed
// via validator tags.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that
// satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// BindAndValidate binds the request into payload and validates it.
// Binding failures and validation failures both come back as 400s.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return errs.NewBadRequestError(bindErrorMessage(err), false, nil, nil)
	}

	return ValidatePayload(payload)
}

// ValidatePayload validates an already-bound payload, producing the same
// 400 shape BindAndValidate does. Used where the body is read manually
// instead of through echo's binder.
func ValidatePayload(payload Validatable) error {
	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewBadRequestError(msg, true, nil, fieldErrors)
	}

	return nil
}

// bindErrorMessage extracts the client-facing message from an echo bind
// failure without depending on the error's string format.
func bindErrorMessage(err error) string {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return fmt.Sprint(echoErr.Message)
	}

	return "Malformed request payload"
}

func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}

	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var customErrors CustomValidationErrors
	if errors.As(err, &customErrors) {
		for _, ce := range customErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: ce.Field,
				Error: ce.Message,
			})
		}

		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed", []errs.FieldError{{Field: "", Error: err.Error()}}
	}

	for _, ve := range validationErrors {
		field := strings.ToLower(ve.Field())
		var msg string

		switch ve.Tag() {
		case "required":
			msg = "is required"

		case "min":
			if ve.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", ve.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", ve.Param())
			}

		case "max":
			if ve.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", ve.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", ve.Param())
			}

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", ve.Param())

		case "email":
			msg = "must be a valid email address"

		case "dive":
			msg = "some items are invalid"

		default:
			if ve.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, ve.Tag(), ve.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, ve.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}
