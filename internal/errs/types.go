package errs

import (
	"fmt"
	"net/http"
)

// NewBadRequestError creates a 400 Bad Request HTTPError. code replaces
// the default "BAD_REQUEST" code when non-nil; errors carries optional
// field-level details.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewPayloadTooLargeError creates the 400 returned when a request body
// exceeds the configured ceiling. The ceiling is enforced while the body
// is read, so the decoder never sees an oversized payload.
func NewPayloadTooLargeError(limit int64) *HTTPError {
	code := "PAYLOAD_TOO_LARGE"

	return NewBadRequestError(
		fmt.Sprintf("Request payload exceeds %d bytes", limit),
		true,
		&code,
		nil,
	)
}

// NewInternalServerError creates a generic 500. The message is the bare
// status text; the underlying cause stays in the logs.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

// ValidationError converts a validation failure into a 400 with a
// consistent message prefix.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("Validation failed: "+err.Error(), false, nil, nil)
}
