// Package validation binds and validates request payloads.
//
// Payload types carry validator tags and implement Validatable; handlers
// call BindAndValidate, which turns binding or validation failures into
// 400 responses with field-level errors.
package validation
