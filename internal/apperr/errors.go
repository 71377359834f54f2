// Package apperr defines the error taxonomy shared by the engine and its transports.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation creates a ValidationError for the given field.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// UpstreamUnavailableError is returned when the text generation client was never constructed.
type UpstreamUnavailableError struct {
	// Missing names the credential or setting that prevented construction.
	Missing string
	Err     error
}

func (e *UpstreamUnavailableError) Error() string {
	msg := "AI service not initialized"
	if e.Missing != "" {
		msg = fmt.Sprintf("%s. Please check your %s", msg, e.Missing)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Err }

// UpstreamParseError describes generated text that could not be interpreted.
// It is recovered inside the engine and never reaches callers.
type UpstreamParseError struct {
	Reason string
	Err    error
}

func (e *UpstreamParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse generated response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse generated response: %s", e.Reason)
}

func (e *UpstreamParseError) Unwrap() error { return e.Err }

// TransformError is returned when an upstream payload has an unexpected shape.
type TransformError struct {
	Err error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("failed to transform profile data: %v", e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// NewTransform wraps err into a TransformError.
func NewTransform(format string, args ...any) *TransformError {
	return &TransformError{Err: fmt.Errorf(format, args...)}
}

// Status maps an error to the HTTP status code used by the transport layer.
func Status(err error) int {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the message that is safe to expose to API clients.
func PublicMessage(err error) string {
	var transform *TransformError
	if errors.As(err, &transform) {
		return "Failed to transform profile data"
	}
	return err.Error()
}
