// Package errors defines the request-level error taxonomy and its mapping
// onto HTTP status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a terminal failure class of the deployment pipeline.
type Code string

const (
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeBadRequest       Code = "BAD_REQUEST"
	CodeProjectExists    Code = "PROJECT_EXISTS"
	CodeProjectNotFound  Code = "PROJECT_NOT_FOUND"
	CodeGenerationFailed Code = "GENERATION_FAILED"
	CodePublishFailed    Code = "PUBLISH_FAILED"
	CodeNotifyFailed     Code = "NOTIFY_FAILED"
)

// Error is a coded error carrying a caller-safe message. The wrapped cause
// is kept for logs; only Message is meant to leave the process.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error without an underlying cause.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(code Code, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf extracts the Code from err, or empty string for uncoded errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HTTPStatus maps an error to the response status the orchestrator returns.
// Uncoded errors are treated as internal failures.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeProjectExists:
		return http.StatusConflict
	case CodeProjectNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
