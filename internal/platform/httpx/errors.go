// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// StatusError is implemented by domain errors that know their HTTP mapping.
type StatusError interface {
	error
	HTTPStatus() int
	ErrorCode() string
}

// Error is a transport level failure such as a rejected content type.
type Error struct {
	Status int
	Code   string
	Detail string
}

func (e *Error) Error() string   { return e.Detail }
func (e *Error) HTTPStatus() int { return e.Status }
func (e *Error) ErrorCode() string {
	return e.Code
}

// ErrUnsupportedMediaType rejects bodies not declared as JSON.
var ErrUnsupportedMediaType = &Error{
	Status: http.StatusUnsupportedMediaType,
	Code:   "UnsupportedMediaType",
	Detail: "Content-Type must be application/json",
}

// RespondError maps err onto a JSON error body. Errors without an HTTP mapping
// become 500 InternalError and their detail is not exposed.
func RespondError(w http.ResponseWriter, err error) {
	var se StatusError
	if errors.As(err, &se) {
		status := se.HTTPStatus()
		message := se.Error()
		if status >= http.StatusInternalServerError {
			message = http.StatusText(status)
		}
		Fail(w, status, se.ErrorCode(), message)
		return
	}
	Fail(w, http.StatusInternalServerError, "InternalError", http.StatusText(http.StatusInternalServerError))
}

// IsServerError reports whether err renders as a 5xx response.
func IsServerError(err error) bool {
	var se StatusError
	if errors.As(err, &se) {
		return se.HTTPStatus() >= http.StatusInternalServerError
	}
	return err != nil
}
