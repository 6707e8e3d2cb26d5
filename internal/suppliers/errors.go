package suppliers

import (
	"fmt"
	"net/http"
)

// Code classifies a supplier error.
type Code string

const (
	CodeMissingInfo      Code = "MissingInfo"
	CodeWrongArgType     Code = "WrongArgType"
	CodeInvalidFormat    Code = "InvalidFormat"
	CodeOutOfRange       Code = "OutOfRange"
	CodeDuplicateProduct Code = "DuplicateProduct"
	CodeUserDefinedID    Code = "UserDefinedIdError"
	CodeNotFound         Code = "NotFound"
	CodePersistence      Code = "PersistenceError"
)

// Error is the error type returned by supplier validation, lookup and persistence.
// errors.Is matches two *Error values by Code, so callers compare against the
// exported sentinels below.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Sentinels for errors.Is.
var (
	ErrMissingInfo      = &Error{Code: CodeMissingInfo, Message: "missing information"}
	ErrWrongArgType     = &Error{Code: CodeWrongArgType, Message: "wrong argument type"}
	ErrInvalidFormat    = &Error{Code: CodeInvalidFormat, Message: "invalid format"}
	ErrOutOfRange       = &Error{Code: CodeOutOfRange, Message: "value out of range"}
	ErrDuplicateProduct = &Error{Code: CodeDuplicateProduct, Message: "duplicate product"}
	ErrUserDefinedID    = &Error{Code: CodeUserDefinedID, Message: "user cannot set the value of id"}
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "supplier not found"}
	ErrPersistence      = &Error{Code: CodePersistence, Message: "persistence failure"}
)

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// ErrorCode returns the machine-readable code rendered in HTTP error bodies.
func (e *Error) ErrorCode() string {
	return string(e.Code)
}

// HTTPStatus maps the code onto a response status.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodePersistence:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func persistenceError(op string, err error) *Error {
	return &Error{Code: CodePersistence, Message: "suppliers: " + op, Err: err}
}
