package usecase

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindConflict     ErrorKind = "conflict"
	KindNotFound     ErrorKind = "not_found"
	KindExpired      ErrorKind = "expired"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
)

// Error is a failure the caller can act on. Anything else returned by a
// service is internal.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func ValidationError(message string) *Error {
	return newError(KindValidation, message)
}

// FieldsError reports per-field validation failures.
func FieldsError(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

func ConflictError(message string) *Error {
	return newError(KindConflict, message)
}

func NotFoundError(message string) *Error {
	return newError(KindNotFound, message)
}

func ExpiredError(message string) *Error {
	return newError(KindExpired, message)
}

func UnauthorizedError(message string) *Error {
	return newError(KindUnauthorized, message)
}

func ForbiddenError(message string) *Error {
	return newError(KindForbidden, message)
}

// KindOf returns the kind of err, or "" when it is not a service error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
