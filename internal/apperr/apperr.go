// Package apperr defines the error kinds every handler renders through
// response.Error.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// Error is an expected failure. Message is safe to show to clients;
// Err is the underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Detail  string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a per-field validation failure.
func Validation(fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: "The given data was invalid.", Fields: fields}
}

// FieldError is shorthand for a validation failure on a single field.
func FieldError(field, msg string) *Error {
	return Validation(map[string][]string{field: {msg}})
}

func NotFound(msg, detail string) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Detail: detail}
}

// ResourceNotFound is the generic 404 used when a route parameter
// references nothing.
func ResourceNotFound() *Error {
	return NotFound("Resource not found", "The requested resource does not exist.")
}

func Conflict(msg, detail string) *Error {
	return &Error{Kind: KindConflict, Message: msg, Detail: detail}
}

func Unauthorized(detail string) *Error {
	return &Error{Kind: KindUnauthorized, Message: "Unauthorized", Detail: detail}
}

func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Message: op, Err: err}
}

// KindOf reports the kind of err, KindInternal for anything unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
