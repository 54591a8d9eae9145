// Package apperror defines the error taxonomy shared by services and handlers.
// Services return *Error values; handlers turn them into HTTP responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error
type Kind string

const (
	NotFound              Kind = "NotFound"
	InvalidCredential     Kind = "InvalidCredential"
	Duplicate             Kind = "Duplicate"
	Forbidden             Kind = "Forbidden"
	DependencyUnavailable Kind = "DependencyUnavailable"
	StoreFailure          Kind = "StoreFailure"
	Validation            Kind = "Validation"
)

// Error is an application error with a user-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status matching the error kind
func (e *Error) StatusCode() int {
	switch e.Kind {
	case NotFound:
		return http.StatusNotFound
	case InvalidCredential:
		return http.StatusUnauthorized
	case Duplicate:
		return http.StatusConflict
	case Forbidden:
		return http.StatusForbidden
	case DependencyUnavailable:
		return http.StatusBadGateway
	case Validation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Response is the JSON body written for a failed request.
type Response struct {
	Error   Kind   `json:"error"`
	Message string `json:"message"`
}

// Response converts e to its client payload. The cause is never included.
func (e *Error) Response() Response {
	return Response{Error: e.Kind, Message: e.Message}
}

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NewNotFound(message string) *Error          { return New(NotFound, message, nil) }
func NewInvalidCredential(message string) *Error { return New(InvalidCredential, message, nil) }
func NewDuplicate(message string) *Error         { return New(Duplicate, message, nil) }
func NewForbidden(message string) *Error         { return New(Forbidden, message, nil) }

func NewValidation(message string, err error) *Error {
	return New(Validation, message, err)
}

func NewStoreFailure(message string, err error) *Error {
	return New(StoreFailure, message, err)
}

func NewDependencyUnavailable(message string, err error) *Error {
	return New(DependencyUnavailable, message, err)
}

// From returns the *Error in err's chain, or a StoreFailure wrapping err
// when the chain carries none.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewStoreFailure("Internal server error", err)
}

// KindOf returns the kind of err, StoreFailure when unclassified.
func KindOf(err error) Kind {
	return From(err).Kind
}

// Is reports whether err carries an application error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
