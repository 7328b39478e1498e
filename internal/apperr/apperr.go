// Package apperr defines the normalized errors handed to views.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for presentation
type Kind int

const (
	KindServer Kind = iota
	KindValidation
	KindPermission
	KindInvalidCredentials
	KindConflict
	KindNotFound
	KindNetwork
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPermission:
		return "permission"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindNetwork:
		return "network"
	default:
		return "server"
	}
}

// Message returns the user-facing message for the kind
func (k Kind) Message() string {
	switch k {
	case KindValidation:
		return "Invalid data. Please check the fields."
	case KindPermission:
		return "You do not have permission to perform this action."
	case KindInvalidCredentials:
		return "Invalid credentials. Check your username and password."
	case KindConflict:
		return "The username or email already exists. Try different details."
	case KindNotFound:
		return "Resource not found."
	case KindNetwork:
		return "Network error. Check your connection."
	default:
		return "Server error."
	}
}

// Error is the normalized error returned by the classifying layers
type Error struct {
	Kind    Kind
	Status  int // 0 when no response was received
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind with its default message
func New(kind Kind, status int, err error) *Error {
	return &Error{Kind: kind, Status: status, Message: kind.Message(), Err: err}
}

// Validation creates a client-side precondition failure
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or KindServer for unclassified errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// IsKind reports whether err is an *Error of kind k
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
