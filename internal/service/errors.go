package service

import (
	"errors"
	"fmt"

	"streamaccts/internal/repository"
)

type ErrorKind int

const (
	KindInvalid ErrorKind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is a business failure whose message is safe to show the caller.
type Error struct {
	Kind    ErrorKind
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

func Invalid(message string) *Error {
	return &Error{Kind: KindInvalid, Message: message}
}

func Unauthorized(message string, err error) *Error {
	return &Error{Kind: KindUnauthorized, Message: message, Err: err}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

var (
	ErrAccessDenied  = &Error{Kind: KindForbidden, Message: "Access denied"}
	ErrAdminRequired = &Error{Kind: KindForbidden, Message: "Admin access required"}
)

// notFoundAs turns a repository miss into a NotFound for resource and wraps
// anything else with op.
func notFoundAs(err error, resource, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound(resource)
	}
	return fmt.Errorf("%s: %w", op, err)
}
