// Package apperrors defines the error taxonomy shared by services and the HTTP layer.
// Every error carries a Kind that maps to an HTTP status, a user-facing message and,
// optionally, the underlying cause.
package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	KindSystem Kind = iota
	KindUnauthenticated
	KindForbidden
	KindBadRequest
	KindInvalidArgument
	KindNotFound
	KindService
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindBadRequest:
		return "bad_request"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindService:
		return "service_error"
	default:
		return "system_error"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindUnauthenticated:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindBadRequest, KindInvalidArgument:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindService:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

var defaultMessages = map[Kind]string{
	KindSystem:          "System error!",
	KindUnauthenticated: "UnAuthenticated",
	KindForbidden:       "Permission Denied",
	KindBadRequest:      "Bad request!",
	KindInvalidArgument: "Invalid argument!",
	KindNotFound:        "Not found!",
	KindService:         "Service error!",
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string, cause error) *Error {
	if message == "" {
		message = defaultMessages[kind]
	}
	return &Error{Kind: kind, Message: message, Err: cause}
}

func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message, nil) }
func Forbidden(message string) *Error       { return New(KindForbidden, message, nil) }
func BadRequest(message string) *Error      { return New(KindBadRequest, message, nil) }
func InvalidArgument(message string) *Error { return New(KindInvalidArgument, message, nil) }
func NotFound(message string) *Error        { return New(KindNotFound, message, nil) }

func Service(message string, cause error) *Error { return New(KindService, message, cause) }
func System(message string, cause error) *Error  { return New(KindSystem, message, cause) }

// Wrap passes *Error values through unchanged and turns anything else into a
// BadRequest with a generic message, keeping the original error as the cause.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return New(KindBadRequest, "", err)
}

// KindOf reports the Kind of err, or KindSystem when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindSystem
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
