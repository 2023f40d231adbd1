package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every error returned from a service wraps exactly one of these
// so the HTTP boundary can map it without string matching.
var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrExternalService = errors.New("external service error")
	ErrTimeout         = errors.New("timeout")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

type kindError struct {
	kind error
	msg  string
	err  error
}

func (e *kindError) Error() string {
	switch {
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	default:
		return e.kind.Error()
	}
}

func (e *kindError) Is(target error) bool { return target == e.kind }

func (e *kindError) Unwrap() error { return e.err }

func wrap(kind error, cause error, format string, args ...any) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &kindError{kind: kind, msg: msg, err: cause}
}

func Validation(format string, args ...any) error {
	return wrap(ErrValidation, nil, format, args...)
}

func NotFound(format string, args ...any) error {
	return wrap(ErrNotFound, nil, format, args...)
}

func Conflict(format string, args ...any) error {
	return wrap(ErrConflict, nil, format, args...)
}

func BadRequest(format string, args ...any) error {
	return wrap(ErrInvalidArgument, nil, format, args...)
}

func Timeout(format string, args ...any) error {
	return wrap(ErrTimeout, nil, format, args...)
}

// External marks cause as a failure of a third-party dependency.
func External(cause error, format string, args ...any) error {
	return wrap(ErrExternalService, cause, format, args...)
}

// Status maps an error to its HTTP status. Anything that is not a not-found,
// bad request or conflict is reported as 500.
func Status(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func Code(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Code != "" {
		return ae.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrValidation):
		return "validation_failed"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrExternalService):
		return "external_service_failed"
	default:
		return "internal_error"
	}
}
