package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindUpstreamUnavailable
	KindDatabase
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindDatabase:
		return "database"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error is the application error taxonomy shared by both services.
type Error struct {
	Kind     Kind
	Message  string
	Resource string
	// Status is the upstream HTTP status, when one was received.
	Status int
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindUpstreamUnavailable:
		return http.StatusBadGateway
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Title is the short error label of the response envelope.
func (e *Error) Title() string {
	switch e.Kind {
	case KindValidation:
		return "Validation Failed"
	case KindNotFound:
		return "Resource Not Found"
	case KindUnauthorized:
		return "Unauthorized"
	case KindUpstreamUnavailable:
		return "Upstream Unavailable"
	case KindDatabase:
		return "Database Operation Failed"
	case KindUnavailable:
		return "Service Unavailable"
	default:
		return "Internal Server Error"
	}
}

// PublicMessage hides details of internal failures.
func (e *Error) PublicMessage() string {
	switch e.Kind {
	case KindInternal:
		return "An unexpected error occurred"
	case KindDatabase:
		return "A database error occurred while processing the request"
	default:
		return e.Message
	}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// FieldError reports one invalid input field.
func FieldError(field, message string) *Error {
	return &Error{Kind: KindValidation, Message: field + ": " + message, Resource: field}
}

func NotFound(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", resource, id), Resource: id}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func UpstreamUnavailable(resource string, status int, err error) *Error {
	msg := "upstream service unavailable for " + resource
	if status > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, status)
	}
	return &Error{Kind: KindUpstreamUnavailable, Message: msg, Resource: resource, Status: status, Err: err}
}

func Database(message string, err error) *Error {
	return &Error{Kind: KindDatabase, Message: message, Err: err}
}

func Unavailable(message string, err error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// From classifies any error; errors outside the taxonomy become internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
