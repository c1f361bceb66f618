package servererrors

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
	KindExternalProvider
	KindPersistence
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindExternalProvider:
		return "external_provider"
	case KindPersistence:
		return "persistence"
	case KindBadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}

var statusByKind = map[Kind]int{
	KindInternal:         http.StatusInternalServerError,
	KindValidation:       http.StatusUnprocessableEntity,
	KindNotFound:         http.StatusNotFound,
	KindUnauthorized:     http.StatusUnauthorized,
	KindForbidden:        http.StatusForbidden,
	KindConflict:         http.StatusConflict,
	KindExternalProvider: http.StatusPaymentRequired,
	KindPersistence:      http.StatusServiceUnavailable,
	KindBadRequest:       http.StatusBadRequest,
}

type ServerError struct {
	StatusCode int
	Kind       Kind
	Message    string
	Errors     any
	cause      error
}

func (e *ServerError) Error() string {
	return e.Message
}

func (e *ServerError) Unwrap() error {
	return e.cause
}

// New builds an error for an explicit status code, e.g. a malformed payload.
// Codes without a kind of their own are internal.
func New(statusCode int, message string, errs any) *ServerError {
	kind := KindInternal
	for k, s := range statusByKind {
		if s == statusCode {
			kind = k
			break
		}
	}
	return &ServerError{
		StatusCode: statusCode,
		Kind:       kind,
		Message:    message,
		Errors:     errs,
	}
}

// Wrap classifies cause under kind. The message is the cause's message, and
// errors.Is still sees the cause.
func Wrap(kind Kind, cause error) *ServerError {
	return &ServerError{
		StatusCode: statusByKind[kind],
		Kind:       kind,
		Message:    cause.Error(),
		cause:      cause,
	}
}

func Validation(cause error, errs any) *ServerError {
	e := Wrap(KindValidation, cause)
	e.Errors = errs
	return e
}

func NotFound(cause error) *ServerError         { return Wrap(KindNotFound, cause) }
func Unauthorized(cause error) *ServerError     { return Wrap(KindUnauthorized, cause) }
func Forbidden(cause error) *ServerError        { return Wrap(KindForbidden, cause) }
func Conflict(cause error) *ServerError         { return Wrap(KindConflict, cause) }
func ExternalProvider(cause error) *ServerError { return Wrap(KindExternalProvider, cause) }

// Persistence hides the driver error from clients but keeps it for logs.
func Persistence(cause error) *ServerError {
	return &ServerError{
		StatusCode: statusByKind[KindPersistence],
		Kind:       KindPersistence,
		Message:    ErrStoreUnavailable.Error(),
		cause:      cause,
	}
}

// KindOf returns the kind of the first ServerError in err's chain.
func KindOf(err error) Kind {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
