// Package failure classifies everything that can go wrong while the client
// changes a relation, and turns it into the notice shown to the user.
//
// Usage:
//
//	if errors.Is(err, failure.ErrConflict) {
//	    // duplicate membership
//	}
//
//	switch failure.KindOf(err) {
//	case failure.Unauthenticated:
//	    // prompt to log in
//	}
package failure

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net"
	"net/http"
	"slices"
	"strings"
)

// Kind is the classified category of a failure.
type Kind string

const (
	Unauthenticated   Kind = "unauthenticated"
	ValidationFailure Kind = "validation_failure"
	Conflict          Kind = "conflict"
	NotFound          Kind = "not_found"
	ServerError       Kind = "server_error"
	NetworkError      Kind = "network_error"
	Timeout           Kind = "timeout"

	// Raised locally before a request is sent.
	DuplicateEntry Kind = "duplicate_entry"
	EmptyName      Kind = "empty_name"
	SelfLike       Kind = "self_like"
)

// Sentinels for errors.Is; any *Error of the same Kind matches.
var (
	ErrUnauthenticated = &Error{Kind: Unauthenticated}
	ErrValidation      = &Error{Kind: ValidationFailure}
	ErrConflict        = &Error{Kind: Conflict}
	ErrNotFound        = &Error{Kind: NotFound}
	ErrServer          = &Error{Kind: ServerError}
	ErrNetwork         = &Error{Kind: NetworkError}
	ErrTimeout         = &Error{Kind: Timeout}
	ErrDuplicateEntry  = &Error{Kind: DuplicateEntry}
	ErrEmptyName       = &Error{Kind: EmptyName}
	ErrSelfLike        = &Error{Kind: SelfLike}
)

const genericMessage = "Something went wrong. Please try again."

// Error is a classified failure. Status is the HTTP status when the failure
// came from a response, zero otherwise.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Status  int
	cause   error
}

// New returns a failure of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns a failure of the given kind caused by err.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, cause: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// FromStatus classifies a non-2xx response.
func FromStatus(status int, message string, fields map[string]string) *Error {
	var kind Kind
	switch {
	case status == http.StatusUnauthorized:
		kind = Unauthenticated
	case status == http.StatusNotFound:
		kind = NotFound
	case status == http.StatusConflict:
		kind = Conflict
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		kind = ValidationFailure
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		kind = Timeout
	default:
		kind = ServerError
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{Kind: kind, Message: message, Fields: fields, Status: status}
}

// Classify returns err as an *Error, wrapping unclassified errors as transport failures.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	kind := KindOf(err)
	return Wrap(kind, string(kind), err)
}

// KindOf returns the kind of err. Errors that are not *Error are treated as
// transport failures: deadlines and net timeouts are Timeout, the rest NetworkError.
// KindOf(nil) is the empty Kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Timeout
	}
	return NetworkError
}

// UserMessage returns the notice shown for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var fe *Error
	errors.As(err, &fe)

	switch KindOf(err) {
	case Unauthenticated:
		return "Your session has expired. Please log in again."
	case ValidationFailure:
		if fe != nil && len(fe.Fields) > 0 {
			parts := make([]string, 0, len(fe.Fields))
			for _, field := range slices.Sorted(maps.Keys(fe.Fields)) {
				parts = append(parts, field+": "+fe.Fields[field])
			}
			return strings.Join(parts, "; ")
		}
		return messageOr(fe, "Some fields are invalid.")
	case Conflict:
		return messageOr(fe, "Game already in list")
	case NotFound:
		return messageOr(fe, "Not found")
	case DuplicateEntry:
		return "This game is already in your Hall of Fame"
	case EmptyName:
		return "List name cannot be empty"
	case SelfLike:
		return "You cannot like your own review"
	default:
		return genericMessage
	}
}

func messageOr(fe *Error, fallback string) string {
	if fe != nil && fe.Message != "" {
		return fe.Message
	}
	return fallback
}
