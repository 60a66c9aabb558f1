package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError so the transport layer can pick a status
// without string-matching messages.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindNoOpUpdate
	KindDecode
	KindStorage
)

// AppError is the single error type crossing service boundaries.
type AppError struct {
	Kind    Kind
	Message string
	Err     error `json:"-"` // Internal cause for logging
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status maps the error kind to an HTTP status code.
func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation, KindNoOpUpdate:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Validation flags a client-fault request (missing/out-of-range field).
func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// NotFound flags an id with no matching record.
func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

// NoOpUpdate flags an update whose allow-listed field set is empty.
func NoOpUpdate(message string) *AppError {
	return &AppError{Kind: KindNoOpUpdate, Message: message}
}

// Decode flags stored metadata/tags text that is not well-formed.
func Decode(message string, err error) *AppError {
	return &AppError{Kind: KindDecode, Message: message, Err: err}
}

// Storage flags an unreachable or failing backing store. Not retried here;
// retry policy belongs to the caller.
func Storage(err error) *AppError {
	return &AppError{Kind: KindStorage, Message: "storage unavailable", Err: err}
}

// Is reports whether err is an AppError of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
