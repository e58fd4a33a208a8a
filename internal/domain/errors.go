// Package domain defines core types, ports, and errors for iolib.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every typed error below unwraps to one of these so callers can
// match with errors.Is while still using errors.As for the category.
var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrMissingSchema     = errors.New("missing schema")
	ErrInvalidDataset    = errors.New("invalid dataset")
	ErrMissingDataset    = errors.New("missing dataset")
	ErrMissingTable      = errors.New("missing table")
	ErrMissingQuery      = errors.New("missing query")
	ErrInvalidPolicy     = errors.New("invalid existence policy")
	ErrInvalidType       = errors.New("invalid permission type")
	ErrInvalidRole       = errors.New("invalid permission role")
	ErrInvalidMode       = errors.New("invalid sync mode")
	ErrInvalidKeys       = errors.New("invalid permission keys")
	ErrTooManyColumns    = errors.New("too many columns")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMissingObject     = errors.New("missing object name or prefix")
	ErrInvalidInput      = errors.New("invalid input")

	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrAmbiguousName = errors.New("ambiguous name")
	ErrWrite         = errors.New("write failed")
)

// NotFoundError indicates a remote resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// Unwrap lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError indicates invalid input, raised before any remote call.
type ValidationError struct {
	Kind    error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap returns the error kind.
func (e *ValidationError) Unwrap() error { return e.Kind }

// ConflictError indicates the remote state contradicts the request
// (an existing destination under the fail policy, or several name matches).
type ConflictError struct {
	Kind    error
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Unwrap returns the error kind.
func (e *ConflictError) Unwrap() error { return e.Kind }

// ErrorDetail mirrors the vendor's structured error entry.
type ErrorDetail struct {
	Message string `json:"message"`
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
}

// TableNotFoundError is the standardized descriptor for an absent table.
type TableNotFoundError struct {
	Message string
	Errors  []ErrorDetail
}

func (e *TableNotFoundError) Error() string { return e.Message }

// Unwrap lets errors.Is(err, ErrNotFound) match.
func (e *TableNotFoundError) Unwrap() error { return ErrNotFound }

// NewTableNotFound builds the descriptor for project:dataset.table.
func NewTableNotFound(ref TableRef) *TableNotFoundError {
	msg := fmt.Sprintf("Not found: Table %s:%s.%s", ref.ProjectID, ref.DatasetID, ref.TableID)
	return &TableNotFoundError{
		Message: msg,
		Errors:  []ErrorDetail{{Message: msg, Domain: "global", Reason: "notFound"}},
	}
}

// WriteError wraps the failure payload a remote write call reported.
type WriteError struct {
	Payload []InsertFailure
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%v", e.Payload)
}

// Unwrap lets errors.Is(err, ErrWrite) match.
func (e *WriteError) Unwrap() error { return ErrWrite }

// ErrValidation creates a ValidationError of the given kind with a formatted message.
func ErrValidation(kind error, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError of the given kind with a formatted message.
func ErrConflict(kind error, format string, args ...interface{}) *ConflictError {
	return &ConflictError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ErrNotFoundf creates a NotFoundError with a formatted message.
func ErrNotFoundf(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}
