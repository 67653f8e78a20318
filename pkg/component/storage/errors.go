package storage

import (
	"errors"
	"fmt"
	"maps"
)

// Common storage error types.
// They can be compared with errors.Is and enriched with WithMessage,
// WithCause or WithContext without losing that property.
var (
	// ErrNotConnected indicates that a client was used after it was closed
	// or before it was ever connected.
	ErrNotConnected = &StorageError{
		Code:    "NOT_CONNECTED",
		Message: "storage client is not connected",
	}

	// ErrConnectionFailed indicates that the backend could not be reached.
	ErrConnectionFailed = &StorageError{
		Code:    "CONNECTION_FAILED",
		Message: "failed to connect to storage backend",
	}

	// ErrTimeout indicates that a storage operation exceeded its deadline.
	ErrTimeout = &StorageError{
		Code:    "TIMEOUT",
		Message: "storage operation timed out",
	}

	// ErrInvalidConfig indicates that the declared configuration cannot
	// produce a working client: a malformed connection URI, an unknown host,
	// or a server that does not answer when the client is first built.
	ErrInvalidConfig = &StorageError{
		Code:    "INVALID_CONFIG",
		Message: "invalid storage configuration",
	}

	// ErrClientNotFound indicates that nothing is registered under the
	// requested key, so the dependency cannot be resolved.
	ErrClientNotFound = &StorageError{
		Code:    "CLIENT_NOT_FOUND",
		Message: "storage client not found",
	}

	// ErrClientAlreadyExists indicates that a resource with the same key
	// is already registered.
	ErrClientAlreadyExists = &StorageError{
		Code:    "CLIENT_ALREADY_EXISTS",
		Message: "storage client already exists",
	}

	// ErrUnresolvedQualifier indicates that a qualifier lacks a field the
	// requested handle needs (a database name, or a collection name when a
	// collection is requested).
	ErrUnresolvedQualifier = &StorageError{
		Code:    "UNRESOLVED_QUALIFIER",
		Message: "qualifier is missing required fields",
	}
)

// StorageError represents a storage-related error with a code and message.
type StorageError struct {
	// Code is a machine-readable error code (e.g., "INVALID_CONFIG").
	Code string

	// Message is a human-readable error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error

	// Context holds additional debugging information.
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a StorageError with the same code.
func (e *StorageError) Is(target error) bool {
	t, ok := target.(*StorageError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// clone returns a shallow copy sharing the context map.
func (e *StorageError) clone() *StorageError {
	c := *e
	return &c
}

// WithMessage returns a copy of the error with a new message.
//
//	err := storage.ErrClientNotFound.WithMessage("mongodb:client is not registered")
func (e *StorageError) WithMessage(msg string) *StorageError {
	c := e.clone()
	c.Message = msg
	return c
}

// WithCause returns a copy of the error wrapping cause.
//
//	err := storage.ErrInvalidConfig.WithCause(parseErr)
func (e *StorageError) WithCause(cause error) *StorageError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithContext returns a copy of the error with ctx merged into its context.
// The receiver's context is not modified.
func (e *StorageError) WithContext(ctx map[string]interface{}) *StorageError {
	c := e.clone()
	c.Context = make(map[string]interface{}, len(e.Context)+len(ctx))
	maps.Copy(c.Context, e.Context)
	maps.Copy(c.Context, ctx)
	return c
}

// GetContext retrieves a context value by key.
func (e *StorageError) GetContext(key string) (interface{}, bool) {
	val, ok := e.Context[key]
	return val, ok
}

// IsStorageError checks if an error chain contains a StorageError.
func IsStorageError(err error) bool {
	_, ok := GetStorageError(err)
	return ok
}

// GetStorageError extracts the outermost StorageError from an error chain.
func GetStorageError(err error) (*StorageError, bool) {
	var storageErr *StorageError
	ok := errors.As(err, &storageErr)
	return storageErr, ok
}
