// Package errors defines the KARA error taxonomy: a small set of error
// categories, each carrying structured context, following the same
// AppError/Wrap/Is shape the teacher uses for its own HTTP-facing errors.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType categorizes an AppError.
type ErrorType string

const (
	// ErrorTypeInvalidConfiguration marks a planner.Config/config.Options value that
	// violates its own preconditions (non-positive MaxChunkSize, Epsilon
	// outside (0,1), a nil Hasher or Splitter).
	ErrorTypeInvalidConfiguration ErrorType = "invalid_configuration"
	// ErrorTypeOversizedSegment marks a single segment whose length already
	// exceeds MaxChunkSize, making no partition feasible.
	ErrorTypeOversizedSegment ErrorType = "oversized_segment"
	// ErrorTypeNotFound marks a lookup that found nothing. (The cache does
	// not use it: RedisStore.Load reports an unknown corpus as (nil, nil).)
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeExternal marks a failure from a collaborator outside the
	// process: Redis, Qdrant, the filesystem watcher.
	ErrorTypeExternal ErrorType = "external"
	// ErrorTypeInternal marks a failure that should not be reachable given
	// the package's own invariants.
	ErrorTypeInternal ErrorType = "internal"
)

// AppError is an application error carrying a category and structured
// context, so callers can branch on Type without parsing Message.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Context map[string]any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the errors.Unwrap interface.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with no wrapped cause.
func New(errType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Context: make(map[string]any),
	}
}

// Wrap wraps an existing error with a category and message.
func Wrap(err error, errType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
		Context: make(map[string]any),
	}
}

// WithContext attaches a key/value pair to the error and returns it.
func (e *AppError) WithContext(key string, value any) *AppError {
	e.Context[key] = value
	return e
}

// Is reports whether err is an AppError of the given type.
func Is(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// InvalidConfigurationError reports a planner.Config/config.Options value that fails
// its own preconditions.
func InvalidConfigurationError(message string) *AppError {
	return New(ErrorTypeInvalidConfiguration, message)
}

// OversizedSegmentError reports that segment segmentIndex of document
// documentID is length bytes long, already over the configured bound — no
// partition of the document can succeed until the splitter or the bound
// changes.
func OversizedSegmentError(documentID, segmentIndex, length int) *AppError {
	return New(ErrorTypeOversizedSegment, fmt.Sprintf(
		"document %d: segment %d is %d bytes, exceeding max_chunk_size",
		documentID, segmentIndex, length,
	)).
		WithContext("document_id", documentID).
		WithContext("segment_index", segmentIndex).
		WithContext("length", length)
}

// NotFoundError reports a missing lookup result.
func NotFoundError(message string) *AppError {
	return New(ErrorTypeNotFound, message)
}

// ExternalError wraps a failure from an external collaborator (Redis,
// Qdrant, the filesystem).
func ExternalError(message string, err error) *AppError {
	return Wrap(err, ErrorTypeExternal, message)
}

// InternalError reports a failure that should be unreachable given the
// package's own invariants.
func InternalError(message string) *AppError {
	return New(ErrorTypeInternal, message)
}
