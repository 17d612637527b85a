package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown document format.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrInvalidConfig indicates a configuration value is out of range.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUndecodable indicates text could not be decoded with any configured encoding.
	ErrUndecodable = errors.New("undecodable text")

	// ErrTooLarge indicates a document exceeds the configured size limit.
	ErrTooLarge = errors.New("document too large")

	// ErrBuildFailed indicates a refresh could not produce a new index.
	ErrBuildFailed = errors.New("index build failed")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrToolNotFound indicates an external extraction tool is not installed.
	ErrToolNotFound = errors.New("extraction tool not found")
)

// DecodeError reports a text document that no configured encoding could decode.
type DecodeError struct {
	DocumentID string
	Tried      []string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: tried %s", e.DocumentID, strings.Join(e.Tried, ", "))
}

// Unwrap returns ErrUndecodable.
func (e *DecodeError) Unwrap() error {
	return ErrUndecodable
}

// TooLargeError reports a document rejected by the size limit before it was read.
type TooLargeError struct {
	DocumentID string
	Size       int64
	Limit      int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("%s is %d bytes, limit is %d", e.DocumentID, e.Size, e.Limit)
}

// Unwrap returns ErrTooLarge.
func (e *TooLargeError) Unwrap() error {
	return ErrTooLarge
}

// ConfigurationError reports an invalid setting. It is fatal at startup.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidConfig.
func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfig
}

// NewConfigurationError creates a ConfigurationError.
func NewConfigurationError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// BuildFailure reports a refresh that could not produce an index.
// The previously live index stays in place.
type BuildFailure struct {
	Stage RefreshState
	Err   error
}

func (e *BuildFailure) Error() string {
	return fmt.Sprintf("index build failed while %s: %v", e.Stage, e.Err)
}

// Unwrap returns both ErrBuildFailed and the underlying cause.
func (e *BuildFailure) Unwrap() []error {
	return []error{ErrBuildFailed, e.Err}
}
