package pipeline

import (
	"errors"
	"fmt"
)

// Sentinel categories for errors.Is checks across the pipeline.
var (
	// ErrConfig marks invalid input detected before any rendering work.
	ErrConfig = errors.New("configuration error")
	// ErrResource marks a missing or failing external resource
	// (music file, narration engine, encoder).
	ErrResource = errors.New("resource error")
	// ErrInvariant marks a violated render invariant; it indicates a
	// logic or configuration bug and always aborts the render.
	ErrInvariant = errors.New("render invariant violation")
)

// ConfigError describes input rejected during fail-fast validation.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

// Configf builds a ConfigError for the given field.
func Configf(field, format string, args ...interface{}) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ResourceError wraps a failure of an external collaborator. The
// underlying cause is surfaced verbatim, never retried at this layer.
type ResourceError struct {
	Resource string
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource error: %s: %v", e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error { return ErrResource }

// Cause returns the wrapped failure.
func (e *ResourceError) Cause() error { return e.Err }

// Resourcef wraps err as a ResourceError for the named resource.
func Resourcef(resource string, err error) error {
	return &ResourceError{Resource: resource, Err: err}
}

// InvariantError carries full context (scene index, detail) for a
// defensive check that fired mid-render.
type InvariantError struct {
	Scene  int
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("render invariant violation: scene %d: %s", e.Scene, e.Detail)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

// Invariantf builds an InvariantError for the given scene index.
func Invariantf(scene int, format string, args ...interface{}) error {
	return &InvariantError{Scene: scene, Detail: fmt.Sprintf(format, args...)}
}
