package conflayer

import (
	"fmt"
	"strings"
)

// FormatError reports that a leaf value could not be parsed into the
// requested target shape. It carries the raw text so callers can log the
// offending value.
type FormatError struct {
	Key    string
	Raw    string
	Target string
	Err    error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("conflayer: cannot convert %q at %q to %s: %v", e.Raw, e.Key, e.Target, e.Err)
	}
	return fmt.Sprintf("conflayer: cannot convert %q at %q to %s", e.Raw, e.Key, e.Target)
}

// Unwrap returns the underlying parse error, if any.
func (e *FormatError) Unwrap() error { return e.Err }

// UnsupportedShapeError reports a conversion target the engine does not
// recognize as a primitive, enum, slice, map, or struct.
type UnsupportedShapeError struct {
	Key  string
	Kind string
}

// Error implements the error interface.
func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("conflayer: unsupported conversion target %s at %q", e.Kind, e.Key)
}

// SourceLoadError wraps a failure to load one source's snapshot, carrying the
// source's identity.
type SourceLoadError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *SourceLoadError) Error() string {
	return fmt.Sprintf("conflayer: source %q: %v", e.Source, e.Err)
}

// Unwrap returns the underlying transport or parse error.
func (e *SourceLoadError) Unwrap() error { return e.Err }

// KeyTransformError reports that a key rewrite produced an invalid key path
// for one entry.
type KeyTransformError struct {
	Source string
	Key    string
	Err    error
}

// Error implements the error interface.
func (e *KeyTransformError) Error() string {
	return fmt.Sprintf("conflayer: source %q: transform of key %q: %v", e.Source, e.Key, e.Err)
}

// Unwrap returns the underlying cause.
func (e *KeyTransformError) Unwrap() error { return e.Err }

// BuildError aggregates the required-source failures that aborted a Build.
// The group can be inspected to understand which sources failed and why.
type BuildError struct {
	failures []*SourceLoadError
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e == nil || len(e.failures) == 0 {
		return ""
	}
	parts := make([]string, len(e.failures))
	for i, f := range e.failures {
		parts[i] = f.Error()
	}
	return "conflayer: build failed: " + strings.Join(parts, "; ")
}

// Failures returns a copy of the per-source failures for inspection.
func (e *BuildError) Failures() []*SourceLoadError {
	if e == nil {
		return nil
	}
	out := make([]*SourceLoadError, len(e.failures))
	copy(out, e.failures)
	return out
}

// Has reports whether any failure was recorded.
func (e *BuildError) Has() bool {
	return e != nil && len(e.failures) > 0
}

// Unwrap exposes the per-source failures to errors.Is and errors.As.
func (e *BuildError) Unwrap() []error {
	if e == nil {
		return nil
	}
	out := make([]error, len(e.failures))
	for i, f := range e.failures {
		out[i] = f
	}
	return out
}

// appendBuildFailure adds a failure to the group, instantiating it if necessary.
func appendBuildFailure(g **BuildError, failure *SourceLoadError) {
	if failure == nil {
		return
	}
	group := *g
	if group == nil {
		group = &BuildError{}
	}
	group.failures = append(group.failures, failure)
	*g = group
}
