package logindex

import "fmt"

// ParseError reports a raw value that could not be read as its declared kind.
type ParseError struct {
	Raw  string
	Kind Kind
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot parse %q as %s index: %v", e.Raw, e.Kind, e.Err)
	}
	return fmt.Sprintf("cannot parse %q as %s index", e.Raw, e.Kind)
}

func (e *ParseError) Unwrap() error { return e.Err }

// KindMismatchError reports an attempt to compare or combine a depth index with a time index.
type KindMismatchError struct {
	Left  Kind
	Right Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("index kind mismatch: %s vs %s", e.Left, e.Right)
}

// ValidationError reports user input that breaks a format or non-degeneracy rule.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid value %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
