// Package logindex holds the index value, index range and comparison engine shared by
// the log comparison, copy range, splice and import features.
//
// Everything in this package is a pure function of its arguments. Values and ranges are
// immutable and safe to share between goroutines.
package logindex

import (
	"fmt"
	"strings"
)

// Kind is the type of a log index.
type Kind string

const (
	KindDepth Kind = "depth"
	KindTime  Kind = "date time"
)

// Direction is the ordering of a log's rows.
type Direction string

const (
	Increasing Direction = "increasing"
	Decreasing Direction = "decreasing"
)

// Presentation markers. The frontend pattern-matches on these strings.
const (
	MissingMarker   = "-"
	UndefinedMarker = "undefined"
)

// ParseKind accepts the WITSML index type names as well as the short forms.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "depth", "measured depth", "vertical depth":
		return KindDepth, nil
	case "date time", "datetime", "time", "elapsed time":
		return KindTime, nil
	}
	return "", fmt.Errorf("unknown index type: %q", s)
}

// ParseDirection defaults to Increasing for an empty string.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "increasing":
		return Increasing, nil
	case "decreasing":
		return Decreasing, nil
	}
	return "", fmt.Errorf("unknown index direction: %q", s)
}
