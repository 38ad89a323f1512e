package logindex

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// Presence tells whether a value was supplied and, if so, whether it could be read.
type Presence uint8

const (
	Missing Presence = iota
	Present
	Unparseable
)

// TimeLayout is used when a time value has to be rendered, for example after an offset.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Value is a single log index coordinate: a depth or an instant.
// The zero Value has no kind and is not present. Use MissingValue for a missing
// coordinate of a known kind.
type Value struct {
	kind     Kind
	presence Presence
	raw      string
	depth    float64
	instant  time.Time
	unit     string
}

// ParseValue reads raw as an index value of the given kind.
func ParseValue(raw string, kind Kind) (Value, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case KindDepth:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, &ParseError{Raw: raw, Kind: kind, Err: err}
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return Value{}, &ParseError{Raw: raw, Kind: kind, Err: errors.New("not a finite number")}
		}
		return Value{kind: kind, presence: Present, raw: raw, depth: f}, nil
	case KindTime:
		t, err := parseTime(raw)
		if err != nil {
			return Value{}, &ParseError{Raw: raw, Kind: kind, Err: err}
		}
		return Value{kind: kind, presence: Present, raw: raw, instant: t}, nil
	}
	return Value{}, &ParseError{Raw: raw, Kind: kind, Err: errors.New("unknown index kind")}
}

// ValueOf never fails. An empty raw string gives a missing value and a malformed one gives
// an unparseable value that still remembers its text.
func ValueOf(raw string, kind Kind) Value {
	if strings.TrimSpace(raw) == "" {
		return MissingValue(kind)
	}
	v, err := ParseValue(raw, kind)
	if err != nil {
		return Value{kind: kind, presence: Unparseable, raw: raw}
	}
	return v
}

// MissingValue returns the value used when the metadata supplied nothing.
func MissingValue(kind Kind) Value {
	return Value{kind: kind, presence: Missing}
}

// DepthValue builds a present depth value from a number.
func DepthValue(f float64, unit string) Value {
	return Value{kind: KindDepth, presence: Present, raw: formatDepth(f), depth: f, unit: unit}
}

// TimeValue builds a present time value from an instant.
func TimeValue(t time.Time) Value {
	return Value{kind: KindTime, presence: Present, raw: formatTime(t), instant: t}
}

func parseTime(raw string) (time.Time, error) {
	var firstErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

func formatDepth(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) Presence() Presence { return v.presence }
func (v Value) IsMissing() bool { return v.presence == Missing }
func (v Value) IsPresent() bool { return v.presence == Present }
func (v Value) IsUnparseable() bool { return v.presence == Unparseable }
func (v Value) Raw() string { return v.raw }
func (v Value) Depth() float64 { return v.depth }
func (v Value) Instant() time.Time { return v.instant }
func (v Value) Unit() string { return v.unit }

// WithUnit returns a copy carrying the unit of measure. Time values ignore it.
func (v Value) WithUnit(unit string) Value {
	if v.kind == KindDepth {
		v.unit = unit
	}
	return v
}

// String renders the value for display.
func (v Value) String() string {
	switch v.presence {
	case Missing:
		return MissingMarker
	case Unparseable:
		return UndefinedMarker
	}
	return v.raw
}

// Compare orders two present values of the same kind.
func Compare(a, b Value) (int, error) {
	if a.kind != b.kind {
		return 0, &KindMismatchError{Left: a.kind, Right: b.kind}
	}
	if !a.IsPresent() {
		return 0, &ParseError{Raw: a.raw, Kind: a.kind, Err: errors.New("value not present")}
	}
	if !b.IsPresent() {
		return 0, &ParseError{Raw: b.raw, Kind: b.kind, Err: errors.New("value not present")}
	}
	if a.kind == KindDepth {
		switch {
		case a.depth < b.depth:
			return -1, nil
		case a.depth > b.depth:
			return 1, nil
		}
		return 0, nil
	}
	return a.instant.Compare(b.instant), nil
}

// Equal reports whether two values carry the same presence and coordinate. Depths compare
// numerically. Times compare by raw text unless normalize is set, in which case instants
// are compared. Missing and unparseable values never equal a present one.
func Equal(a, b Value, normalize bool) bool {
	if a.kind != b.kind || a.presence != b.presence {
		return false
	}
	switch a.presence {
	case Missing:
		return true
	case Unparseable:
		return a.raw == b.raw
	}
	if a.kind == KindDepth {
		return a.depth == b.depth
	}
	if normalize {
		return a.instant.Equal(b.instant)
	}
	return a.raw == b.raw
}

func minValue(a, b Value) Value {
	if c, _ := Compare(a, b); c <= 0 {
		return a
	}
	return b
}

func maxValue(a, b Value) Value {
	if c, _ := Compare(a, b); c >= 0 {
		return a
	}
	return b
}
