package logindex

import (
	"errors"
	"time"
)

// Offset is an amount to shift a range by. Depth offsets are in index units, time
// offsets are a signed duration.
type Offset struct {
	kind     Kind
	depth    float64
	duration time.Duration
}

// DepthOffset builds an offset for depth-indexed logs.
func DepthOffset(d float64) Offset { return Offset{kind: KindDepth, depth: d} }

// TimeOffset builds an offset for time-indexed logs.
func TimeOffset(d time.Duration) Offset { return Offset{kind: KindTime, duration: d} }

func (o Offset) Kind() Kind { return o.kind }
func (o Offset) Depth() float64 { return o.depth }
func (o Offset) Duration() time.Duration { return o.duration }
func (o Offset) IsZero() bool { return o.depth == 0 && o.duration == 0 }

// Negate returns the offset that undoes o.
func (o Offset) Negate() Offset {
	return Offset{kind: o.kind, depth: -o.depth, duration: -o.duration}
}

// Amount is the offset in index units: depth units or milliseconds.
func (o Offset) Amount() float64 {
	if o.kind == KindTime {
		return float64(o.duration.Milliseconds())
	}
	return o.depth
}

// Range is a closed interval of index values. Start always holds the minimum and End the
// maximum; Direction only records how rows are ordered in the owning log.
type Range struct {
	start     Value
	end       Value
	direction Direction
}

// NewRange orders start and end so that Start <= End.
func NewRange(start, end Value, direction Direction) (Range, error) {
	c, err := Compare(start, end)
	if err != nil {
		return Range{}, err
	}
	if c > 0 {
		start, end = end, start
	}
	if direction == "" {
		direction = Increasing
	}
	return Range{start: start, end: end, direction: direction}, nil
}

// FromEndpoints parses both endpoints as kind and builds a range.
func FromEndpoints(startRaw, endRaw string, kind Kind, direction Direction) (Range, error) {
	start, err := ParseValue(startRaw, kind)
	if err != nil {
		return Range{}, err
	}
	end, err := ParseValue(endRaw, kind)
	if err != nil {
		return Range{}, err
	}
	return NewRange(start, end, direction)
}

func (r Range) Start() Value { return r.start }
func (r Range) End() Value { return r.end }
func (r Range) Direction() Direction { return r.direction }
func (r Range) Kind() Kind { return r.start.kind }

// StartIndex and EndIndex render the endpoints for job payloads.
func (r Range) StartIndex() string { return r.start.raw }
func (r Range) EndIndex() string { return r.end.raw }

// Contains reports whether start <= v <= end.
func (r Range) Contains(v Value) (bool, error) {
	lo, err := Compare(r.start, v)
	if err != nil {
		return false, err
	}
	hi, err := Compare(v, r.end)
	if err != nil {
		return false, err
	}
	return lo <= 0 && hi <= 0, nil
}

// Overlaps reports whether the closed intervals share at least one point.
func (r Range) Overlaps(other Range) (bool, error) {
	if r.Kind() != other.Kind() {
		return false, &KindMismatchError{Left: r.Kind(), Right: other.Kind()}
	}
	lo := maxValue(r.start, other.start)
	hi := minValue(r.end, other.end)
	c, err := Compare(lo, hi)
	if err != nil {
		return false, err
	}
	return c <= 0, nil
}

// Intersection returns the shared part of two ranges. The bool is false when they do not
// overlap. The receiver's direction is kept.
func (r Range) Intersection(other Range) (Range, bool, error) {
	ok, err := r.Overlaps(other)
	if err != nil || !ok {
		return Range{}, false, err
	}
	return Range{
		start:     maxValue(r.start, other.start),
		end:       minValue(r.end, other.end),
		direction: r.direction,
	}, true, nil
}

// OffsetBy shifts both endpoints. A zero offset is rejected.
func (r Range) OffsetBy(o Offset) (Range, error) {
	if o.kind != r.Kind() {
		return Range{}, &KindMismatchError{Left: r.Kind(), Right: o.kind}
	}
	if o.IsZero() {
		return Range{}, &ValidationError{Field: "offset", Value: "0", Reason: "offset must not be zero"}
	}
	start := shift(r.start, o)
	end := shift(r.end, o)
	if c, err := Compare(start, end); err != nil {
		return Range{}, err
	} else if c > 0 {
		return Range{}, &ValidationError{Field: "offset", Reason: "offset would invert the range"}
	}
	return Range{start: start, end: end, direction: r.direction}, nil
}

func shift(v Value, o Offset) Value {
	if v.kind == KindDepth {
		return DepthValue(v.depth+o.depth, v.unit)
	}
	return TimeValue(v.instant.Add(o.duration))
}

// Span is End - Start in index units, milliseconds for time ranges.
func (r Range) Span() float64 {
	if r.Kind() == KindTime {
		return float64(r.end.instant.Sub(r.start.instant).Milliseconds())
	}
	return r.end.depth - r.start.depth
}

// Equal compares endpoints with the same rules as the mismatch detector.
func (r Range) Equal(other Range, normalize bool) bool {
	return Equal(r.start, other.start, normalize) && Equal(r.end, other.end, normalize)
}

// Clamp restricts a user selection to the log's range. Selections that fall fully outside
// are rejected.
func (r Range) Clamp(selection Range) (Range, error) {
	clamped, ok, err := r.Intersection(selection)
	if err != nil {
		return Range{}, err
	}
	if !ok {
		return Range{}, &ValidationError{
			Field:  "range",
			Value:  selection.StartIndex() + " - " + selection.EndIndex(),
			Reason: "selection is outside the log range",
		}
	}
	return clamped, nil
}

// Union is the smallest range covering every input. All ranges must share one kind.
func Union(ranges ...Range) (Range, error) {
	if len(ranges) == 0 {
		return Range{}, errors.New("union of no ranges")
	}
	out := ranges[0]
	for _, r := range ranges[1:] {
		if r.Kind() != out.Kind() {
			return Range{}, &KindMismatchError{Left: out.Kind(), Right: r.Kind()}
		}
		out.start = minValue(out.start, r.start)
		out.end = maxValue(out.end, r.end)
	}
	return out, nil
}
