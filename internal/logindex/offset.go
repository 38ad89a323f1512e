package logindex

import (
	"regexp"
	"strconv"
	"time"
)

var (
	depthOffsetPattern = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)
	timeOffsetPattern  = regexp.MustCompile(`^([+-]?)([01]\d|2[0-3]):([0-5]\d):([0-5]\d)$`)
)

// ValidateOffset checks a user-entered offset and converts it. Depth offsets are signed
// decimals, time offsets are [+-]hh:mm:ss. Zero offsets are rejected.
func ValidateOffset(raw string, kind Kind) (Offset, error) {
	switch kind {
	case KindDepth:
		if !depthOffsetPattern.MatchString(raw) {
			return Offset{}, &ValidationError{Field: "offset", Value: raw, Reason: "expected a signed decimal number"}
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Offset{}, &ValidationError{Field: "offset", Value: raw, Reason: err.Error()}
		}
		if f == 0 {
			return Offset{}, &ValidationError{Field: "offset", Value: raw, Reason: "offset must not be zero"}
		}
		return DepthOffset(f), nil
	case KindTime:
		ms, err := ToMilliseconds(raw)
		if err != nil {
			return Offset{}, err
		}
		if ms == 0 {
			return Offset{}, &ValidationError{Field: "offset", Value: raw, Reason: "offset must not be zero"}
		}
		return TimeOffset(time.Duration(ms) * time.Millisecond), nil
	}
	return Offset{}, &ValidationError{Field: "kind", Value: string(kind), Reason: "unknown index kind"}
}

// ToMilliseconds converts [+-]hh:mm:ss to a signed millisecond count.
func ToMilliseconds(raw string) (int64, error) {
	m := timeOffsetPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, &ValidationError{Field: "offset", Value: raw, Reason: "expected [+-]hh:mm:ss"}
	}
	hours, _ := strconv.ParseInt(m[2], 10, 64)
	minutes, _ := strconv.ParseInt(m[3], 10, 64)
	seconds, _ := strconv.ParseInt(m[4], 10, 64)
	ms := ((hours*60+minutes)*60 + seconds) * 1000
	if m[1] == "-" {
		ms = -ms
	}
	return ms, nil
}
