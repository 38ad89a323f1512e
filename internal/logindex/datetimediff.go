package logindex

import "strings"

// Segment is a piece of a date-time string, flagged when it differs from the other side.
type Segment struct {
	Text    string `json:"text"`
	Differs bool   `json:"differs"`
}

const dateTimeSeparators = ":T.-Z"

// DiffSegments splits two date-time strings into date, time, fraction and zone tokens and
// flags the tokens that differ position by position.
//
// Only the first min(len(a), len(b)) tokens are compared. Trailing tokens of the longer
// string are returned unflagged, so a structural difference such as a missing fraction
// is not highlighted.
func DiffSegments(a, b string) (segmentsA, segmentsB []Segment) {
	if a == MissingMarker || b == MissingMarker {
		return []Segment{{Text: a, Differs: true}}, []Segment{{Text: b, Differs: true}}
	}

	ta := splitDateTime(a)
	tb := splitDateTime(b)
	segmentsA = make([]Segment, len(ta))
	segmentsB = make([]Segment, len(tb))
	for i, t := range ta {
		segmentsA[i] = Segment{Text: t}
	}
	for i, t := range tb {
		segmentsB[i] = Segment{Text: t}
	}

	n := min(len(ta), len(tb))
	for i := 0; i < n; i++ {
		if ta[i] != tb[i] {
			segmentsA[i].Differs = true
			segmentsB[i].Differs = true
		}
	}
	return segmentsA, segmentsB
}

// splitDateTime cuts s before and after every separator. Empty tokens are dropped.
func splitDateTime(s string) []string {
	var tokens []string
	start := 0
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(dateTimeSeparators, s[i]) < 0 {
			continue
		}
		if i > start {
			tokens = append(tokens, s[start:i])
		}
		tokens = append(tokens, s[i:i+1])
		start = i + 1
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}
