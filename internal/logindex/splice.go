package logindex

import (
	"errors"
	"sort"
)

// Contribution is the part of one input log that ends up in a spliced log.
type Contribution struct {
	Log   int
	Range Range
}

// Splice plans how logs combine end to end. Logs are given in priority order: each log
// contributes only the parts of its range not already covered by the logs before it.
// Pieces are closed ranges, so a piece that touches an earlier log repeats the shared
// index. That index belongs to the earlier log: the touching endpoint of the later piece
// is exclusive. The returned range is the union of all inputs.
func Splice(ranges []Range) (Range, []Contribution, error) {
	if len(ranges) == 0 {
		return Range{}, nil, errors.New("splice needs at least one log")
	}
	total, err := Union(ranges...)
	if err != nil {
		return Range{}, nil, err
	}

	var covered []Range
	var out []Contribution
	for i, r := range ranges {
		for _, piece := range subtract(r, covered) {
			out = append(out, Contribution{Log: i, Range: piece})
		}
		covered = mergeRange(covered, r)
	}
	return total, out, nil
}

// subtract returns the parts of r outside the sorted, disjoint covered ranges.
func subtract(r Range, covered []Range) []Range {
	var pieces []Range
	cur := r.start
	for _, c := range covered {
		if cmp(c.end, cur) < 0 {
			continue
		}
		if cmp(c.start, r.end) > 0 {
			break
		}
		if cmp(c.start, cur) > 0 {
			pieces = append(pieces, Range{start: cur, end: c.start, direction: r.direction})
		}
		cur = maxValue(cur, c.end)
	}
	if c := cmp(cur, r.end); c < 0 || (c == 0 && !isCovered(cur, covered)) {
		pieces = append(pieces, Range{start: cur, end: r.end, direction: r.direction})
	}
	return pieces
}

func isCovered(v Value, covered []Range) bool {
	for _, c := range covered {
		if ok, _ := c.Contains(v); ok {
			return true
		}
	}
	return false
}

// mergeRange adds r to a sorted, disjoint set of ranges.
func mergeRange(set []Range, r Range) []Range {
	set = append(append([]Range(nil), set...), r)
	sort.SliceStable(set, func(i, j int) bool { return cmp(set[i].start, set[j].start) < 0 })

	merged := set[:1]
	for _, next := range set[1:] {
		last := &merged[len(merged)-1]
		if cmp(next.start, last.end) <= 0 {
			last.end = maxValue(last.end, next.end)
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

// cmp is Compare for values already known to be present and of one kind.
func cmp(a, b Value) int {
	c, _ := Compare(a, b)
	return c
}
