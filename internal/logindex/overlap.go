package logindex

import "strings"

// ImportColumn is one column header of a file about to be imported.
type ImportColumn struct {
	Name string `json:"name"`
	Unit string `json:"unit,omitempty"`
}

// ImportOverlapQuery describes data about to be imported into a log.
// Rows are the raw comma-joined lines of the file body.
type ImportOverlapQuery struct {
	Kind        Kind
	IndexColumn int
	Columns     []ImportColumn
	Rows        []string
}

// ColumnRange is the index range covered by one non-index import column.
type ColumnRange struct {
	Mnemonic string
	Range    Range
}

// ImportRanges scans the rows once per column for the first and last row holding a value
// and returns the index range between them. Columns with no values, or whose bounding
// rows have an unreadable index, are left out.
func ImportRanges(q ImportOverlapQuery) []ColumnRange {
	cells, ok := splitRows(q)
	if !ok {
		return nil
	}
	var out []ColumnRange
	for col, column := range q.Columns {
		if col == q.IndexColumn {
			continue
		}
		if r, ok := columnRange(cells, col, q); ok {
			out = append(out, ColumnRange{Mnemonic: column.Name, Range: r})
		}
	}
	return out
}

func splitRows(q ImportOverlapQuery) ([][]string, bool) {
	if len(q.Columns) == 0 || len(q.Rows) == 0 {
		return nil, false
	}
	if q.IndexColumn < 0 || q.IndexColumn >= len(q.Columns) {
		return nil, false
	}
	cells := make([][]string, len(q.Rows))
	for i, row := range q.Rows {
		cells[i] = strings.Split(row, ",")
	}
	return cells, true
}

func columnRange(cells [][]string, col int, q ImportOverlapQuery) (Range, bool) {
	first, last := -1, -1
	for i, row := range cells {
		if col < len(row) && strings.TrimSpace(row[col]) != "" {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return Range{}, false
	}
	start, err := ParseValue(cell(cells[first], q.IndexColumn), q.Kind)
	if err != nil {
		return Range{}, false
	}
	end, err := ParseValue(cell(cells[last], q.IndexColumn), q.Kind)
	if err != nil {
		return Range{}, false
	}
	// NewRange swaps the endpoints of files in decreasing order.
	r, err := NewRange(start, end, Increasing)
	if err != nil {
		return Range{}, false
	}
	return r, true
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// DetectOverlap reports whether any import column's range intersects the existing data of
// the curve with the same mnemonic. It stops at the first overlapping column. Incomplete
// input yields false; the warning it drives is advisory.
func DetectOverlap(q ImportOverlapQuery, existing []CurveRecord) bool {
	if len(existing) == 0 {
		return false
	}
	byMnemonic := make(map[string]CurveRecord, len(existing))
	for _, c := range existing {
		byMnemonic[c.Mnemonic] = c
	}

	cells, ok := splitRows(q)
	if !ok {
		return false
	}
	for col, column := range q.Columns {
		if col == q.IndexColumn {
			continue
		}
		curve, ok := byMnemonic[column.Name]
		if !ok {
			continue
		}
		existingRange, ok := curve.Range()
		if !ok {
			continue
		}
		importRange, ok := columnRange(cells, col, q)
		if !ok {
			continue
		}
		if hit, err := importRange.Overlaps(existingRange); err == nil && hit {
			return true
		}
	}
	return false
}
