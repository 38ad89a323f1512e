// Package parser reads log data files uploaded for import.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/witsml-explorer/backend/internal/logindex"
)

// ImportFile is a parsed import file. Rows keep the raw comma-joined body lines so the
// overlap check and the import job read them the same way.
type ImportFile struct {
	Columns     []logindex.ImportColumn `json:"columns"`
	Rows        []string                `json:"rows"`
	IndexColumn int                     `json:"indexColumn"`
}

// ErrEmptyFile is returned for an import file with no header line.
var ErrEmptyFile = errors.New("import file has no header")

// Matches "GR[gAPI]", "GR [gAPI]" and a bare "GR".
var headerRegex = regexp.MustCompile(`^\s*([^\[\]]*?)\s*(?:\[([^\[\]]*)\])?\s*$`)

const maxLineSize = 1024 * 1024

// ParseImportCSV reads a header line of Name[unit] columns followed by data rows.
// Tab separated files are accepted and their rows rewritten with commas. The index
// column is the first column until SetIndexColumn picks another.
func ParseImportCSV(r io.Reader) (*ImportFile, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var file *ImportFile
	sep := ","
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		if file == nil {
			if !strings.Contains(line, ",") && strings.Contains(line, "\t") {
				sep = "\t"
			}
			columns, err := parseHeader(line, sep)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			file = &ImportFile{Columns: columns}
			continue
		}

		if sep != "," {
			line = strings.ReplaceAll(line, sep, ",")
		}
		file.Rows = append(file.Rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}
	if file == nil {
		return nil, ErrEmptyFile
	}
	return file, nil
}

func parseHeader(line, sep string) ([]logindex.ImportColumn, error) {
	parts := strings.Split(line, sep)
	columns := make([]logindex.ImportColumn, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for i, part := range parts {
		m := headerRegex.FindStringSubmatch(part)
		if m == nil || m[1] == "" {
			return nil, fmt.Errorf("column %d has no name: %q", i+1, part)
		}
		if seen[m[1]] {
			return nil, fmt.Errorf("duplicate column %q", m[1])
		}
		seen[m[1]] = true
		columns = append(columns, logindex.ImportColumn{Name: m[1], Unit: strings.TrimSpace(m[2])})
	}
	return columns, nil
}

// SetIndexColumn selects the index column by name, ignoring case. It reports whether the
// column exists.
func (f *ImportFile) SetIndexColumn(name string) bool {
	for i, c := range f.Columns {
		if strings.EqualFold(c.Name, name) {
			f.IndexColumn = i
			return true
		}
	}
	return false
}

// Query builds the overlap query for a log of the given kind.
func (f *ImportFile) Query(kind logindex.Kind) logindex.ImportOverlapQuery {
	return logindex.ImportOverlapQuery{
		Kind:        kind,
		IndexColumn: f.IndexColumn,
		Columns:     f.Columns,
		Rows:        f.Rows,
	}
}

// IndexName returns the name of the index column.
func (f *ImportFile) IndexName() string {
	if f.IndexColumn < 0 || f.IndexColumn >= len(f.Columns) {
		return ""
	}
	return f.Columns[f.IndexColumn].Name
}
