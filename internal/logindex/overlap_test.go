package logindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importQuery(rows ...string) ImportOverlapQuery {
	return ImportOverlapQuery{
		Kind:        KindDepth,
		IndexColumn: 0,
		Columns:     []ImportColumn{{Name: "Depth", Unit: "m"}, {Name: "Curve1", Unit: "API"}},
		Rows:        rows,
	}
}

func TestDetectOverlap(t *testing.T) {
	existing := []CurveRecord{depthCurve("Curve1", "10", "20", "API")}

	assert.True(t, DetectOverlap(importQuery("15,1", "20,2", "25,3"), existing))
	assert.False(t, DetectOverlap(importQuery("21,1", "25,2", "30,3"), existing))
}

func TestDetectOverlap_DecreasingRows(t *testing.T) {
	existing := []CurveRecord{depthCurve("Curve1", "10", "20", "API")}
	assert.True(t, DetectOverlap(importQuery("25,3", "20,2", "15,1"), existing))
}

func TestDetectOverlap_SkipsEmptyCells(t *testing.T) {
	existing := []CurveRecord{depthCurve("Curve1", "10", "20", "API")}
	// only rows 25 and 30 carry a Curve1 value
	assert.False(t, DetectOverlap(importQuery("15,", "25,1", "30,2", "35,"), existing))
}

func TestDetectOverlap_IncompleteInput(t *testing.T) {
	existing := []CurveRecord{depthCurve("Curve1", "10", "20", "API")}

	assert.False(t, DetectOverlap(importQuery(), existing))
	assert.False(t, DetectOverlap(importQuery("15,1"), nil))
	assert.False(t, DetectOverlap(ImportOverlapQuery{Kind: KindDepth, Rows: []string{"15,1"}}, existing))

	q := importQuery("15,1")
	q.IndexColumn = 5
	assert.False(t, DetectOverlap(q, existing))
}

func TestDetectOverlap_EmptyExistingCurve(t *testing.T) {
	existing := []CurveRecord{depthCurve("Curve1", "", "", "API")}
	assert.False(t, DetectOverlap(importQuery("15,1", "20,2"), existing))
}

func TestDetectOverlap_Time(t *testing.T) {
	existing := []CurveRecord{timeCurve("GR", "2024-01-16T09:00:00Z", "2024-01-16T10:00:00Z")}
	q := ImportOverlapQuery{
		Kind:        KindTime,
		IndexColumn: 0,
		Columns:     []ImportColumn{{Name: "Time"}, {Name: "GR"}},
		Rows:        []string{"2024-01-16T09:30:00Z,1", "2024-01-16T11:00:00Z,2"},
	}
	assert.True(t, DetectOverlap(q, existing))
}

func TestImportRanges(t *testing.T) {
	q := ImportOverlapQuery{
		Kind:        KindDepth,
		IndexColumn: 0,
		Columns:     []ImportColumn{{Name: "Depth"}, {Name: "GR"}, {Name: "ROP"}, {Name: "NONE"}},
		Rows:        []string{"1,5,,", "2,6,7,", "3,,8,"},
	}
	got := ImportRanges(q)
	require.Len(t, got, 2)
	assert.Equal(t, "GR", got[0].Mnemonic)
	assert.Equal(t, "1", got[0].Range.StartIndex())
	assert.Equal(t, "2", got[0].Range.EndIndex())
	assert.Equal(t, "ROP", got[1].Mnemonic)
	assert.Equal(t, "2", got[1].Range.StartIndex())
	assert.Equal(t, "3", got[1].Range.EndIndex())
}
