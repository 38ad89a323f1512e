package logindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func depthCurve(mnemonic, start, end, unit string) CurveRecord {
	return NewCurveRecord(mnemonic, KindDepth, start, end, unit)
}

func timeCurve(mnemonic, start, end string) CurveRecord {
	return NewCurveRecord(mnemonic, KindTime, start, end, "")
}

func TestDetectMismatches_Identical(t *testing.T) {
	curves := []CurveRecord{
		depthCurve("DEPT", "0", "500", "m"),
		depthCurve("GR", "100", "200", "gAPI"),
		depthCurve("EMPTY", "", "", "m"),
	}
	got, err := DetectMismatches(curves, curves)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDetectMismatches_EndDiffers(t *testing.T) {
	source := []CurveRecord{depthCurve("GR", "100", "200", "m")}
	target := []CurveRecord{depthCurve("GR", "100", "250", "m")}

	got, err := DetectMismatches(source, target)
	require.NoError(t, err)
	require.Len(t, got, 1)

	rec := got[0]
	assert.Equal(t, "GR", rec.Mnemonic)
	assert.Equal(t, "100", rec.SourceStart)
	assert.Equal(t, "100", rec.TargetStart)
	assert.Equal(t, "200", rec.SourceEnd)
	assert.Equal(t, "250", rec.TargetEnd)
	assert.False(t, rec.StartDiffers)
	assert.True(t, rec.EndDiffers)
	assert.False(t, rec.UnitDiffers)
}

func TestDetectMismatches_UnitDiffers(t *testing.T) {
	got, err := DetectMismatches(
		[]CurveRecord{depthCurve("GR", "100", "200", "m")},
		[]CurveRecord{depthCurve("GR", "100", "200", "ft")},
	)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].UnitDiffers)
	assert.Equal(t, "m", got[0].SourceUnit)
	assert.Equal(t, "ft", got[0].TargetUnit)
}

func TestDetectMismatches_MissingOnTarget(t *testing.T) {
	got, err := DetectMismatches(
		[]CurveRecord{depthCurve("ROP", "10", "90", "m/h")},
		nil,
	)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, MismatchRecord{
		Mnemonic:     "ROP",
		SourceStart:  "10",
		TargetStart:  MissingMarker,
		SourceEnd:    "90",
		TargetEnd:    MissingMarker,
		SourceUnit:   "m/h",
		TargetUnit:   MissingMarker,
		StartDiffers: true,
		EndDiffers:   true,
		UnitDiffers:  true,
	}, got[0])
}

func TestDetectMismatches_Completeness(t *testing.T) {
	source := []CurveRecord{
		depthCurve("A", "1", "2", "m"),
		depthCurve("B", "1", "2", "m"),
		depthCurve("C", "1", "2", "m"),
	}
	target := []CurveRecord{
		depthCurve("C", "1", "2", "m"),
		depthCurve("D", "1", "2", "m"),
		depthCurve("b", "1", "2", "m"),
	}
	got, err := DetectMismatches(source, target)
	require.NoError(t, err)

	var mnemonics []string
	for _, rec := range got {
		mnemonics = append(mnemonics, rec.Mnemonic)
	}
	// mnemonics are case-sensitive: "B" and "b" are different curves
	assert.Equal(t, []string{"A", "B", "D", "b"}, mnemonics)

	for _, rec := range got[2:] {
		assert.Equal(t, MissingMarker, rec.SourceStart)
		assert.Equal(t, MissingMarker, rec.SourceEnd)
		assert.Equal(t, MissingMarker, rec.SourceUnit)
	}
}

func TestDetectMismatches_ZeroIsNotMissing(t *testing.T) {
	got, err := DetectMismatches(
		[]CurveRecord{depthCurve("GR", "0", "10", "m")},
		[]CurveRecord{depthCurve("GR", "", "10", "m")},
	)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "0", got[0].SourceStart)
	assert.Equal(t, MissingMarker, got[0].TargetStart)
	assert.True(t, got[0].StartDiffers)
}

func TestDetectMismatches_Unparseable(t *testing.T) {
	got, err := DetectMismatches(
		[]CurveRecord{
			timeCurve("GR", "not-a-date", "2024-01-16T10:00:00Z"),
			timeCurve("ROP", "2024-01-16T09:00:00Z", "2024-01-16T10:00:00Z"),
		},
		[]CurveRecord{
			timeCurve("GR", "not-a-date", "2024-01-16T10:00:00Z"),
			timeCurve("ROP", "2024-01-16T09:00:00Z", "2024-01-16T11:00:00Z"),
		},
	)
	require.NoError(t, err)
	require.Len(t, got, 2, "a bad value must not abort the batch")
	assert.Equal(t, UndefinedMarker, got[0].SourceStart)
	assert.Equal(t, UndefinedMarker, got[0].TargetStart)
	assert.Equal(t, "ROP", got[1].Mnemonic)
}

func TestDetectMismatches_KindMismatch(t *testing.T) {
	got, err := DetectMismatches(
		[]CurveRecord{depthCurve("GR", "1", "2", "m")},
		[]CurveRecord{timeCurve("GR", "2024-01-16T09:00:00Z", "2024-01-16T10:00:00Z")},
	)
	var kerr *KindMismatchError
	require.ErrorAs(t, err, &kerr)
	assert.Empty(t, got)
}

func TestDetector_NormalizeTime(t *testing.T) {
	source := []CurveRecord{timeCurve("GR", "2024-01-16T09:00:00Z", "2024-01-16T10:00:00Z")}
	target := []CurveRecord{timeCurve("GR", "2024-01-16T09:00:00.000Z", "2024-01-16T11:00:00+01:00")}

	literal, err := DetectMismatches(source, target)
	require.NoError(t, err)
	assert.Len(t, literal, 1)

	normalized, err := Detector{NormalizeTime: true}.Detect(source, target)
	require.NoError(t, err)
	assert.Empty(t, normalized)
}

func TestCurveRecord_Range(t *testing.T) {
	r, ok := depthCurve("GR", "200", "100", "m").Range()
	require.True(t, ok)
	assert.Equal(t, "100", r.StartIndex())

	_, ok = depthCurve("GR", "", "", "m").Range()
	assert.False(t, ok)

	_, ok = depthCurve("GR", "x", "100", "m").Range()
	assert.False(t, ok)
}
