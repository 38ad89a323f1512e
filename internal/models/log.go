// Package models contains the WITSML domain types exchanged with the frontend.
package models

import (
	"fmt"

	"github.com/witsml-explorer/backend/internal/logindex"
)

// LogRef identifies a log by its well / wellbore / log UID triple.
type LogRef struct {
	WellUID     string `json:"wellUid" yaml:"wellUid"`
	WellboreUID string `json:"wellboreUid" yaml:"wellboreUid"`
	LogUID      string `json:"logUid" yaml:"logUid"`
}

// Validate reports the first empty UID.
func (r LogRef) Validate() error {
	switch {
	case r.WellUID == "":
		return fmt.Errorf("wellUid is required")
	case r.WellboreUID == "":
		return fmt.Errorf("wellboreUid is required")
	case r.LogUID == "":
		return fmt.Errorf("logUid is required")
	}
	return nil
}

func (r LogRef) String() string {
	return r.WellUID + "/" + r.WellboreUID + "/" + r.LogUID
}

// LogObject is the header of a WITSML log.
type LogObject struct {
	WellUID     string `json:"wellUid" yaml:"wellUid"`
	WellboreUID string `json:"wellboreUid" yaml:"wellboreUid"`
	UID         string `json:"uid" yaml:"uid"`
	Name        string `json:"name" yaml:"name"`
	IndexType   string `json:"indexType" yaml:"indexType"` // "depth" or "date time"
	Direction   string `json:"direction,omitempty" yaml:"direction,omitempty"`
	IndexCurve  string `json:"indexCurve,omitempty" yaml:"indexCurve,omitempty"`
	StartIndex  string `json:"startIndex,omitempty" yaml:"startIndex,omitempty"`
	EndIndex    string `json:"endIndex,omitempty" yaml:"endIndex,omitempty"`
	IndexUnit   string `json:"indexUnit,omitempty" yaml:"indexUnit,omitempty"`
}

// Ref returns the UID triple of the log.
func (l LogObject) Ref() LogRef {
	return LogRef{WellUID: l.WellUID, WellboreUID: l.WellboreUID, LogUID: l.UID}
}

// Kind parses the log's index type.
func (l LogObject) Kind() (logindex.Kind, error) {
	return logindex.ParseKind(l.IndexType)
}

// Range returns the log's index range. The bool is false for an empty log.
func (l LogObject) Range() (logindex.Range, bool, error) {
	kind, err := l.Kind()
	if err != nil {
		return logindex.Range{}, false, err
	}
	if l.StartIndex == "" || l.EndIndex == "" {
		return logindex.Range{}, false, nil
	}
	dir, err := logindex.ParseDirection(l.Direction)
	if err != nil {
		return logindex.Range{}, false, err
	}
	r, err := logindex.FromEndpoints(l.StartIndex, l.EndIndex, kind, dir)
	if err != nil {
		return logindex.Range{}, false, err
	}
	return r, true, nil
}

// LogCurveInfo is the metadata of one curve in a log. Depth logs fill MinIndex/MaxIndex,
// time logs fill MinDateTimeIndex/MaxDateTimeIndex.
type LogCurveInfo struct {
	UID              string `json:"uid,omitempty" yaml:"uid,omitempty"`
	Mnemonic         string `json:"mnemonic" yaml:"mnemonic"`
	Unit             string `json:"unit,omitempty" yaml:"unit,omitempty"`
	MinIndex         string `json:"minIndex,omitempty" yaml:"minIndex,omitempty"`
	MaxIndex         string `json:"maxIndex,omitempty" yaml:"maxIndex,omitempty"`
	MinDateTimeIndex string `json:"minDateTimeIndex,omitempty" yaml:"minDateTimeIndex,omitempty"`
	MaxDateTimeIndex string `json:"maxDateTimeIndex,omitempty" yaml:"maxDateTimeIndex,omitempty"`
	CurveDescription string `json:"curveDescription,omitempty" yaml:"curveDescription,omitempty"`
	TypeLogData      string `json:"typeLogData,omitempty" yaml:"typeLogData,omitempty"`
	NullValue        string `json:"nullValue,omitempty" yaml:"nullValue,omitempty"`
}

// Bounds returns the raw min and max index for the given kind.
func (c LogCurveInfo) Bounds(kind logindex.Kind) (string, string) {
	if kind == logindex.KindTime {
		return c.MinDateTimeIndex, c.MaxDateTimeIndex
	}
	return c.MinIndex, c.MaxIndex
}

// SetBounds stores a range in the fields matching its kind.
func (c *LogCurveInfo) SetBounds(r logindex.Range) {
	if r.Kind() == logindex.KindTime {
		c.MinDateTimeIndex, c.MaxDateTimeIndex = r.StartIndex(), r.EndIndex()
		return
	}
	c.MinIndex, c.MaxIndex = r.StartIndex(), r.EndIndex()
}

// Record converts the curve for the comparison engine.
func (c LogCurveInfo) Record(kind logindex.Kind) logindex.CurveRecord {
	start, end := c.Bounds(kind)
	return logindex.NewCurveRecord(c.Mnemonic, kind, start, end, c.Unit)
}

// Records converts a whole curve list.
func Records(curves []LogCurveInfo, kind logindex.Kind) []logindex.CurveRecord {
	out := make([]logindex.CurveRecord, len(curves))
	for i, c := range curves {
		out[i] = c.Record(kind)
	}
	return out
}

// Fields exposes the editable metadata by name.
func (c LogCurveInfo) Fields() map[string]string {
	fields := map[string]string{}
	for name, v := range map[string]string{
		"unit":             c.Unit,
		"curveDescription": c.CurveDescription,
		"typeLogData":      c.TypeLogData,
		"nullValue":        c.NullValue,
	} {
		if v != "" {
			fields[name] = v
		}
	}
	return fields
}

// WithFields returns a copy with the editable metadata replaced.
func (c LogCurveInfo) WithFields(fields map[string]string) LogCurveInfo {
	c.Unit = fields["unit"]
	c.CurveDescription = fields["curveDescription"]
	c.TypeLogData = fields["typeLogData"]
	c.NullValue = fields["nullValue"]
	return c
}

// EditableCurveFields are the LogCurveInfo fields a patch may touch.
var EditableCurveFields = []string{"unit", "curveDescription", "typeLogData", "nullValue"}
