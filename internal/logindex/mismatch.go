package logindex

// CurveRecord is the index metadata of one curve (a WITSML logCurveInfo).
type CurveRecord struct {
	Mnemonic string
	Kind     Kind
	Start    Value
	End      Value
	Unit     string
}

// NewCurveRecord reads raw endpoints leniently: blanks become missing values and malformed
// text becomes an unparseable value.
func NewCurveRecord(mnemonic string, kind Kind, startRaw, endRaw, unit string) CurveRecord {
	return CurveRecord{
		Mnemonic: mnemonic,
		Kind:     kind,
		Start:    ValueOf(startRaw, kind).WithUnit(unit),
		End:      ValueOf(endRaw, kind).WithUnit(unit),
		Unit:     unit,
	}
}

// Range returns the curve's index range. The bool is false for empty curves or curves
// whose bounds could not be read.
func (c CurveRecord) Range() (Range, bool) {
	if !c.Start.IsPresent() || !c.End.IsPresent() {
		return Range{}, false
	}
	r, err := NewRange(c.Start, c.End, Increasing)
	if err != nil {
		return Range{}, false
	}
	return r, true
}

// MismatchRecord is one row of the curve comparison table. Fields hold display strings;
// an absent side renders MissingMarker and an unreadable value UndefinedMarker.
type MismatchRecord struct {
	Mnemonic     string `json:"mnemonic"`
	SourceStart  string `json:"sourceStart"`
	TargetStart  string `json:"targetStart"`
	SourceEnd    string `json:"sourceEnd"`
	TargetEnd    string `json:"targetEnd"`
	SourceUnit   string `json:"sourceUnit"`
	TargetUnit   string `json:"targetUnit"`
	StartDiffers bool   `json:"startDiffers"`
	EndDiffers   bool   `json:"endDiffers"`
	UnitDiffers  bool   `json:"unitDiffers"`
}

// Detector compares curve metadata between a source and a target log.
type Detector struct {
	// NormalizeTime compares time indexes by instant instead of by raw text, so that
	// "2024-01-16T09:00:00Z" and "2024-01-16T09:00:00.000Z" are treated as equal.
	NormalizeTime bool
}

// DetectMismatches runs the default detector, which compares time indexes literally.
func DetectMismatches(source, target []CurveRecord) ([]MismatchRecord, error) {
	return Detector{}.Detect(source, target)
}

// Detect returns one record per mnemonic that is missing on either side or whose start,
// end or unit differ. Mnemonics match case-sensitively. Source records come first in
// source order, then target-only records in target order.
func (d Detector) Detect(source, target []CurveRecord) ([]MismatchRecord, error) {
	if err := checkKinds(source, target); err != nil {
		return nil, err
	}

	targetByMnemonic := make(map[string]CurveRecord, len(target))
	for _, t := range target {
		if _, dup := targetByMnemonic[t.Mnemonic]; !dup {
			targetByMnemonic[t.Mnemonic] = t
		}
	}

	out := make([]MismatchRecord, 0)
	seen := make(map[string]struct{}, len(source))
	for _, s := range source {
		if _, dup := seen[s.Mnemonic]; dup {
			continue
		}
		seen[s.Mnemonic] = struct{}{}

		t, ok := targetByMnemonic[s.Mnemonic]
		if !ok {
			out = append(out, onlyInSource(s))
			continue
		}
		if rec, differs := d.compare(s, t); differs {
			out = append(out, rec)
		}
	}

	for _, t := range target {
		if _, ok := seen[t.Mnemonic]; ok {
			continue
		}
		seen[t.Mnemonic] = struct{}{}
		out = append(out, onlyInTarget(t))
	}
	return out, nil
}

func (d Detector) compare(s, t CurveRecord) (MismatchRecord, bool) {
	rec := MismatchRecord{
		Mnemonic:     s.Mnemonic,
		SourceStart:  s.Start.String(),
		TargetStart:  t.Start.String(),
		SourceEnd:    s.End.String(),
		TargetEnd:    t.End.String(),
		SourceUnit:   unitString(s.Unit),
		TargetUnit:   unitString(t.Unit),
		StartDiffers: !sameEndpoint(s.Start, t.Start, d.NormalizeTime),
		EndDiffers:   !sameEndpoint(s.End, t.End, d.NormalizeTime),
		UnitDiffers:  s.Unit != t.Unit,
	}
	return rec, rec.StartDiffers || rec.EndDiffers || rec.UnitDiffers
}

// sameEndpoint treats an unreadable value as always differing.
func sameEndpoint(a, b Value, normalize bool) bool {
	if a.IsUnparseable() || b.IsUnparseable() {
		return false
	}
	return Equal(a, b, normalize)
}

func onlyInSource(s CurveRecord) MismatchRecord {
	return MismatchRecord{
		Mnemonic:     s.Mnemonic,
		SourceStart:  s.Start.String(),
		TargetStart:  MissingMarker,
		SourceEnd:    s.End.String(),
		TargetEnd:    MissingMarker,
		SourceUnit:   unitString(s.Unit),
		TargetUnit:   MissingMarker,
		StartDiffers: true,
		EndDiffers:   true,
		UnitDiffers:  true,
	}
}

func onlyInTarget(t CurveRecord) MismatchRecord {
	return MismatchRecord{
		Mnemonic:     t.Mnemonic,
		SourceStart:  MissingMarker,
		TargetStart:  t.Start.String(),
		SourceEnd:    MissingMarker,
		TargetEnd:    t.End.String(),
		SourceUnit:   MissingMarker,
		TargetUnit:   unitString(t.Unit),
		StartDiffers: true,
		EndDiffers:   true,
		UnitDiffers:  true,
	}
}

func unitString(u string) string {
	if u == "" {
		return MissingMarker
	}
	return u
}

// checkKinds refuses to compare a depth log with a time log.
func checkKinds(source, target []CurveRecord) error {
	var kind Kind
	for _, side := range [][]CurveRecord{source, target} {
		for _, c := range side {
			if kind == "" {
				kind = c.Kind
				continue
			}
			if c.Kind != kind {
				return &KindMismatchError{Left: kind, Right: c.Kind}
			}
		}
	}
	return nil
}
