package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/witsml-explorer/backend/internal/catalog"
	"github.com/witsml-explorer/backend/internal/logging"
	"github.com/witsml-explorer/backend/internal/logindex"
	"github.com/witsml-explorer/backend/internal/models"
	"github.com/witsml-explorer/backend/internal/parser"
	"github.com/witsml-explorer/backend/internal/storage"
)

// Service holds the collaborators the job executors read and write.
type Service struct {
	catalog catalog.Store
	files   storage.Store
	logger  *log.Logger
}

// NewService creates the executor set.
func NewService(store catalog.Store, files storage.Store) *Service {
	return &Service{catalog: store, files: files, logger: logging.New("jobs")}
}

// Register installs every executor on the manager.
func (s *Service) Register(m *Manager) {
	m.Register(models.JobTypeCopyLogData, s.CopyLogData)
	m.Register(models.JobTypeOffsetLogCurves, s.OffsetLogCurves)
	m.Register(models.JobTypeSpliceLogs, s.SpliceLogs)
	m.Register(models.JobTypeImportLogData, s.ImportLogData)
	m.Register(models.JobTypeModifyLogCurveInfo, s.ModifyLogCurveInfo)
}

func decode(payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return &logindex.ValidationError{Field: "payload", Value: "", Reason: err.Error()}
	}
	return nil
}

func validateRef(field string, ref models.LogRef) error {
	if err := ref.Validate(); err != nil {
		return &logindex.ValidationError{Field: field, Value: ref.String(), Reason: err.Error()}
	}
	return nil
}

// loadLog fetches a log with its curves and its index kind.
func (s *Service) loadLog(ctx context.Context, ref models.LogRef) (*models.LogObject, []models.LogCurveInfo, logindex.Kind, error) {
	lg, err := s.catalog.GetLog(ctx, ref)
	if err != nil {
		return nil, nil, "", err
	}
	kind, err := lg.Kind()
	if err != nil {
		return nil, nil, "", err
	}
	curves, err := s.catalog.GetCurves(ctx, ref)
	if err != nil {
		return nil, nil, "", err
	}
	return lg, curves, kind, nil
}

// CopyLogData copies curves into the target log within the requested range, clipped to
// the source log's range.
func (s *Service) CopyLogData(ctx context.Context, payload []byte) (*Task, error) {
	var job models.CopyLogDataJob
	if err := decode(payload, &job); err != nil {
		return nil, err
	}
	if err := validateRef("source", job.Source); err != nil {
		return nil, err
	}
	if err := validateRef("target", job.Target); err != nil {
		return nil, err
	}

	source, _, sourceKind, err := s.loadLog(ctx, job.Source)
	if err != nil {
		return nil, err
	}
	target, _, targetKind, err := s.loadLog(ctx, job.Target)
	if err != nil {
		return nil, err
	}
	if sourceKind != targetKind {
		return nil, &logindex.KindMismatchError{Left: sourceKind, Right: targetKind}
	}

	copyRange, err := copySelection(*source, job.StartIndex, job.EndIndex, sourceKind)
	if err != nil {
		return nil, err
	}

	return &Task{
		Description: fmt.Sprintf("Copy %s [%s, %s] to %s", job.Source, copyRange.StartIndex(), copyRange.EndIndex(), target.Ref()),
		Run: func(ctx context.Context) (*models.JobReport, error) {
			return s.runCopy(ctx, job, copyRange)
		},
	}, nil
}

// copySelection intersects the requested range with the source log range. Empty bounds
// select the source log's own bound.
func copySelection(source models.LogObject, startRaw, endRaw string, kind logindex.Kind) (logindex.Range, error) {
	sourceRange, ok, err := source.Range()
	if err != nil {
		return logindex.Range{}, err
	}
	if !ok {
		return logindex.Range{}, &logindex.ValidationError{Field: "source", Value: source.UID, Reason: "source log has no data"}
	}
	if startRaw == "" {
		startRaw = sourceRange.StartIndex()
	}
	if endRaw == "" {
		endRaw = sourceRange.EndIndex()
	}
	requested, err := logindex.FromEndpoints(startRaw, endRaw, kind, sourceRange.Direction())
	if err != nil {
		return logindex.Range{}, err
	}
	return sourceRange.Clamp(requested)
}

func (s *Service) runCopy(ctx context.Context, job models.CopyLogDataJob, copyRange logindex.Range) (*models.JobReport, error) {
	source, sourceCurves, kind, err := s.loadLog(ctx, job.Source)
	if err != nil {
		return nil, err
	}
	target, targetCurves, _, err := s.loadLog(ctx, job.Target)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(job.Mnemonics))
	for _, m := range job.Mnemonics {
		wanted[m] = true
	}
	if len(wanted) > 0 && source.IndexCurve != "" {
		wanted[source.IndexCurve] = true
	}

	report := &models.JobReport{Title: "Copy log data"}
	for _, curve := range sourceCurves {
		if len(wanted) > 0 && !wanted[curve.Mnemonic] {
			continue
		}
		curveRange, ok := curve.Record(kind).Range()
		if !ok {
			continue
		}
		piece, ok, err := curveRange.Intersection(copyRange)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		targetCurves, err = mergeCurve(targetCurves, curve, piece, kind)
		if err != nil {
			return nil, err
		}
		report.Items = append(report.Items, map[string]string{
			"mnemonic":   curve.Mnemonic,
			"startIndex": piece.StartIndex(),
			"endIndex":   piece.EndIndex(),
		})
	}

	if err := widenLog(target, copyRange); err != nil {
		return nil, err
	}
	if err := s.catalog.PutLog(ctx, *target, targetCurves); err != nil {
		return nil, err
	}
	report.Summary = fmt.Sprintf("Copied %d curves from %s to %s", len(report.Items), source.Ref(), target.Ref())
	return report, nil
}

// mergeCurve widens the curve with the same mnemonic to cover r, or appends a copy of
// template limited to r.
func mergeCurve(curves []models.LogCurveInfo, template models.LogCurveInfo, r logindex.Range, kind logindex.Kind) ([]models.LogCurveInfo, error) {
	for i := range curves {
		if curves[i].Mnemonic != template.Mnemonic {
			continue
		}
		merged := r
		if existing, ok := curves[i].Record(kind).Range(); ok {
			var err error
			if merged, err = logindex.Union(existing, r); err != nil {
				return nil, err
			}
		}
		curves[i].SetBounds(merged)
		return curves, nil
	}
	added := template
	added.MinIndex, added.MaxIndex, added.MinDateTimeIndex, added.MaxDateTimeIndex = "", "", "", ""
	added.SetBounds(r)
	return append(curves, added), nil
}

// widenLog extends the log header so it covers r.
func widenLog(lg *models.LogObject, r logindex.Range) error {
	current, ok, err := lg.Range()
	if err != nil {
		return err
	}
	if ok {
		if r, err = logindex.Union(current, r); err != nil {
			return err
		}
	}
	setLogRange(lg, r)
	return nil
}

// setLogRange writes r into the header in the log's own direction.
func setLogRange(lg *models.LogObject, r logindex.Range) {
	if dir, _ := logindex.ParseDirection(lg.Direction); dir == logindex.Decreasing {
		lg.StartIndex, lg.EndIndex = r.EndIndex(), r.StartIndex()
		return
	}
	lg.StartIndex, lg.EndIndex = r.StartIndex(), r.EndIndex()
}

// OffsetLogCurves shifts the index of selected curves, or of the whole log when no
// mnemonics are given.
func (s *Service) OffsetLogCurves(ctx context.Context, payload []byte) (*Task, error) {
	var job models.OffsetLogCurvesJob
	if err := decode(payload, &job); err != nil {
		return nil, err
	}
	if err := validateRef("log", job.Log); err != nil {
		return nil, err
	}
	_, _, kind, err := s.loadLog(ctx, job.Log)
	if err != nil {
		return nil, err
	}
	offset, err := logindex.ValidateOffset(job.Offset, kind)
	if err != nil {
		return nil, err
	}

	return &Task{
		Description: fmt.Sprintf("Offset %s by %s", job.Log, job.Offset),
		Run: func(ctx context.Context) (*models.JobReport, error) {
			return s.runOffset(ctx, job, offset)
		},
	}, nil
}

func (s *Service) runOffset(ctx context.Context, job models.OffsetLogCurvesJob, offset logindex.Offset) (*models.JobReport, error) {
	lg, curves, kind, err := s.loadLog(ctx, job.Log)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(job.Mnemonics))
	for _, m := range job.Mnemonics {
		wanted[m] = true
	}

	report := &models.JobReport{Title: "Offset log curves"}
	var shifted []logindex.Range
	for i, curve := range curves {
		r, ok := curve.Record(kind).Range()
		if !ok {
			continue
		}
		if len(wanted) == 0 || wanted[curve.Mnemonic] {
			moved, err := r.OffsetBy(offset)
			if err != nil {
				return nil, err
			}
			curves[i].SetBounds(moved)
			report.Items = append(report.Items, map[string]string{
				"mnemonic":      curve.Mnemonic,
				"oldStartIndex": r.StartIndex(),
				"oldEndIndex":   r.EndIndex(),
				"newStartIndex": moved.StartIndex(),
				"newEndIndex":   moved.EndIndex(),
			})
			r = moved
		}
		shifted = append(shifted, r)
	}

	switch {
	case len(shifted) > 0:
		total, err := logindex.Union(shifted...)
		if err != nil {
			return nil, err
		}
		setLogRange(lg, total)
	case len(wanted) == 0:
		if r, ok, err := lg.Range(); err == nil && ok {
			moved, err := r.OffsetBy(offset)
			if err != nil {
				return nil, err
			}
			setLogRange(lg, moved)
		}
	}

	if err := s.catalog.PutLog(ctx, *lg, curves); err != nil {
		return nil, err
	}
	report.Summary = fmt.Sprintf("Offset %d curves of %s by %s", len(report.Items), lg.Ref(), job.Offset)
	return report, nil
}

// SpliceLogs combines logs of one wellbore into a new log. Earlier logs in the list win
// where ranges overlap.
func (s *Service) SpliceLogs(ctx context.Context, payload []byte) (*Task, error) {
	var job models.SpliceLogsJob
	if err := decode(payload, &job); err != nil {
		return nil, err
	}
	if len(job.Logs) < 2 {
		return nil, &logindex.ValidationError{Field: "logs", Value: fmt.Sprint(len(job.Logs)), Reason: "at least two logs are needed"}
	}
	var kind logindex.Kind
	for i, ref := range job.Logs {
		if err := validateRef("logs", ref); err != nil {
			return nil, err
		}
		if ref.WellUID != job.Logs[0].WellUID || ref.WellboreUID != job.Logs[0].WellboreUID {
			return nil, &logindex.ValidationError{Field: "logs", Value: ref.String(), Reason: "logs must belong to one wellbore"}
		}
		_, _, k, err := s.loadLog(ctx, ref)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			kind = k
		} else if k != kind {
			return nil, &logindex.KindMismatchError{Left: kind, Right: k}
		}
	}
	if job.NewLogUID == "" {
		job.NewLogUID = uuid.New().String()
	}
	if job.NewLogName == "" {
		job.NewLogName = "Spliced log"
	}

	return &Task{
		Description: fmt.Sprintf("Splice %d logs into %s", len(job.Logs), job.NewLogUID),
		Run: func(ctx context.Context) (*models.JobReport, error) {
			return s.runSplice(ctx, job)
		},
	}, nil
}

type spliceInput struct {
	log    *models.LogObject
	curves []models.LogCurveInfo
}

func (s *Service) runSplice(ctx context.Context, job models.SpliceLogsJob) (*models.JobReport, error) {
	var inputs []spliceInput
	var ranges []logindex.Range
	var kind logindex.Kind
	for _, ref := range job.Logs {
		lg, curves, k, err := s.loadLog(ctx, ref)
		if err != nil {
			return nil, err
		}
		r, ok, err := lg.Range()
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		kind = k
		inputs = append(inputs, spliceInput{log: lg, curves: curves})
		ranges = append(ranges, r)
	}
	if len(inputs) == 0 {
		return nil, &logindex.ValidationError{Field: "logs", Value: "", Reason: "none of the logs has data"}
	}

	total, pieces, err := logindex.Splice(ranges)
	if err != nil {
		return nil, err
	}

	report := &models.JobReport{Title: "Splice logs"}
	var curves []models.LogCurveInfo
	for _, piece := range pieces {
		in := inputs[piece.Log]
		report.Items = append(report.Items, map[string]string{
			"logUid":     in.log.UID,
			"startIndex": piece.Range.StartIndex(),
			"endIndex":   piece.Range.EndIndex(),
		})
		for _, curve := range in.curves {
			r, ok := curve.Record(kind).Range()
			if !ok {
				continue
			}
			part, ok, err := r.Intersection(piece.Range)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if curves, err = mergeCurve(curves, curve, part, kind); err != nil {
				return nil, err
			}
		}
	}

	spliced := *inputs[0].log
	spliced.UID = job.NewLogUID
	spliced.Name = job.NewLogName
	setLogRange(&spliced, total)
	if err := s.catalog.PutLog(ctx, spliced, curves); err != nil {
		return nil, err
	}
	report.Summary = fmt.Sprintf("Spliced %d logs into %s covering [%s, %s]",
		len(inputs), spliced.Ref(), total.StartIndex(), total.EndIndex())
	return report, nil
}

// ImportLogData merges the column ranges of an uploaded file into a log. Data overlapping
// existing curves is refused unless the job asks to overwrite.
func (s *Service) ImportLogData(ctx context.Context, payload []byte) (*Task, error) {
	var job models.ImportLogDataJob
	if err := decode(payload, &job); err != nil {
		return nil, err
	}
	if err := validateRef("target", job.Target); err != nil {
		return nil, err
	}
	if job.FileID == "" {
		return nil, &logindex.ValidationError{Field: "fileId", Value: "", Reason: "is required"}
	}
	lg, curves, kind, err := s.loadLog(ctx, job.Target)
	if err != nil {
		return nil, err
	}
	file, err := s.readImport(job.FileID, lg.IndexCurve)
	if err != nil {
		return nil, err
	}
	if !job.Overwrite && logindex.DetectOverlap(file.Query(kind), models.Records(curves, kind)) {
		return nil, &logindex.ValidationError{Field: "overwrite", Value: "false", Reason: "imported data overlaps existing curve data"}
	}

	return &Task{
		Description: fmt.Sprintf("Import file %s into %s", job.FileID, job.Target),
		Run: func(ctx context.Context) (*models.JobReport, error) {
			report, err := s.runImport(ctx, job)
			status := models.FileStatusImported
			if err != nil {
				status = models.FileStatusError
			}
			if markErr := s.files.MarkStatus(job.FileID, status); markErr != nil {
				s.logger.Warnf("marking import file %s: %v", job.FileID, markErr)
			}
			return report, err
		},
	}, nil
}

func (s *Service) readImport(fileID, indexCurve string) (*parser.ImportFile, error) {
	rc, err := s.files.Open(fileID)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	file, err := parser.ParseImportCSV(rc)
	if err != nil {
		return nil, &logindex.ValidationError{Field: "fileId", Value: fileID, Reason: err.Error()}
	}
	if indexCurve != "" {
		file.SetIndexColumn(indexCurve)
	}
	return file, nil
}

func (s *Service) runImport(ctx context.Context, job models.ImportLogDataJob) (*models.JobReport, error) {
	lg, curves, kind, err := s.loadLog(ctx, job.Target)
	if err != nil {
		return nil, err
	}
	file, err := s.readImport(job.FileID, lg.IndexCurve)
	if err != nil {
		return nil, err
	}

	columns := logindex.ImportRanges(file.Query(kind))
	if len(columns) == 0 {
		return nil, &logindex.ValidationError{Field: "fileId", Value: job.FileID, Reason: "file holds no readable data"}
	}
	units := make(map[string]string, len(file.Columns))
	for _, c := range file.Columns {
		units[c.Name] = c.Unit
	}

	report := &models.JobReport{Title: "Import log data"}
	var imported []logindex.Range
	for _, col := range columns {
		template := models.LogCurveInfo{UID: col.Mnemonic, Mnemonic: col.Mnemonic, Unit: units[col.Mnemonic]}
		if curves, err = mergeCurve(curves, template, col.Range, kind); err != nil {
			return nil, err
		}
		imported = append(imported, col.Range)
		report.Items = append(report.Items, map[string]string{
			"mnemonic":   col.Mnemonic,
			"startIndex": col.Range.StartIndex(),
			"endIndex":   col.Range.EndIndex(),
		})
	}

	total, err := logindex.Union(imported...)
	if err != nil {
		return nil, err
	}
	indexName := file.IndexName()
	if lg.IndexCurve != "" {
		indexName = lg.IndexCurve
	}
	index := models.LogCurveInfo{UID: indexName, Mnemonic: indexName, Unit: units[file.IndexName()]}
	if curves, err = mergeCurve(curves, index, total, kind); err != nil {
		return nil, err
	}
	if err := widenLog(lg, total); err != nil {
		return nil, err
	}
	if err := s.catalog.PutLog(ctx, *lg, curves); err != nil {
		return nil, err
	}
	report.Summary = fmt.Sprintf("Imported %d curves into %s", len(columns), lg.Ref())
	return report, nil
}

// ModifyLogCurveInfo applies a field patch to the metadata of one curve.
func (s *Service) ModifyLogCurveInfo(ctx context.Context, payload []byte) (*Task, error) {
	var job models.ModifyLogCurveInfoJob
	if err := decode(payload, &job); err != nil {
		return nil, err
	}
	if err := validateRef("log", job.Log); err != nil {
		return nil, err
	}
	if job.Mnemonic == "" {
		return nil, &logindex.ValidationError{Field: "mnemonic", Value: "", Reason: "is required"}
	}
	if len(job.Patch.Changed()) == 0 {
		return nil, &logindex.ValidationError{Field: "patch", Value: "", Reason: "no fields to change"}
	}
	if _, err := job.Patch.Apply(nil, models.EditableCurveFields...); err != nil {
		return nil, &logindex.ValidationError{Field: "patch", Value: "", Reason: err.Error()}
	}
	_, curves, _, err := s.loadLog(ctx, job.Log)
	if err != nil {
		return nil, err
	}
	if findCurve(curves, job.Mnemonic) < 0 {
		return nil, &logindex.ValidationError{Field: "mnemonic", Value: job.Mnemonic, Reason: "no such curve in the log"}
	}

	return &Task{
		Description: fmt.Sprintf("Modify %s in %s", job.Mnemonic, job.Log),
		Run: func(ctx context.Context) (*models.JobReport, error) {
			curves, err := s.catalog.GetCurves(ctx, job.Log)
			if err != nil {
				return nil, err
			}
			i := findCurve(curves, job.Mnemonic)
			if i < 0 {
				return nil, fmt.Errorf("curve %s disappeared from %s", job.Mnemonic, job.Log)
			}
			fields, err := job.Patch.Apply(curves[i].Fields(), models.EditableCurveFields...)
			if err != nil {
				return nil, err
			}
			curves[i] = curves[i].WithFields(fields)
			if err := s.catalog.UpdateCurves(ctx, job.Log, curves); err != nil {
				return nil, err
			}

			report := &models.JobReport{
				Title:   "Modify log curve info",
				Summary: fmt.Sprintf("Updated %s in %s", job.Mnemonic, job.Log),
			}
			for _, name := range job.Patch.Changed() {
				report.Items = append(report.Items, map[string]string{"field": name, "value": fields[name]})
			}
			return report, nil
		},
	}, nil
}

func findCurve(curves []models.LogCurveInfo, mnemonic string) int {
	for i, c := range curves {
		if c.Mnemonic == mnemonic {
			return i
		}
	}
	return -1
}
