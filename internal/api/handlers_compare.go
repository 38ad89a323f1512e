// handlers_compare.go - Curve comparison and index helper handlers
package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/witsml-explorer/backend/internal/catalog"
	"github.com/witsml-explorer/backend/internal/logindex"
	"github.com/witsml-explorer/backend/internal/models"
)

// CompareHandlerImpl implements the CompareHandler interface
type CompareHandlerImpl struct {
	catalog  catalog.Store
	detector logindex.Detector
}

// NewCompareHandler creates a new compare handler
func NewCompareHandler(store catalog.Store, detector logindex.Detector) CompareHandler {
	return &CompareHandlerImpl{
		catalog:  store,
		detector: detector,
	}
}

// CompareCurvesRequest compares two logs either by reference or with inline curves.
// References win when both are given.
type CompareCurvesRequest struct {
	Source *models.LogRef `json:"source,omitempty"`
	Target *models.LogRef `json:"target,omitempty"`

	IndexType    string                `json:"indexType,omitempty"`
	SourceCurves []models.LogCurveInfo `json:"sourceCurves,omitempty"`
	TargetCurves []models.LogCurveInfo `json:"targetCurves,omitempty"`
}

func (r *CompareCurvesRequest) validate() error {
	if r.Source != nil || r.Target != nil {
		if r.Source == nil {
			return NewValidationError("source")
		}
		if r.Target == nil {
			return NewValidationError("target")
		}
		if err := r.Source.Validate(); err != nil {
			apiErr := NewValidationError("source")
			apiErr.Details = err.Error()
			return apiErr
		}
		if err := r.Target.Validate(); err != nil {
			apiErr := NewValidationError("target")
			apiErr.Details = err.Error()
			return apiErr
		}
		return nil
	}
	if r.IndexType == "" {
		return NewValidationError("indexType")
	}
	return nil
}

// CompareCurvesResponse lists the curves whose index metadata differ
type CompareCurvesResponse struct {
	IndexType  logindex.Kind             `json:"indexType"`
	Mismatches []logindex.MismatchRecord `json:"mismatches"`
}

// HandleCompareCurves detects curve index mismatches between a source and a target log
func (h *CompareHandlerImpl) HandleCompareCurves(c echo.Context) error {
	var req CompareCurvesRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	var (
		kind           logindex.Kind
		source, target []logindex.CurveRecord
		err            error
	)
	if req.Source != nil {
		kind, source, target, err = h.recordsByRef(c.Request().Context(), *req.Source, *req.Target)
	} else {
		kind, err = logindex.ParseKind(req.IndexType)
		if err != nil {
			apiErr := NewValidationError("indexType")
			apiErr.Details = err.Error()
			return apiErr
		}
		source = models.Records(req.SourceCurves, kind)
		target = models.Records(req.TargetCurves, kind)
	}
	if err != nil {
		return err
	}

	mismatches, err := h.detector.Detect(source, target)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, CompareCurvesResponse{
		IndexType:  kind,
		Mismatches: mismatches,
	})
}

func (h *CompareHandlerImpl) recordsByRef(ctx context.Context, sourceRef, targetRef models.LogRef) (logindex.Kind, []logindex.CurveRecord, []logindex.CurveRecord, error) {
	sourceKind, sourceCurves, err := h.loadCurves(ctx, sourceRef)
	if err != nil {
		return "", nil, nil, err
	}
	targetKind, targetCurves, err := h.loadCurves(ctx, targetRef)
	if err != nil {
		return "", nil, nil, err
	}
	if sourceKind != targetKind {
		return "", nil, nil, &logindex.KindMismatchError{Left: sourceKind, Right: targetKind}
	}
	return sourceKind, models.Records(sourceCurves, sourceKind), models.Records(targetCurves, targetKind), nil
}

func (h *CompareHandlerImpl) loadCurves(ctx context.Context, ref models.LogRef) (logindex.Kind, []models.LogCurveInfo, error) {
	lg, err := h.catalog.GetLog(ctx, ref)
	if err != nil {
		return "", nil, err
	}
	kind, err := lg.Kind()
	if err != nil {
		return "", nil, NewInternalError("stored log has an unknown index type", err)
	}
	curves, err := h.catalog.GetCurves(ctx, ref)
	if err != nil {
		return "", nil, err
	}
	return kind, curves, nil
}

// CompareDateTimeRequest holds two date time strings to highlight
type CompareDateTimeRequest struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// CompareDateTimeResponse holds the highlighted segments of both inputs
type CompareDateTimeResponse struct {
	First  []logindex.Segment `json:"first"`
	Second []logindex.Segment `json:"second"`
}

// HandleCompareDateTime splits two date times into segments and flags the differing ones
func (h *CompareHandlerImpl) HandleCompareDateTime(c echo.Context) error {
	var req CompareDateTimeRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid request body", err)
	}
	first, second := logindex.DiffSegments(req.First, req.Second)
	return c.JSON(http.StatusOK, CompareDateTimeResponse{First: first, Second: second})
}

// ValidateOffsetRequest holds a user-entered offset
type ValidateOffsetRequest struct {
	Offset    string `json:"offset"`
	IndexType string `json:"indexType"`
}

func (r *ValidateOffsetRequest) validate() error {
	if r.Offset == "" {
		return NewValidationError("offset")
	}
	if r.IndexType == "" {
		return NewValidationError("indexType")
	}
	return nil
}

// ValidateOffsetResponse describes an accepted offset. Amount is in depth units for depth
// offsets and in milliseconds for time offsets.
type ValidateOffsetResponse struct {
	Offset       string        `json:"offset"`
	IndexType    logindex.Kind `json:"indexType"`
	Amount       float64       `json:"amount"`
	Milliseconds *int64        `json:"milliseconds,omitempty"`
}

// HandleValidateOffset checks an offset before an OffsetLogCurves job is ordered
func (h *CompareHandlerImpl) HandleValidateOffset(c echo.Context) error {
	var req ValidateOffsetRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}
	kind, err := logindex.ParseKind(req.IndexType)
	if err != nil {
		apiErr := NewValidationError("indexType")
		apiErr.Details = err.Error()
		return apiErr
	}

	offset, err := logindex.ValidateOffset(req.Offset, kind)
	if err != nil {
		return err
	}

	resp := ValidateOffsetResponse{
		Offset:    req.Offset,
		IndexType: kind,
		Amount:    offset.Amount(),
	}
	if kind == logindex.KindTime {
		ms := offset.Duration().Milliseconds()
		resp.Milliseconds = &ms
	}
	return c.JSON(http.StatusOK, resp)
}
