// handlers_logs.go - Log header and curve metadata handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/witsml-explorer/backend/internal/catalog"
	"github.com/witsml-explorer/backend/internal/models"
)

// LogHandlerImpl implements the LogHandler interface
type LogHandlerImpl struct {
	catalog catalog.Store
}

// NewLogHandler creates a new log handler
func NewLogHandler(store catalog.Store) LogHandler {
	return &LogHandlerImpl{catalog: store}
}

// PutLogRequest replaces a log header and its curves
type PutLogRequest struct {
	Log    models.LogObject      `json:"log"`
	Curves []models.LogCurveInfo `json:"curves"`
}

func (r *PutLogRequest) validate() error {
	if _, err := r.Log.Kind(); err != nil {
		apiErr := NewValidationError("log.indexType")
		apiErr.Details = err.Error()
		return apiErr
	}
	seen := make(map[string]bool, len(r.Curves))
	for _, c := range r.Curves {
		if c.Mnemonic == "" {
			return NewValidationError("curves.mnemonic")
		}
		if seen[c.Mnemonic] {
			apiErr := NewValidationError("curves.mnemonic")
			apiErr.Details = "duplicate mnemonic " + c.Mnemonic
			return apiErr
		}
		seen[c.Mnemonic] = true
	}
	return nil
}

// logRef reads the UID triple from the path parameters
func logRef(c echo.Context) (models.LogRef, error) {
	ref := models.LogRef{
		WellUID:     c.Param("wellUid"),
		WellboreUID: c.Param("wellboreUid"),
		LogUID:      c.Param("logUid"),
	}
	switch {
	case ref.WellUID == "":
		return ref, NewValidationError("wellUid")
	case ref.WellboreUID == "":
		return ref, NewValidationError("wellboreUid")
	case ref.LogUID == "":
		return ref, NewValidationError("logUid")
	}
	return ref, nil
}

// HandleListLogs returns the log headers of a wellbore
func (h *LogHandlerImpl) HandleListLogs(c echo.Context) error {
	wellUID, wellboreUID := c.Param("wellUid"), c.Param("wellboreUid")
	if wellUID == "" {
		return NewValidationError("wellUid")
	}
	if wellboreUID == "" {
		return NewValidationError("wellboreUid")
	}
	logs, err := h.catalog.ListLogs(c.Request().Context(), wellUID, wellboreUID)
	if err != nil {
		return err
	}
	if logs == nil {
		logs = []models.LogObject{}
	}
	return c.JSON(http.StatusOK, logs)
}

// HandleGetLog returns one log header
func (h *LogHandlerImpl) HandleGetLog(c echo.Context) error {
	ref, err := logRef(c)
	if err != nil {
		return err
	}
	lg, err := h.catalog.GetLog(c.Request().Context(), ref)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lg)
}

// HandlePutLog creates or replaces a log with its curves
func (h *LogHandlerImpl) HandlePutLog(c echo.Context) error {
	ref, err := logRef(c)
	if err != nil {
		return err
	}

	var req PutLogRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid request body", err)
	}
	req.Log.WellUID, req.Log.WellboreUID, req.Log.UID = ref.WellUID, ref.WellboreUID, ref.LogUID
	if err := req.validate(); err != nil {
		return err
	}
	if req.Curves == nil {
		req.Curves = []models.LogCurveInfo{}
	}

	if err := h.catalog.PutLog(c.Request().Context(), req.Log, req.Curves); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, req.Log)
}

// HandleDeleteLog removes a log and its curves
func (h *LogHandlerImpl) HandleDeleteLog(c echo.Context) error {
	ref, err := logRef(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteLog(c.Request().Context(), ref); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleGetCurves returns the curve metadata of a log as JSON or MessagePack
func (h *LogHandlerImpl) HandleGetCurves(c echo.Context) error {
	ref, err := logRef(c)
	if err != nil {
		return err
	}
	curves, err := h.catalog.GetCurves(c.Request().Context(), ref)
	if err != nil {
		return err
	}
	if curves == nil {
		curves = []models.LogCurveInfo{}
	}
	return respond(c, http.StatusOK, curves)
}
