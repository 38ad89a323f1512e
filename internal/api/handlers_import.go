// handlers_import.go - Import file upload and overlap handlers
package api

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/witsml-explorer/backend/internal/catalog"
	"github.com/witsml-explorer/backend/internal/logindex"
	"github.com/witsml-explorer/backend/internal/models"
	"github.com/witsml-explorer/backend/internal/parser"
	"github.com/witsml-explorer/backend/internal/storage"
)

// ImportHandlerImpl implements the ImportHandler interface
type ImportHandlerImpl struct {
	catalog      catalog.Store
	files        storage.Store
	allowedTypes []string
}

// NewImportHandler creates a new import handler. An empty allowedTypes accepts any
// file extension.
func NewImportHandler(store catalog.Store, files storage.Store, allowedTypes []string) ImportHandler {
	normalized := make([]string, 0, len(allowedTypes))
	for _, ext := range allowedTypes {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" {
			normalized = append(normalized, ext)
		}
	}
	return &ImportHandlerImpl{
		catalog:      store,
		files:        files,
		allowedTypes: normalized,
	}
}

// ImportUploadRequest carries a base64 encoded import file
type ImportUploadRequest struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

func (r *ImportUploadRequest) validate() error {
	if r.Name == "" {
		return NewValidationError("name")
	}
	if r.Data == "" {
		return NewValidationError("data")
	}
	return nil
}

// ImportUploadResponse describes a stored import file and its header
type ImportUploadResponse struct {
	*models.FileInfo
	Columns    []logindex.ImportColumn `json:"columns"`
	IndexCurve string                  `json:"indexCurve"`
	RowCount   int                     `json:"rowCount"`
}

// HandleUploadImportFile stores an import file after checking that it parses
func (h *ImportHandlerImpl) HandleUploadImportFile(c echo.Context) error {
	var req ImportUploadRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}
	if !h.allowed(req.Name) {
		apiErr := NewValidationError("name")
		apiErr.Details = "file type not allowed: " + filepath.Ext(req.Name)
		return apiErr
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return NewBadRequestError("Invalid base64 data", err)
	}
	file, err := parser.ParseImportCSV(bytes.NewReader(data))
	if err != nil {
		return NewBadRequestError("Invalid import file", err)
	}

	info, err := h.files.SaveBytes(req.Name, data)
	if err != nil {
		return NewInternalError("Failed to save file", err)
	}

	return c.JSON(http.StatusCreated, ImportUploadResponse{
		FileInfo:   info,
		Columns:    file.Columns,
		IndexCurve: file.IndexName(),
		RowCount:   len(file.Rows),
	})
}

// HandleListImportFiles lists stored import files, newest first
func (h *ImportHandlerImpl) HandleListImportFiles(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return NewValidationError("limit")
		}
		limit = n
	}
	files, err := h.files.List(limit)
	if err != nil {
		return NewInternalError("Failed to list files", err)
	}
	if files == nil {
		files = []*models.FileInfo{}
	}
	return c.JSON(http.StatusOK, files)
}

// ImportOverlapRequest checks a stored file, or inline columns and rows, against a log
type ImportOverlapRequest struct {
	Target models.LogRef `json:"target"`
	FileID string        `json:"fileId,omitempty"`

	Columns []logindex.ImportColumn `json:"columns,omitempty"`
	Rows    []string                `json:"rows,omitempty"`
	// IndexCurve names the index column, defaulting to the log's index curve
	IndexCurve string `json:"indexCurve,omitempty"`
}

func (r *ImportOverlapRequest) validate() error {
	if err := r.Target.Validate(); err != nil {
		apiErr := NewValidationError("target")
		apiErr.Details = err.Error()
		return apiErr
	}
	if r.FileID == "" && len(r.Columns) == 0 {
		return NewValidationError("fileId")
	}
	return nil
}

// ImportColumnRange is the index range of one import column
type ImportColumnRange struct {
	Mnemonic   string `json:"mnemonic"`
	StartIndex string `json:"startIndex"`
	EndIndex   string `json:"endIndex"`
}

// ImportOverlapResponse tells whether importing would overwrite existing data
type ImportOverlapResponse struct {
	Overlap    bool                `json:"overlap"`
	IndexCurve string              `json:"indexCurve"`
	Ranges     []ImportColumnRange `json:"ranges"`
}

// HandleImportOverlap reports whether import data overlaps the target log's curves
func (h *ImportHandlerImpl) HandleImportOverlap(c echo.Context) error {
	var req ImportOverlapRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	ctx := c.Request().Context()
	lg, err := h.catalog.GetLog(ctx, req.Target)
	if err != nil {
		return err
	}
	kind, err := lg.Kind()
	if err != nil {
		return NewInternalError("stored log has an unknown index type", err)
	}
	curves, err := h.catalog.GetCurves(ctx, req.Target)
	if err != nil {
		return err
	}

	file, err := h.importFile(&req)
	if err != nil {
		return err
	}
	indexCurve := req.IndexCurve
	if indexCurve == "" {
		indexCurve = lg.IndexCurve
	}
	if indexCurve != "" && !file.SetIndexColumn(indexCurve) && req.IndexCurve != "" {
		apiErr := NewValidationError("indexCurve")
		apiErr.Details = "no column named " + req.IndexCurve
		return apiErr
	}

	query := file.Query(kind)
	resp := ImportOverlapResponse{
		Overlap:    logindex.DetectOverlap(query, models.Records(curves, kind)),
		IndexCurve: file.IndexName(),
		Ranges:     []ImportColumnRange{},
	}
	for _, col := range logindex.ImportRanges(query) {
		resp.Ranges = append(resp.Ranges, ImportColumnRange{
			Mnemonic:   col.Mnemonic,
			StartIndex: col.Range.StartIndex(),
			EndIndex:   col.Range.EndIndex(),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ImportHandlerImpl) importFile(req *ImportOverlapRequest) (*parser.ImportFile, error) {
	if req.FileID == "" {
		return &parser.ImportFile{Columns: req.Columns, Rows: req.Rows}, nil
	}
	rc, err := h.files.Open(req.FileID)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	file, err := parser.ParseImportCSV(rc)
	if err != nil {
		return nil, NewBadRequestError("Invalid import file", err)
	}
	return file, nil
}

func (h *ImportHandlerImpl) allowed(name string) bool {
	if len(h.allowedTypes) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range h.allowedTypes {
		if a == ext {
			return true
		}
	}
	return false
}
