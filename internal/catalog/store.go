// Package catalog stores log headers and curve metadata. It plays the part of the WITSML
// server query layer for the comparison, import and job features.
package catalog

import (
	"context"
	"errors"

	"github.com/witsml-explorer/backend/internal/models"
)

// ErrLogNotFound is returned when no log matches a UID triple.
var ErrLogNotFound = errors.New("log not found")

// Store defines the catalog operations.
type Store interface {
	// PutLog creates or replaces a log header together with its full curve list.
	PutLog(ctx context.Context, log models.LogObject, curves []models.LogCurveInfo) error
	GetLog(ctx context.Context, ref models.LogRef) (*models.LogObject, error)
	// GetCurves returns the curves in stored order. A log without curves gives an
	// empty slice, not an error.
	GetCurves(ctx context.Context, ref models.LogRef) ([]models.LogCurveInfo, error)
	// UpdateCurves replaces the curve list of an existing log and leaves the header alone.
	UpdateCurves(ctx context.Context, ref models.LogRef, curves []models.LogCurveInfo) error
	ListLogs(ctx context.Context, wellUID, wellboreUID string) ([]models.LogObject, error)
	DeleteLog(ctx context.Context, ref models.LogRef) error
	Close() error
}
