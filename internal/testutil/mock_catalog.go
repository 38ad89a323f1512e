package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/witsml-explorer/backend/internal/catalog"
	"github.com/witsml-explorer/backend/internal/models"
)

// MockCatalog implements catalog.Store in memory
type MockCatalog struct {
	mu     sync.RWMutex
	logs   map[models.LogRef]models.LogObject
	curves map[models.LogRef][]models.LogCurveInfo

	// FailWith, when set, is returned by every call
	FailWith error
}

// NewMockCatalog creates an empty catalog
func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		logs:   make(map[models.LogRef]models.LogObject),
		curves: make(map[models.LogRef][]models.LogCurveInfo),
	}
}

var _ catalog.Store = (*MockCatalog)(nil)

func (m *MockCatalog) PutLog(_ context.Context, lg models.LogObject, curves []models.LogCurveInfo) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	if err := lg.Ref().Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[lg.Ref()] = lg
	m.curves[lg.Ref()] = append([]models.LogCurveInfo(nil), curves...)
	return nil
}

func (m *MockCatalog) GetLog(_ context.Context, ref models.LogRef) (*models.LogObject, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	lg, ok := m.logs[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrLogNotFound, ref)
	}
	return &lg, nil
}

func (m *MockCatalog) GetCurves(_ context.Context, ref models.LogRef) ([]models.LogCurveInfo, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.logs[ref]; !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrLogNotFound, ref)
	}
	return append(make([]models.LogCurveInfo, 0), m.curves[ref]...), nil
}

func (m *MockCatalog) UpdateCurves(_ context.Context, ref models.LogRef, curves []models.LogCurveInfo) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.logs[ref]; !ok {
		return fmt.Errorf("%w: %s", catalog.ErrLogNotFound, ref)
	}
	m.curves[ref] = append([]models.LogCurveInfo(nil), curves...)
	return nil
}

func (m *MockCatalog) ListLogs(_ context.Context, wellUID, wellboreUID string) ([]models.LogObject, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	logs := make([]models.LogObject, 0)
	for ref, lg := range m.logs {
		if ref.WellUID == wellUID && ref.WellboreUID == wellboreUID {
			logs = append(logs, lg)
		}
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].UID < logs[j].UID })
	return logs, nil
}

func (m *MockCatalog) DeleteLog(_ context.Context, ref models.LogRef) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.logs[ref]; !ok {
		return fmt.Errorf("%w: %s", catalog.ErrLogNotFound, ref)
	}
	delete(m.logs, ref)
	delete(m.curves, ref)
	return nil
}

func (m *MockCatalog) Close() error { return nil }

// AddLog stores a log without validation
func (m *MockCatalog) AddLog(lg models.LogObject, curves ...models.LogCurveInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[lg.Ref()] = lg
	m.curves[lg.Ref()] = curves
}
