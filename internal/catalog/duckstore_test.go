package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/witsml-explorer/backend/internal/models"
)

// createTestStore creates a DuckStore in a temporary directory
func createTestStore(t *testing.T) (*DuckStore, func()) {
	dbPath := filepath.Join(t.TempDir(), "catalog.duckdb")

	store, err := NewDuckStore(dbPath, Options{Threads: 1, MemoryLimit: "256MB"})
	if err != nil {
		t.Fatalf("Failed to create DuckStore: %v", err)
	}

	cleanup := func() {
		store.Close()
	}

	return store, cleanup
}

func depthLog(uid string) models.LogObject {
	return models.LogObject{
		WellUID:     "W-1",
		WellboreUID: "B-1",
		UID:         uid,
		Name:        "Log " + uid,
		IndexType:   "depth",
		Direction:   "increasing",
		IndexCurve:  "DEPTH",
		StartIndex:  "100",
		EndIndex:    "200",
		IndexUnit:   "m",
	}
}

func testCurves() []models.LogCurveInfo {
	return []models.LogCurveInfo{
		{UID: "DEPTH", Mnemonic: "DEPTH", Unit: "m", MinIndex: "100", MaxIndex: "200"},
		{UID: "GR", Mnemonic: "GR", Unit: "gAPI", MinIndex: "110", MaxIndex: "190", TypeLogData: "double"},
		{UID: "ROP", Mnemonic: "ROP", Unit: "m/h", MinIndex: "100", MaxIndex: "150", NullValue: "-999.25"},
	}
}

func TestNewDuckStore(t *testing.T) {
	t.Run("creates database file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "catalog.duckdb")
		store, err := NewDuckStore(dbPath, Options{})
		require.NoError(t, err)
		defer store.Close()

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("Expected database file to be created")
		}
	})

	t.Run("opens in memory", func(t *testing.T) {
		store, err := NewDuckStore("", Options{})
		require.NoError(t, err)
		defer store.Close()
		assert.NotNil(t, store.db)
	})
}

func TestDuckStore_PutAndGet(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()
	ctx := context.Background()

	lg := depthLog("L-1")
	require.NoError(t, store.PutLog(ctx, lg, testCurves()))

	got, err := store.GetLog(ctx, lg.Ref())
	require.NoError(t, err)
	assert.Equal(t, lg, *got)

	curves, err := store.GetCurves(ctx, lg.Ref())
	require.NoError(t, err)
	assert.Equal(t, testCurves(), curves)
}

func TestDuckStore_PutReplaces(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()
	ctx := context.Background()

	lg := depthLog("L-1")
	require.NoError(t, store.PutLog(ctx, lg, testCurves()))

	lg.Name = "renamed"
	replacement := []models.LogCurveInfo{{Mnemonic: "DEPTH", Unit: "m", MinIndex: "0", MaxIndex: "10"}}
	require.NoError(t, store.PutLog(ctx, lg, replacement))

	got, err := store.GetLog(ctx, lg.Ref())
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	curves, err := store.GetCurves(ctx, lg.Ref())
	require.NoError(t, err)
	assert.Equal(t, replacement, curves)
}

func TestDuckStore_EmptyCurveList(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()
	ctx := context.Background()

	lg := depthLog("EMPTY")
	lg.StartIndex, lg.EndIndex = "", ""
	require.NoError(t, store.PutLog(ctx, lg, nil))

	curves, err := store.GetCurves(ctx, lg.Ref())
	require.NoError(t, err)
	assert.NotNil(t, curves)
	assert.Empty(t, curves)
}

func TestDuckStore_NotFound(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()
	ctx := context.Background()

	ref := models.LogRef{WellUID: "W-1", WellboreUID: "B-1", LogUID: "missing"}

	_, err := store.GetLog(ctx, ref)
	assert.True(t, errors.Is(err, ErrLogNotFound))

	_, err = store.GetCurves(ctx, ref)
	assert.True(t, errors.Is(err, ErrLogNotFound))

	err = store.UpdateCurves(ctx, ref, testCurves())
	assert.True(t, errors.Is(err, ErrLogNotFound))

	err = store.DeleteLog(ctx, ref)
	assert.True(t, errors.Is(err, ErrLogNotFound))
}

func TestDuckStore_PutValidates(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()
	ctx := context.Background()

	lg := depthLog("")
	assert.Error(t, store.PutLog(ctx, lg, nil))

	lg = depthLog("L-1")
	lg.IndexType = "bogus"
	assert.Error(t, store.PutLog(ctx, lg, nil))
}

func TestDuckStore_UpdateCurves(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()
	ctx := context.Background()

	lg := depthLog("L-1")
	require.NoError(t, store.PutLog(ctx, lg, testCurves()))

	updated := testCurves()
	updated[1].Unit = "API"
	updated = updated[:2]
	require.NoError(t, store.UpdateCurves(ctx, lg.Ref(), updated))

	curves, err := store.GetCurves(ctx, lg.Ref())
	require.NoError(t, err)
	require.Len(t, curves, 2)
	assert.Equal(t, "API", curves[1].Unit)

	got, err := store.GetLog(ctx, lg.Ref())
	require.NoError(t, err)
	assert.Equal(t, lg, *got)
}

func TestDuckStore_FailedWriteKeepsPreviousCurves(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()
	ctx := context.Background()

	lg := depthLog("L-1")
	require.NoError(t, store.PutLog(ctx, lg, testCurves()))

	broken := []models.LogCurveInfo{
		{Mnemonic: "DEPTH", Unit: "m", MinIndex: "0", MaxIndex: "10"},
		{Mnemonic: "", Unit: "gAPI"},
	}

	t.Run("PutLog", func(t *testing.T) {
		renamed := lg
		renamed.Name = "renamed"
		assert.Error(t, store.PutLog(ctx, renamed, broken))

		got, err := store.GetLog(ctx, lg.Ref())
		require.NoError(t, err)
		assert.Equal(t, lg.Name, got.Name)

		curves, err := store.GetCurves(ctx, lg.Ref())
		require.NoError(t, err)
		assert.Equal(t, testCurves(), curves)
	})

	t.Run("UpdateCurves", func(t *testing.T) {
		assert.Error(t, store.UpdateCurves(ctx, lg.Ref(), broken))

		curves, err := store.GetCurves(ctx, lg.Ref())
		require.NoError(t, err)
		assert.Equal(t, testCurves(), curves)
	})
}

func TestDuckStore_ReadersNeverSeeEmptyCurves(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()
	ctx := context.Background()

	lg := depthLog("L-1")
	require.NoError(t, store.PutLog(ctx, lg, testCurves()))

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for i := 0; i < 20; i++ {
			if err := store.PutLog(ctx, lg, testCurves()); err != nil {
				t.Errorf("PutLog: %v", err)
				return
			}
			if err := store.UpdateCurves(ctx, lg.Ref(), testCurves()); err != nil {
				t.Errorf("UpdateCurves: %v", err)
				return
			}
		}
	}()

	for reading := true; reading; {
		select {
		case <-done:
			reading = false
		default:
		}
		curves, err := store.GetCurves(ctx, lg.Ref())
		require.NoError(t, err)
		require.Len(t, curves, len(testCurves()))
	}
	wg.Wait()
}

func TestDuckStore_ListAndDelete(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()
	ctx := context.Background()

	for _, uid := range []string{"L-2", "L-1", "L-3"} {
		require.NoError(t, store.PutLog(ctx, depthLog(uid), testCurves()))
	}
	other := depthLog("X-1")
	other.WellboreUID = "B-2"
	require.NoError(t, store.PutLog(ctx, other, nil))

	logs, err := store.ListLogs(ctx, "W-1", "B-1")
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "L-1", logs[0].UID)
	assert.Equal(t, "L-3", logs[2].UID)

	require.NoError(t, store.DeleteLog(ctx, depthLog("L-2").Ref()))
	logs, err = store.ListLogs(ctx, "W-1", "B-1")
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	_, err = store.GetCurves(ctx, depthLog("L-2").Ref())
	assert.True(t, errors.Is(err, ErrLogNotFound))
}

func TestDuckStore_Persists(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.duckdb")
	ctx := context.Background()

	store, err := NewDuckStore(dbPath, Options{})
	require.NoError(t, err)
	require.NoError(t, store.PutLog(ctx, depthLog("L-1"), testCurves()))
	require.NoError(t, store.Close())

	reopened, err := NewDuckStore(dbPath, Options{})
	require.NoError(t, err)
	defer reopened.Close()

	curves, err := reopened.GetCurves(ctx, depthLog("L-1").Ref())
	require.NoError(t, err)
	assert.Len(t, curves, 3)
}
