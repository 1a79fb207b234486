package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youssefawwad88/RealEstate/internal/deal"
)

func sampleRecords() []deal.Record {
	return []deal.Record{
		{"site_name": "Abdoun Plot 7", "land_area_sqm": 1500.0, "processing_status": "success"},
		{"site_name": "Zarqa Lot 2", "land_area_sqm": 800, "processing_status": "error: land_area_sqm: must be positive"},
	}
}

func TestFileLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deals.csv")
	ctx := context.Background()

	first := NewFileLock(path, 200*time.Millisecond)
	require.NoError(t, first.Acquire(ctx))
	assert.True(t, first.Held())
	assert.FileExists(t, path+".lock")

	second := NewFileLock(path, 200*time.Millisecond)
	err := second.Acquire(ctx)
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.False(t, second.Held())

	require.NoError(t, first.Release())
	assert.NoFileExists(t, path+".lock")
	require.NoError(t, second.Acquire(ctx))
	require.NoError(t, second.Release())
	require.NoError(t, second.Release(), "release is idempotent")
}

func TestFileLockContextCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deals.csv")
	held := NewFileLock(path, time.Second)
	require.NoError(t, held.Acquire(context.Background()))
	defer held.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewFileLock(path, 5*time.Second).Acquire(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCSVStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "deals.csv")
	s := NewCSVStore(path, CSVOptions{}, nil)
	ctx := context.Background()

	records, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, s.Append(ctx, sampleRecords()))

	records, err = s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Abdoun Plot 7", records[0]["site_name"])
	assert.Equal(t, "1500", records[0]["land_area_sqm"])
	assert.Equal(t, "800", records[1]["land_area_sqm"])
	assert.NoFileExists(t, path+".lock")

	area, err := records[0].Float("land_area_sqm")
	require.NoError(t, err)
	assert.Equal(t, 1500.0, *area)
}

func TestCSVStoreAppendMergesColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deals.csv")
	s := NewCSVStore(path, CSVOptions{}, nil)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, sampleRecords()[:1]))
	require.NoError(t, s.Append(ctx, []deal.Record{{"site_name": "Khalda", "zoning": "R2", "notes": "corner plot"}}))

	records, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Abdoun Plot 7", records[0]["site_name"])
	assert.NotContains(t, records[0], "zoning")
	assert.Equal(t, "R2", records[1]["zoning"])
	assert.Equal(t, "corner plot", records[1]["notes"])
	assert.NotContains(t, records[1], "land_area_sqm")

	header, _, err := s.read()
	require.NoError(t, err)
	assert.Equal(t, []string{"site_name", "land_area_sqm", "processing_status", "zoning", "notes"}, header)
}

func TestCSVStoreBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data", "deals.csv")
	backupDir := filepath.Join(dir, "backups")
	s := NewCSVStore(path, CSVOptions{BackupDir: backupDir, KeepBackupDays: 7}, nil)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, sampleRecords()))
	backups, err := s.Backups()
	require.NoError(t, err)
	assert.Empty(t, backups, "first write has nothing to back up")

	stale := filepath.Join(backupDir, "deals_20200101_000000.000000.csv")
	require.NoError(t, os.MkdirAll(backupDir, 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("site_name\nold\n"), 0o644))
	old := time.Now().AddDate(0, 0, -30)
	require.NoError(t, os.Chtimes(stale, old, old))

	require.NoError(t, s.Append(ctx, sampleRecords()[:1]))

	backups, err = s.Backups()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.NotEqual(t, stale, backups[0])

	data, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Zarqa Lot 2")
}

func TestCSVStoreLockTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deals.csv")
	held := NewFileLock(path, time.Second)
	require.NoError(t, held.Acquire(context.Background()))
	defer held.Release()

	s := NewCSVStore(path, CSVOptions{LockTimeout: 150 * time.Millisecond}, nil)
	err := s.Append(context.Background(), sampleRecords())
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.NoFileExists(t, path)
}

func TestCSVStoreConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deals.csv")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := NewCSVStore(path, CSVOptions{LockTimeout: 5 * time.Second}, nil)
			assert.NoError(t, s.Append(ctx, sampleRecords()))
		}()
	}
	wg.Wait()

	records, err := NewCSVStore(path, CSVOptions{}, nil).Load(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 8)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deals.db")
	ctx := context.Background()

	s, err := OpenSQLite(path, nil)
	require.NoError(t, err)

	records, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, s.Append(ctx, sampleRecords()))
	require.NoError(t, s.Append(ctx, []deal.Record{{"site_name": "Khalda"}}))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	records, err = reopened.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Abdoun Plot 7", records[0]["site_name"])
	assert.Equal(t, 1500.0, records[0]["land_area_sqm"])
	assert.Equal(t, 800.0, records[1]["land_area_sqm"])
	assert.Equal(t, "Khalda", records[2]["site_name"])
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	csvStore, err := Open(Options{Path: filepath.Join(dir, "deals.csv")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &CSVStore{}, csvStore)

	sqliteStore, err := Open(Options{Driver: "sqlite", Path: filepath.Join(dir, "deals.db")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, sqliteStore)
	require.NoError(t, sqliteStore.Close())

	_, err = Open(Options{Driver: "postgres"}, nil)
	assert.Error(t, err)
}
