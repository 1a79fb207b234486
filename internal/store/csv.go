package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/youssefawwad88/RealEstate/internal/deal"
	"github.com/youssefawwad88/RealEstate/pkg/constants"
	"go.uber.org/zap"
)

const backupTimeLayout = "20060102_150405.000000"

// CSVOptions tune a CSVStore.
type CSVOptions struct {
	LockTimeout time.Duration
	// BackupDir defaults to a "backups" directory beside the file.
	BackupDir      string
	KeepBackupDays int
}

// CSVStore keeps records in one CSV file. Writes hold a lock file, back up
// the previous file and replace it atomically.
type CSVStore struct {
	path   string
	opts   CSVOptions
	logger *zap.Logger
}

// NewCSVStore creates a store for path. The file is created on first Append.
func NewCSVStore(path string, opts CSVOptions, logger *zap.Logger) *CSVStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = constants.DefaultLockTimeoutSeconds * time.Second
	}
	if opts.BackupDir == "" {
		opts.BackupDir = filepath.Join(filepath.Dir(path), "backups")
	}
	return &CSVStore{path: path, opts: opts, logger: logger}
}

// Path returns the CSV file path.
func (s *CSVStore) Path() string {
	return s.path
}

// Load reads every record. A missing file yields no records. Blank cells
// are left out of the record.
func (s *CSVStore) Load(ctx context.Context) ([]deal.Record, error) {
	_, records, err := s.read()
	return records, err
}

// Append adds records after the existing ones. New columns are appended to
// the header; earlier rows get blank cells for them.
func (s *CSVStore) Append(ctx context.Context, records []deal.Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	lock := NewFileLock(s.path, s.opts.LockTimeout)
	if err := lock.Acquire(ctx); err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			s.logger.Warn("failed to release lock", zap.String("op", "store.CSVStore.Append"), zap.Error(err))
		}
	}()

	header, existing, err := s.read()
	if err != nil {
		return err
	}

	if len(existing) > 0 {
		if err := s.backup(); err != nil {
			return err
		}
		s.pruneBackups()
	}

	all := append(existing, records...)
	header = deal.Columns(header, records)
	if err := s.write(header, all); err != nil {
		return err
	}

	s.logger.Info("records appended",
		zap.String("op", "store.CSVStore.Append"),
		zap.String("path", s.path),
		zap.Int("appended", len(records)),
		zap.Int("total", len(all)))
	return nil
}

// Close is a no-op; the file is not held open between calls.
func (s *CSVStore) Close() error {
	return nil
}

func (s *CSVStore) read() ([]string, []deal.Record, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer f.Close()

	header, records, err := deal.ReadCSV(f)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return header, records, nil
}

func (s *CSVStore) write(header []string, records []deal.Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := deal.WriteCSV(tmp, header, records); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}

func (s *CSVStore) backupPattern() (prefix, ext string) {
	base := filepath.Base(s.path)
	ext = filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_", ext
}

func (s *CSVStore) backup() error {
	if err := os.MkdirAll(s.opts.BackupDir, 0o755); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("reading %s for backup: %w", s.path, err)
	}
	prefix, ext := s.backupPattern()
	target := filepath.Join(s.opts.BackupDir, prefix+time.Now().Format(backupTimeLayout)+ext)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("writing backup %s: %w", target, err)
	}
	return nil
}

// Backups lists backup files of this store, oldest first.
func (s *CSVStore) Backups() ([]string, error) {
	prefix, ext := s.backupPattern()
	matches, err := filepath.Glob(filepath.Join(s.opts.BackupDir, prefix+"*"+ext))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func (s *CSVStore) pruneBackups() {
	if s.opts.KeepBackupDays <= 0 {
		return
	}
	backups, err := s.Backups()
	if err != nil {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -s.opts.KeepBackupDays)
	for _, path := range backups {
		info, err := os.Stat(path)
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to prune backup",
				zap.String("op", "store.CSVStore.pruneBackups"),
				zap.String("path", path),
				zap.Error(err))
		}
	}
}
