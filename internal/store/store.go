// Package store persists evaluated deal records. Both stores keep records in
// the order they were appended.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/youssefawwad88/RealEstate/internal/deal"
	"github.com/youssefawwad88/RealEstate/pkg/constants"
	"go.uber.org/zap"
)

// Store appends and loads deal records.
type Store interface {
	Append(ctx context.Context, records []deal.Record) error
	Load(ctx context.Context) ([]deal.Record, error)
	Close() error
}

// Options configure Open.
type Options struct {
	Driver         string
	Path           string
	LockTimeout    time.Duration
	BackupDir      string
	KeepBackupDays int
}

// Open returns the store selected by opts.Driver.
func Open(opts Options, logger *zap.Logger) (Store, error) {
	switch opts.Driver {
	case "", constants.StoreDriverCSV:
		return NewCSVStore(opts.Path, CSVOptions{
			LockTimeout:    opts.LockTimeout,
			BackupDir:      opts.BackupDir,
			KeepBackupDays: opts.KeepBackupDays,
		}, logger), nil
	case constants.StoreDriverSQLite:
		return OpenSQLite(opts.Path, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
