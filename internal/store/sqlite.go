package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/youssefawwad88/RealEstate/internal/deal"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const createDealsTable = `
CREATE TABLE IF NOT EXISTS deals (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	site_name  TEXT,
	created_at TEXT NOT NULL,
	payload    TEXT NOT NULL
)`

// SQLiteStore keeps each record as a JSON payload row.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database %s: %w", path, err)
	}
	if _, err := db.Exec(createDealsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating deals table: %w", err)
	}

	logger.Debug("database ready", zap.String("op", "store.OpenSQLite"), zap.String("path", path))
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Append inserts records in one transaction.
func (s *SQLiteStore) Append(ctx context.Context, records []deal.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO deals (id, site_name, created_at, payload) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for i, record := range records {
		payload, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
		name, _ := record.String(deal.FieldSiteName)
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), name, now, string(payload)); err != nil {
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing records: %w", err)
	}

	s.logger.Info("records appended",
		zap.String("op", "store.SQLiteStore.Append"),
		zap.Int("appended", len(records)))
	return nil
}

// Load returns every record in insertion order. JSON numbers load as float64.
func (s *SQLiteStore) Load(ctx context.Context) ([]deal.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM deals ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying deals: %w", err)
	}
	defer rows.Close()

	var records []deal.Record
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning deal: %w", err)
		}
		var record deal.Record
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("decoding deal: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deals: %w", err)
	}
	return records, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
