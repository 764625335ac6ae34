// Package sqlite provides SQLite-backed persistence for control records.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	sqlitemigrate "github.com/louisbranch/sceneforge/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/sceneforge/internal/services/control/storage"
	"github.com/louisbranch/sceneforge/internal/services/control/storage/sqlite/migrations"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store provides SQLite-backed persistence for control records.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite store at the provided path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RecordCommand implements storage.Store.
func (s *Store) RecordCommand(ctx context.Context, record storage.CommandRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("record id is required")
	}
	if strings.TrimSpace(record.Command) == "" {
		return fmt.Errorf("command is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	success := 0
	if record.Success {
		success = 1
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO control_commands (
	id, client_id, command, success, error_code, duration_ms, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?)
`,
		record.ID,
		record.ClientID,
		record.Command,
		success,
		record.ErrorCode,
		record.Duration.Milliseconds(),
		toMillis(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record command: %w", err)
	}
	return nil
}

// RecordRender implements storage.Store.
func (s *Store) RecordRender(ctx context.Context, record storage.RenderRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("record id is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO control_renders (
	id, client_id, output_path, width, height, engine, seconds, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		record.ID,
		record.ClientID,
		record.OutputPath,
		record.Width,
		record.Height,
		record.Engine,
		record.Seconds,
		toMillis(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record render: %w", err)
	}
	return nil
}

// RecentCommands implements storage.Store.
func (s *Store) RecentCommands(ctx context.Context, limit int) ([]storage.CommandRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, client_id, command, success, error_code, duration_ms, created_at
FROM control_commands
ORDER BY created_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list commands: %w", err)
	}
	defer rows.Close()

	var records []storage.CommandRecord
	for rows.Next() {
		var (
			rec        storage.CommandRecord
			success    int
			durationMS int64
			createdAt  int64
		)
		if err := rows.Scan(&rec.ID, &rec.ClientID, &rec.Command, &success, &rec.ErrorCode, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		rec.Success = success != 0
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.CreatedAt = fromMillis(createdAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commands: %w", err)
	}
	return records, nil
}

// Stats implements storage.Store.
func (s *Store) Stats(ctx context.Context) (storage.ErrorStats, error) {
	if err := ctx.Err(); err != nil {
		return storage.ErrorStats{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ErrorStats{}, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT error_code, COUNT(*), MAX(created_at)
FROM control_commands
WHERE success = 0
GROUP BY error_code
ORDER BY COUNT(*) DESC, error_code ASC
`)
	if err != nil {
		return storage.ErrorStats{}, fmt.Errorf("aggregate errors: %w", err)
	}
	defer rows.Close()

	var stats storage.ErrorStats
	for rows.Next() {
		var (
			stat     storage.ErrorStat
			lastSeen int64
		)
		if err := rows.Scan(&stat.Code, &stat.Count, &lastSeen); err != nil {
			return storage.ErrorStats{}, fmt.Errorf("scan error stat: %w", err)
		}
		stat.Category = storage.CategoryFor(stat.Code)
		stat.LastSeen = fromMillis(lastSeen)
		stats.TotalErrors += stat.Count
		stats.ByCode = append(stats.ByCode, stat)
	}
	if err := rows.Err(); err != nil {
		return storage.ErrorStats{}, fmt.Errorf("iterate error stats: %w", err)
	}
	return stats, nil
}
