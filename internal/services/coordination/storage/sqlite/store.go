// Package sqlite provides SQLite-backed persistence for coordination state.
package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dealdeskhq/dealdesk/internal/platform/storage/sqlitemigrate"
	"github.com/dealdeskhq/dealdesk/internal/services/coordination/domain"
	"github.com/dealdeskhq/dealdesk/internal/services/coordination/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// Store provides SQLite-backed persistence for the coordination service.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a coordination SQLite store and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
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

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready() error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func encodeDate(value *time.Time) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: value.UTC().Format(dateLayout), Valid: true}
}

func decodeDate(value sql.NullString) (*time.Time, error) {
	if !value.Valid || strings.TrimSpace(value.String) == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(dateLayout, value.String, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("decode date %q: %w", value.String, err)
	}
	return &parsed, nil
}

var (
	_ domain.TransactionStore   = (*Store)(nil)
	_ domain.TemplateStore      = (*Store)(nil)
	_ domain.TaskStore          = (*Store)(nil)
	_ domain.ApplicationStore   = (*Store)(nil)
	_ domain.ClientStore        = (*Store)(nil)
	_ domain.CommunicationStore = (*Store)(nil)
)
