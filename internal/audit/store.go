package audit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store persists records through GORM, backed by SQLite (pure Go, no
// CGO, via the glebarez driver) or PostgreSQL.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

func sqliteDialector(path string) gorm.Dialector {
	if dir := filepath.Dir(path); dir != "." {
		_ = os.MkdirAll(dir, 0o700)
	}
	// WAL keeps concurrent readers from blocking the recorder.
	return sqlite.Open(path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
}

func postgresDialector(dsn string) gorm.Dialector {
	return postgres.Open(dsn)
}

func newStore(dialector gorm.Dialector, logger *slog.Logger) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrating audit schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Record inserts one decision.
func (s *Store) Record(ctx context.Context, rec Record) error {
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("writing audit record: %w", err)
	}
	return nil
}

// Recent returns the most recent records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	var recs []Record
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("querying audit records: %w", err)
	}
	return recs, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
