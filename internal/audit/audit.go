// Package audit records every command-construction decision: allowed
// executions with their exit codes, and rejections with the kind that
// refused them. Backends: SQLite (default), PostgreSQL, or an
// append-only JSONL file.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jkaninda/toolgate/internal/config"
)

// Record is one invocation decision.
type Record struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Tool      string    `json:"tool" gorm:"size:64;index"`
	Program   string    `json:"program" gorm:"size:128"`
	Outcome   string    `json:"outcome" gorm:"size:32;index"` // "ok" or a rejection kind.
	ExitCode  int       `json:"exit_code"`
	Detail    string    `json:"detail,omitempty" gorm:"size:1024"`
	Duration  int64     `json:"duration_ms"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// NewRecord fills in ID and timestamp for a decision.
func NewRecord(tool, program, outcome string, exitCode int, detail string, duration time.Duration) Record {
	return Record{
		ID:        uuid.NewString(),
		Tool:      tool,
		Program:   program,
		Outcome:   outcome,
		ExitCode:  exitCode,
		Detail:    detail,
		Duration:  duration.Milliseconds(),
		CreatedAt: time.Now().UTC(),
	}
}

// Recorder persists records. Implementations must be safe for
// concurrent use.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
	Close() error
}

// NopRecorder discards everything. Used when audit is disabled.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Record) error { return nil }
func (NopRecorder) Close() error                         { return nil }

// New builds the recorder selected by cfg. A nil cfg disables auditing.
func New(cfg *config.AuditConfig, logger *slog.Logger) (Recorder, error) {
	if cfg == nil {
		return NopRecorder{}, nil
	}
	switch driver := cfg.AuditDriver(); driver {
	case "sqlite":
		return newStore(sqliteDialector(cfg.SQLitePath()), logger)
	case "postgres":
		return newStore(postgresDialector(cfg.DSN), logger)
	case "file":
		return NewFileRecorder(cfg.Path, logger)
	default:
		return nil, fmt.Errorf("audit: unknown driver %q", driver)
	}
}
