package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// FileRecorder appends records as JSONL: one JSON object per line.
// Thread-safe; marshal happens outside the lock, only the file write is
// serialized.
type FileRecorder struct {
	mu     sync.Mutex
	file   *os.File
	logger *slog.Logger
}

// NewFileRecorder opens (or creates) the audit log in append-only mode
// with owner-only permissions.
func NewFileRecorder(path string, logger *slog.Logger) (*FileRecorder, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening audit log %s: %w", path, err)
	}
	return &FileRecorder{file: f, logger: logger}, nil
}

// Record serializes the record and appends it as one line.
func (r *FileRecorder) Record(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling audit record: %w", err)
	}
	data = append(data, '\n')

	r.mu.Lock()
	_, writeErr := r.file.Write(data)
	r.mu.Unlock()

	if writeErr != nil {
		return fmt.Errorf("writing audit record: %w", writeErr)
	}

	r.logger.InfoContext(ctx, "audit record written",
		slog.String("tool", rec.Tool),
		slog.String("outcome", rec.Outcome),
		slog.String("id", rec.ID),
	)
	return nil
}

// Close closes the underlying file.
func (r *FileRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}
