// Package audit persists one durable log entry per finished task. This
// is the only persistence the execution core owns: one JSON file per
// task id under a configured directory, written exactly once when the
// task reaches a terminal state, on every terminal path including
// rejection.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/devrunnerd/internal/logging"
	"github.com/fyrsmithlabs/devrunnerd/internal/task"
)

// Writer serializes finalized task views to per-task log files.
type Writer struct {
	dir string
	log *logging.Logger
}

// NewWriter creates a writer rooted at dir. The directory is created
// lazily on first write.
func NewWriter(dir string, log *logging.Logger) *Writer {
	if log == nil {
		log = logging.NewNop()
	}
	return &Writer{dir: dir, log: log}
}

// Write persists the bounded view of a task. The view is already
// truncated per task.View; the file holds exactly what API callers see.
func (w *Writer) Write(ctx context.Context, v task.View) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task %s: %w", v.ID, err)
	}

	path := EntryPath(w.dir, v.ID)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write audit entry %s: %w", path, err)
	}

	w.log.Debug(ctx, "audit entry written",
		zap.String("path", path),
		zap.String("status", string(v.Status)))
	return nil
}

// Read loads a previously written entry. Used by operators inspecting
// past runs and by round-trip tests.
func Read(dir, id string) (task.View, error) {
	var v task.View
	data, err := os.ReadFile(EntryPath(dir, id))
	if err != nil {
		return v, fmt.Errorf("read audit entry: %w", err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode audit entry %s: %w", id, err)
	}
	return v, nil
}

// EntryPath returns the log file path for a task id.
func EntryPath(dir, id string) string {
	return filepath.Join(dir, id+".log")
}
