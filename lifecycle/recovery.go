// Package lifecycle manages backend-hosted resources that outlive the
// process: hosted assistant ids are appended to a plain-text recovery file
// the moment they are created, and a later process start reaps every
// recorded id best-effort before serving traffic. An id that was never
// flushed before a crash leaks until the next start.
package lifecycle

import (
	"bufio"
	"context"
	"os"
	"strings"
	"sync"

	"github.com/hupe1980/agentrelay/logging"
)

// RecoveryFile records hosted-resource ids, one per line, append-only during
// the process lifetime. Appends from concurrent agents serialize on an
// internal mutex; entries are opaque lines so no content-level merging is
// needed.
type RecoveryFile struct {
	path   string
	logger logging.Logger
	mu     sync.Mutex
}

// NewRecoveryFile binds a recovery file at path.
func NewRecoveryFile(path string, logger logging.Logger) *RecoveryFile {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &RecoveryFile{path: path, logger: logger}
}

// Path returns the file location.
func (r *RecoveryFile) Path() string { return r.path }

// Record appends an id and flushes it to disk immediately.
func (r *RecoveryFile) Record(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(id + "\n"); err != nil {
		return err
	}
	return f.Sync()
}

// Reap consumes every recorded id, invoking deleteFn for each, and removes
// the file regardless of individual deletion outcomes. Cleanup is
// best-effort and never blocks startup: a missing file is a no-op and
// deletion failures are logged, not returned.
func (r *RecoveryFile) Reap(ctx context.Context, deleteFn func(ctx context.Context, id string) error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Open(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn("lifecycle.reap.open_failed", "path", r.path, "error", err.Error())
		}
		return
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		if err := deleteFn(ctx, id); err != nil {
			r.logger.Warn("lifecycle.reap.delete_failed", "id", id, "error", err.Error())
			continue
		}
		r.logger.Info("lifecycle.reap.deleted", "id", id)
	}
	if err := scanner.Err(); err != nil {
		r.logger.Warn("lifecycle.reap.scan_failed", "path", r.path, "error", err.Error())
	}
	_ = f.Close()

	if err := os.Remove(r.path); err != nil {
		r.logger.Warn("lifecycle.reap.remove_failed", "path", r.path, "error", err.Error())
	}
}
