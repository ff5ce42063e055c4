package callout

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/fionafan/callout/internal/config"
	calloutErrors "github.com/fionafan/callout/internal/errors"
)

// runLock keeps two daily runs from interleaving their report and
// archive writes. Scheduled runs and manual runs share the same lock
// file.
type runLock struct {
	fileLock   *flock.Flock
	path       string
	acquiredAt time.Time
}

func acquireRunLock(ctx context.Context, cfg config.LockConfig) (*runLock, error) {
	retry, err := config.DurationOrDefault(cfg.Retry, config.DefaultLockRetry)
	if err != nil {
		return nil, fmt.Errorf("parse lock retry interval: %w", err)
	}
	maxRetry := cfg.MaxRetry
	if maxRetry <= 0 {
		maxRetry = config.DefaultLockMaxRetry
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	fl := flock.New(cfg.Path)
	for i := 0; i < maxRetry; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock acquisition cancelled: %w", ctx.Err())
		default:
		}

		locked, err := fl.TryLock()
		if err != nil {
			return nil, fmt.Errorf("failed to attempt lock: %w", err)
		}
		if locked {
			slog.Info("Run lock acquired", "path", cfg.Path)
			return &runLock{fileLock: fl, path: cfg.Path, acquiredAt: time.Now()}, nil
		}

		if i < maxRetry-1 {
			time.Sleep(retry)
		}
	}

	return nil, fmt.Errorf("another callout run holds %s: %w", cfg.Path, calloutErrors.ErrConflict)
}

func (l *runLock) release() {
	if l == nil || l.fileLock == nil {
		return
	}

	held := time.Since(l.acquiredAt)
	if err := l.fileLock.Unlock(); err != nil {
		slog.Error("Failed to release run lock", "path", l.path, "error", err)
	} else {
		slog.Debug("Run lock released", "path", l.path, "held_ms", held.Milliseconds())
	}
	l.fileLock = nil
}
