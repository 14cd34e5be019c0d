package cachepath

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// lockWaitLogInterval is how often a blocked waiter announces itself
// while it sits behind another launcher's extraction (spec.md §5
// "concurrent launchers of the same app serialize around extraction").
const lockWaitLogInterval = 3 * time.Second

type appLock struct {
	f *flock.Flock
}

// acquireLock serializes concurrent extractions of the same application
// cache directory across processes. Each waiter carries a short-lived
// uuid token purely for log correlation, so an operator staring at two
// overlapping launcher invocations can tell which one is holding the
// lock and which is waiting.
func acquireLock(appsDir, appID string, log logr.Logger) (*appLock, error) {
	token := uuid.NewString()[:8]
	path := filepath.Join(appsDir, "."+sanitizeID(appID)+".lock")
	f := flock.New(path)

	locked, err := f.TryLock()
	if err != nil {
		return nil, fmt.Errorf("cachepath: locking %s: %w", path, err)
	}
	if locked {
		return &appLock{f: f}, nil
	}

	log.Info("waiting for another launcher to finish extracting this application", "waiter", token, "app", appID)
	ticker := time.NewTicker(lockWaitLogInterval)
	defer ticker.Stop()
	done := make(chan error, 1)
	go func() { done <- f.Lock() }()
	for {
		select {
		case err := <-done:
			if err != nil {
				return nil, fmt.Errorf("cachepath: locking %s: %w", path, err)
			}
			return &appLock{f: f}, nil
		case <-ticker.C:
			log.Info("still waiting on extraction lock", "waiter", token, "app", appID)
		}
	}
}

func (l *appLock) release() {
	_ = l.f.Unlock()
}
