// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultSettle is how long a drop must stay quiet before it is delivered.
const DefaultSettle = 250 * time.Millisecond

// InboxAdapter implements secondary.Inbox over a local directory.
type InboxAdapter struct {
	dir     string
	pattern string
	settle  time.Duration
	logger  *zap.Logger
}

// NewInboxAdapter creates a new inbox adapter for dir. Only file names
// matching pattern (filepath.Match syntax) are considered drops.
func NewInboxAdapter(dir, pattern string, logger *zap.Logger) (*InboxAdapter, error) {
	if dir == "" {
		return nil, fmt.Errorf("inbox directory is not configured")
	}
	if pattern == "" {
		pattern = "*.json"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid inbox pattern %q: %w", pattern, err)
	}
	return &InboxAdapter{dir: dir, pattern: pattern, settle: DefaultSettle, logger: logger}, nil
}

// Dir returns the watched directory.
func (a *InboxAdapter) Dir() string {
	return a.dir
}

func (a *InboxAdapter) matches(path string) bool {
	ok, _ := filepath.Match(a.pattern, filepath.Base(path))
	return ok
}

// Scan lists the matching regular files in the inbox.
func (a *InboxAdapter) Scan(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read inbox %s: %w", a.dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !a.matches(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(a.dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Watch blocks until ctx is done, delivering each drop once it has settled.
func (a *InboxAdapter) Watch(ctx context.Context, fn func(ctx context.Context, path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(a.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", a.dir, err)
	}
	a.logger.Info("watching inbox", zap.String("dir", a.dir), zap.String("pattern", a.pattern))

	pending := make(map[string]time.Time)
	tick := time.NewTicker(a.settle / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if a.matches(event.Name) {
				pending[event.Name] = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("inbox watcher error", zap.Error(err))

		case now := <-tick.C:
			for _, path := range settled(pending, now, a.settle) {
				delete(pending, path)
				fn(ctx, path)
			}
		}
	}
}

// settled returns the pending paths quiet for at least d, in name order.
func settled(pending map[string]time.Time, now time.Time, d time.Duration) []string {
	var due []string
	for path, last := range pending {
		if now.Sub(last) >= d {
			due = append(due, path)
		}
	}
	sort.Strings(due)
	return due
}
