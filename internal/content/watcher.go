package content

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the burst of events an editor's save produces into
// one reload.
const debounceWindow = 200 * time.Millisecond

// Watch reloads the tree whenever the backing document changes on disk, for
// edits made outside the mutation path. It blocks until ctx is cancelled.
//
// The parent directory is watched rather than the file itself because the
// atomic rename in writeFileAtomic replaces the inode the watcher would be
// attached to.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch document dir: %w", err)
	}

	base := filepath.Base(s.path)
	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceWindow, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			if err := s.Reload(); err != nil {
				s.log.Warn("reload content document", "err", err)
				continue
			}
			s.log.Info("content document reloaded", "path", s.path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("content watcher", "err", err)
		}
	}
}
