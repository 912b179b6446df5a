package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"ft-go/internal/ft"
)

// Watch watches dir for dropped files and files each one once its size
// has settled. Planning runs under the confirmer the app was built
// with; the watch command passes the auto-policy, so anything needing a
// question is left in place and recorded for a person to deal with.
// Returns nil when ctx is cancelled.
func (a *FTApp) Watch(ctx context.Context, dir string, settle time.Duration) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	a.logger.Info("watching", "dir", dir, "settle", settle)

	q := newSettleQueue(settle)

	// Pick up files already sitting in the folder.
	if names, err := a.fsmgr.ListFiles(dir); err == nil {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if !watchable(name) {
				continue
			}
			if info, err := a.fsmgr.Stat(path); err == nil {
				q.Touch(path, info.Size(), time.Now())
			}
		}
	}

	interval := settle / 2
	if interval < 100*time.Millisecond {
		interval = 100 * time.Millisecond
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !watchable(filepath.Base(ev.Name)) {
				continue
			}
			info, err := a.fsmgr.Stat(ev.Name)
			if err != nil || info.IsDir() {
				continue
			}
			q.Touch(ev.Name, info.Size(), time.Now())

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watch error", "error", err)

		case now := <-tick.C:
			for _, path := range q.Due(now) {
				info, err := a.fsmgr.Stat(path)
				if err != nil {
					q.Remove(path)
					continue
				}
				if info.Size() != q.Size(path) {
					// Still growing, start a fresh interval.
					q.Remove(path)
					q.Touch(path, info.Size(), now)
					continue
				}
				q.Remove(path)
				if a.processDropped(ctx, path) {
					q.Touch(path, info.Size(), now)
				}
			}
		}
	}
}

// processDropped plans and commits one settled file, removing it from
// the watch folder only when everything filed cleanly. Returns true
// when the file should be retried on a later pass.
func (a *FTApp) processDropped(ctx context.Context, path string) bool {
	name := filepath.Base(path)

	var plan *ft.Plan
	var err error
	if strings.EqualFold(filepath.Ext(path), ".eml") {
		plan, err = a.PlanEmailFile(ctx, path, ft.EmailOptions{FileOptions: ft.FileOptions{MinRuleScore: 1}})
	} else {
		plan, err = a.service.PlanFiles(ctx, []string{path}, ft.FileOptions{MinRuleScore: 1})
	}
	if err != nil {
		if errors.Is(err, ft.ErrProjectBusy) {
			a.logger.Info("project busy, retrying later", "file", name)
			return true
		}
		if rerr := a.service.RecordNeedsAttention("", name, path, err); rerr != nil {
			a.logger.Error("recording needs-attention", "file", name, "error", rerr)
		}
		return false
	}
	if plan == nil {
		// Already-filed email; the auto-policy declines refiling.
		a.logger.Info("already filed, leaving in place", "file", name)
		return false
	}

	result, err := a.service.Commit(plan)
	if err != nil {
		a.logger.Error("commit failed", "file", name, "error", err)
		return false
	}

	if result.Filed > 0 && result.Skipped == 0 && len(result.Failures) == 0 && len(plan.Unplanned) == 0 {
		if err := a.fsmgr.Remove(path); err != nil {
			a.logger.Warn("removing filed drop", "file", name, "error", err)
		}
		return false
	}

	a.logger.Info("left in place", "file", name,
		"filed", result.Filed, "skipped", result.Skipped, "failed", len(result.Failures))
	return false
}

// watchable reports whether a dropped filename is worth filing. Hidden
// files and editor or download leftovers are ignored.
func watchable(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
		return false
	}
	lower := strings.ToLower(name)
	for _, suffix := range []string{".tmp", ".part", ".crdownload", "~"} {
		if strings.HasSuffix(lower, suffix) {
			return false
		}
	}
	return true
}

// pendingFile is one file waiting for its size to settle.
type pendingFile struct {
	deadline time.Time
	size     int64
}

// settleQueue tracks files seen in the watch folder until they have
// stopped growing for the settle interval.
type settleQueue struct {
	settle  time.Duration
	pending map[string]pendingFile
}

func newSettleQueue(settle time.Duration) *settleQueue {
	return &settleQueue{settle: settle, pending: make(map[string]pendingFile)}
}

// Touch records activity on a path. A size change restarts the settle
// interval; seeing the same size again leaves the earlier deadline in
// place so a quiet file comes due.
func (q *settleQueue) Touch(path string, size int64, now time.Time) {
	if p, ok := q.pending[path]; ok && p.size == size {
		return
	}
	q.pending[path] = pendingFile{deadline: now.Add(q.settle), size: size}
}

// Due returns the paths whose settle interval has passed, sorted.
// Entries stay queued until Remove.
func (q *settleQueue) Due(now time.Time) []string {
	var due []string
	for path, p := range q.pending {
		if !p.deadline.After(now) {
			due = append(due, path)
		}
	}
	sort.Strings(due)
	return due
}

// Size returns the last size recorded for a queued path.
func (q *settleQueue) Size(path string) int64 {
	return q.pending[path].size
}

// Remove drops a path from the queue.
func (q *settleQueue) Remove(path string) {
	delete(q.pending, path)
}

// Len returns the number of files waiting to settle.
func (q *settleQueue) Len() int {
	return len(q.pending)
}
