// Package watch reloads managers whose backing store was edited outside the
// process while the server runs.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/assistant/internal/checksum"
	"github.com/starford/assistant/internal/workspace"
)

const debounce = 150 * time.Millisecond

// Callback is called with the domain name after a manager reloaded.
type Callback func(domain string)

// Watch observes the workspace data directory until ctx is cancelled. A store
// whose bytes differ from what its manager last read or wrote is reloaded;
// the manager's own atomic writes match its checksum and are skipped.
//
// Events are debounced per domain, so an editor that writes a file in several
// steps triggers a single reload.
func Watch(ctx context.Context, ws *workspace.Workspace, logger *slog.Logger, cb Callback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := ws.Root()
	if err := w.Add(root); err != nil {
		return err
	}

	domains := make(map[string]workspace.Domain)
	for _, d := range ws.Domains() {
		domains[d.Store.StoreName()] = d
	}

	logger.Info("watcher: started", slog.String("root", root))

	pending := make(map[string]workspace.Domain)
	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			for name, d := range pending {
				if reload(ws, d, logger) && cb != nil {
					cb(d.Name)
				}
				delete(pending, name)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if filepath.Dir(ev.Name) != root {
				continue
			}
			d, ok := domains[filepath.Base(ev.Name)]
			if !ok {
				continue
			}
			pending[d.Store.StoreName()] = d
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reload re-reads the domain's store when its content changed and reports
// whether it did.
func reload(ws *workspace.Workspace, d workspace.Domain, logger *slog.Logger) bool {
	var reloaded bool
	_ = ws.Exclusive(func() error {
		path, err := ws.Path(d.Store.StoreName())
		if err != nil {
			return err
		}
		sum, err := checksum.SumFile(path)
		if err != nil {
			logger.Debug("watcher: store unreadable", slog.String("domain", d.Name), slog.String("error", err.Error()))
			return err
		}
		if sum == d.Store.Checksum() {
			return nil
		}
		if err := d.Store.Reload(); err != nil {
			logger.Warn("watcher: reload failed", slog.String("domain", d.Name), slog.String("error", err.Error()))
			return err
		}
		logger.Info("watcher: reloaded", slog.String("domain", d.Name))
		reloaded = true
		return nil
	})
	return reloaded
}
