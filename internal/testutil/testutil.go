// Package testutil provides shared test helpers for setting up workspaces.
package testutil

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/starford/assistant/internal/notes"
	"github.com/starford/assistant/internal/workspace"
)

// Logger returns a logger that drops every record.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestWorkspace opens a workspace over a fresh temporary data directory.
func TestWorkspace(t *testing.T, noteOpts ...notes.Option) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.Open(workspace.Files{Dir: t.TempDir()}, Logger(), noteOpts...)
	if err != nil {
		t.Fatal(err)
	}
	return ws
}

// Eventually polls fn every tick until it returns true or timeout elapses.
func Eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}
