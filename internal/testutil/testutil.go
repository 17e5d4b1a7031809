// Package testutil holds shared helpers for package tests: a thread-safe
// log capture buffer, a temp-dir config file writer, and capacity factor
// source fixtures.
package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mmdione/reV/internal/ctxlog"
	"github.com/mmdione/reV/internal/outputs"
	"github.com/mmdione/reV/internal/sitetable"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// LogContext returns a context carrying a debug-level text logger that
// writes into the returned buffer.
func LogContext() (context.Context, *SafeBuffer) {
	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger), buf
}

// WriteFiles materializes the given relative-path-to-content mapping under
// a fresh temp dir and returns the dir. Subdirectories in the paths are
// created as needed.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}
	return tmpDir
}

// Meta builds a gid-indexed site metadata table for the given gids.
func Meta(t *testing.T, gids []int) *sitetable.Table {
	t.Helper()
	meta, err := sitetable.NewIndexed(sitetable.GidIndex, gids)
	require.NoError(t, err)
	return meta
}

// CFStore builds an in-memory store holding one capacity factor source at
// path, with the given per-site means dataset aligned to gids.
func CFStore(t *testing.T, path string, gids []int, means []float64) *outputs.MemStore {
	t.Helper()
	store := outputs.NewMemStore()
	store.Put(path, Meta(t, gids))
	require.NoError(t, store.PutDataset(path, outputs.MeansDataset, means))
	return store
}
