package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsChangedOrgFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "todo.org")
	require.NoError(t, os.WriteFile(file, []byte("* TODO a\n"), 0o600))

	changes := make(chan []string, 4)
	w, err := New([]string{file}, func(changed []string) { changes <- changed })
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Run(ctx, nil)

	require.NoError(t, os.WriteFile(file, []byte("* TODO b\n"), 0o600))

	select {
	case got := <-changes:
		require.NotEmpty(t, got)
		assert.Equal(t, "todo.org", filepath.Base(got[0]))
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestRelevant(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := filepath.Join(dir, "agenda.yml")
	w, err := New([]string{cfg}, func([]string) {})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	assert.True(t, w.relevant(cfg))
	assert.True(t, w.relevant(filepath.Join(dir, "new.org")))
	assert.False(t, w.relevant(filepath.Join(dir, "notes.txt")))
	assert.False(t, w.relevant(filepath.Join(dir, ".todo.org.swp")))
}

func TestNewFailsOnMissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := New([]string{filepath.Join(t.TempDir(), "missing", "a.org")}, func([]string) {})
	require.Error(t, err)
}
