package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func start(t *testing.T, dir string) <-chan Change {
	t.Helper()
	w, err := New(Config{Dir: dir, DebounceDur: 50 * time.Millisecond}, nil)
	require.NoError(t, err)
	ch, err := w.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	return ch
}

func next(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(3 * time.Second):
		require.FailNow(t, "no change reported")
		return Change{}
	}
}

func TestWatcherCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	ch := start(t, dir)

	path := filepath.Join(dir, "go.toml")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("kind = \"code\"\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	c := next(t, ch)
	require.Equal(t, []string{path}, c.Updated)
	require.Empty(t, c.Removed)
	require.Equal(t, []string{"go"}, c.Names())

	select {
	case extra := <-ch:
		require.FailNow(t, "unexpected change", "%v", extra)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcherReportsRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "md.yaml")
	require.NoError(t, os.WriteFile(path, []byte("extensions: []\n"), 0o644))
	ch := start(t, dir)

	require.NoError(t, os.Remove(path))
	c := next(t, ch)
	require.Equal(t, []string{path}, c.Removed)
	require.Equal(t, []string{"md"}, c.Names())
}

func TestWatcherMissingDir(t *testing.T) {
	w, err := New(DefaultConfig(filepath.Join(t.TempDir(), "absent")), nil)
	require.NoError(t, err)
	_, err = w.Start()
	require.Error(t, err)
	require.NoError(t, w.fsWatcher.Close())
}
