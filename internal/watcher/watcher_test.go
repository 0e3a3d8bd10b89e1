package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usekona/kona/internal/watcher"
)

func start(t *testing.T, paths ...string) <-chan []string {
	t.Helper()
	w, err := watcher.New(watcher.Config{Paths: paths, Debounce: 50 * time.Millisecond})
	require.NoError(t, err, "failed to create watcher")
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")
	return onChange
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.yaml")
	require.NoError(t, os.WriteFile(path, []byte("commands: []"), 0o644))

	onChange := start(t, path)

	// Rapid writes coalesce into a single notification
	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("# %d\ncommands: []", i)), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case paths := <-onChange:
		assert.Equal(t, []string{path}, paths)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.yaml")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("commands: []"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("initial"), 0o644))

	onChange := start(t, path)

	require.NoError(t, os.WriteFile(other, []byte("changed"), 0o644))

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_RenameOverWatchedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.yaml")
	tmp := filepath.Join(dir, ".commands.yaml.swp")
	require.NoError(t, os.WriteFile(path, []byte("commands: []"), 0o644))

	onChange := start(t, path)

	require.NoError(t, os.WriteFile(tmp, []byte("commands: [{name: x}]"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case paths := <-onChange:
		assert.Equal(t, []string{path}, paths)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification for rename over watched file")
	}
}

func TestWatcher_ReportsEveryChangedFile(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	a := filepath.Join(dirA, "a.yaml")
	b := filepath.Join(dirB, "b.html")
	require.NoError(t, os.WriteFile(a, nil, 0o644))
	require.NoError(t, os.WriteFile(b, nil, 0o644))

	onChange := start(t, a, b)

	require.NoError(t, os.WriteFile(a, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("y"), 0o644))

	select {
	case paths := <-onChange:
		assert.ElementsMatch(t, []string{a, b}, paths)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification")
	}
}

func TestWatcher_Stop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	w, err := watcher.New(watcher.DefaultConfig(path))
	require.NoError(t, err)
	_, err = w.Start()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		assert.NoError(t, w.Stop(), "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := watcher.New(watcher.Config{})
	require.Error(t, err)

	w, err := watcher.New(watcher.DefaultConfig(filepath.Join(t.TempDir(), "missing", "commands.yaml")))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()
	_, err = w.Start()
	require.Error(t, err, "directory does not exist")
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/tmp/commands.yaml")

	assert.Equal(t, []string{"/tmp/commands.yaml"}, cfg.Paths)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)
}

func TestWatched(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig("/tmp/b.yaml", "/tmp/a.yaml"))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	assert.Equal(t, []string{"/tmp/a.yaml", "/tmp/b.yaml"}, w.Watched())
}
