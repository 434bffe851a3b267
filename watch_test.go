// FILE: lixenwraith/keyprop/watch_test.go
package keyprop

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSupplier(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.toml", "port = 8080\n")

	t.Run("ChangedTracksModTimeAndSize", func(t *testing.T) {
		s := NewFileSupplier(path)
		assert.True(t, s.Changed(), "nothing loaded yet")

		src, err := s.Configuration()
		require.NoError(t, err)
		assert.Equal(t, 8080, IntOr(src, "port", 0))
		assert.False(t, s.Changed())

		require.NoError(t, os.WriteFile(path, []byte("port = 9090\n"), 0644))
		later := time.Now().Add(2 * time.Second)
		require.NoError(t, os.Chtimes(path, later, later))
		assert.True(t, s.Changed())

		src, err = s.Configuration()
		require.NoError(t, err)
		assert.Equal(t, 9090, IntOr(src, "port", 0))
		assert.False(t, s.Changed())
	})

	t.Run("FormatHint", func(t *testing.T) {
		envPath := writeFile(t, dir, "settings", "port=7070\n")
		src, err := NewFileSupplier(envPath, FormatEnv).Configuration()
		require.NoError(t, err)
		assert.Equal(t, 7070, IntOr(src, "port", 0))
	})

	t.Run("MissingFile", func(t *testing.T) {
		s := NewFileSupplier(filepath.Join(dir, "missing.toml"))
		_, err := s.Configuration()
		assert.ErrorIs(t, err, ErrSourceNotFound)
		assert.True(t, s.Changed())
	})

	t.Run("HotReloadThroughCachingSupplier", func(t *testing.T) {
		p := writeFile(t, dir, "reload.toml", "timeout = 10\n")
		src := OfSupplierCached(NewFileSupplier(p))
		timeout := OfIntDefault("timeout", 30).MustKeyDefaultProperty()

		v, err := timeout.Resolve(src)
		require.NoError(t, err)
		assert.Equal(t, 10, v)

		require.NoError(t, os.WriteFile(p, []byte("timeout = 20\n"), 0644))
		later := time.Now().Add(2 * time.Second)
		require.NoError(t, os.Chtimes(p, later, later))

		v, err = timeout.Resolve(src)
		require.NoError(t, err)
		assert.Equal(t, 20, v)

		require.NoError(t, os.Remove(p))
		v, err = timeout.Resolve(src)
		require.NoError(t, err)
		assert.Equal(t, 30, v, "a vanished file behaves as an empty source")
	})
}

func TestFileSupplierWatch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "watched.toml", "a = 1\n")
	s := NewFileSupplier(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := s.Watch(ctx, WatchOptions{Debounce: 100 * time.Millisecond})
	require.NoError(t, err)

	// Unrelated files in the same directory are ignored
	writeFile(t, dir, "other.toml", "b = 2\n")

	// A burst of writes coalesces into one notification
	for i := range 3 {
		require.NoError(t, os.WriteFile(path, []byte("a = "+string(rune('2'+i))+"\n"), 0644))
	}

	select {
	case got := <-changes:
		assert.Equal(t, path, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	select {
	case got := <-changes:
		t.Fatalf("unexpected second notification for %s", got)
	case <-time.After(300 * time.Millisecond):
	}

	src, err := s.Configuration()
	require.NoError(t, err)
	assert.Equal(t, 4, IntOr(src, "a", 0))

	cancel()
	select {
	case _, ok := <-changes:
		assert.False(t, ok, "channel closes when the context ends")
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestFileSupplierWatchMissingDir(t *testing.T) {
	s := NewFileSupplier(filepath.Join(t.TempDir(), "nope", "app.toml"))
	_, err := s.Watch(context.Background(), DefaultWatchOptions())
	assert.ErrorIs(t, err, ErrSourceNotFound)
}
