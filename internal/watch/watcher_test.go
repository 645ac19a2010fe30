package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "in.pdf")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	w, err := New(target, 10*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	tests := []struct {
		name    string
		event   fsnotify.Event
		want    bool
		removed bool
	}{
		{"write", fsnotify.Event{Name: target, Op: fsnotify.Write}, true, false},
		{"write and chmod", fsnotify.Event{Name: target, Op: fsnotify.Write | fsnotify.Chmod}, true, false},
		{"create", fsnotify.Event{Name: target, Op: fsnotify.Create}, true, false},
		{"remove", fsnotify.Event{Name: target, Op: fsnotify.Remove}, true, true},
		{"rename", fsnotify.Event{Name: target, Op: fsnotify.Rename}, true, true},
		{"chmod only", fsnotify.Event{Name: target, Op: fsnotify.Chmod}, false, false},
		{"other file", fsnotify.Event{Name: filepath.Join(dir, "other.pdf"), Op: fsnotify.Write}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := w.handle(tt.event)
			assert.Equal(t, tt.want, ok)
			if ok {
				assert.Equal(t, tt.removed, c.Removed)
				assert.Equal(t, w.Path(), c.Path)
			}
		})
	}
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "in.pdf")
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0o644))

	w, err := New(target, 100*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte("v2"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.pdf"), []byte("x"), 0o644))

	select {
	case c := <-w.Changes():
		assert.False(t, c.Removed)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
	}

	select {
	case c := <-w.Changes():
		t.Fatalf("burst should coalesce, got extra %+v", c)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_Close(t *testing.T) {
	target := filepath.Join(t.TempDir(), "in.pdf")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	w, err := New(target, 0)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	select {
	case _, ok := <-w.Changes():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("changes channel not closed")
	}
}

func TestNew_MissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope", "in.pdf"), 0)
	assert.Error(t, err)
}
