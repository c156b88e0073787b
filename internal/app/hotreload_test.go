package app

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	mapimage "map-editor/internal/image"
	"map-editor/pkg/colorutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSettle = 50 * time.Millisecond

// touch rewrites path with new content and a modification time well clear
// of the previous one.
func touch(t *testing.T, path string, content string, at time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, at, at))
}

func TestFileWatcherReportsOutsideChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.pgm")
	touch(t, path, "a", time.Now().Add(-time.Hour))

	fw, err := NewFileWatcher(path, testSettle, nil)
	require.NoError(t, err)
	var hits atomic.Int32
	fw.OnChange(func(string) { hits.Add(1) })
	fw.Start()
	defer fw.Stop()

	touch(t, path, "bb", time.Now())
	require.Eventually(t, func() bool { return hits.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Other files in the directory are ignored.
	touch(t, filepath.Join(filepath.Dir(path), "other.txt"), "x", time.Now())
	assert.Never(t, func() bool { return hits.Load() > 1 }, 300*time.Millisecond, 10*time.Millisecond)
}

func TestFileWatcherBaseline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.pgm")
	touch(t, path, "a", time.Now().Add(-time.Hour))

	fw, err := NewFileWatcher(path, testSettle, nil)
	require.NoError(t, err)
	var hits atomic.Int32
	fw.OnChange(func(string) { hits.Add(1) })
	fw.Start()
	defer fw.Stop()

	touch(t, path, "bb", time.Now())
	fw.ResetBaseline()
	assert.Never(t, func() bool { return hits.Load() > 0 }, 300*time.Millisecond, 10*time.Millisecond)
}

func TestFileWatcherStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.pgm")
	touch(t, path, "a", time.Now())
	fw, err := NewFileWatcher(path, testSettle, nil)
	require.NoError(t, err)
	fw.Start()
	assert.NoError(t, fw.Stop())

	_, err = NewFileWatcher(filepath.Join(t.TempDir(), "missing", "map.pgm"), testSettle, nil)
	assert.Error(t, err)
}

func TestStateIgnoresOwnSave(t *testing.T) {
	imgPath, _ := writeMap(t, 4, 4)
	s := NewState(nil)
	defer s.Close()
	s.EnableFileWatch(testSettle)
	require.NoError(t, s.OpenImage(imgPath))

	var changed atomic.Int32
	s.On(EventFileChanged, func(interface{}) { changed.Add(1) })

	s.Engine.Invert()
	require.NoError(t, s.SaveImage(imgPath))
	assert.Never(t, func() bool { return changed.Load() > 0 }, 300*time.Millisecond, 10*time.Millisecond)

	require.NoError(t, mapimage.NewFilled(5, 5, colorutil.Boundary).Save(imgPath))
	require.Eventually(t, func() bool { return changed.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}
