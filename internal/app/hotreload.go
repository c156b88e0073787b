package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must stay quiet after a change before
// it is reported.
const DefaultSettle = 250 * time.Millisecond

// FileWatcher reports when a file is changed by another program, for
// example when a map server rewrites the map being edited.
type FileWatcher struct {
	path    string
	settle  time.Duration
	watcher *fsnotify.Watcher
	log     *slog.Logger

	mu       sync.Mutex
	modTime  time.Time
	size     int64
	onChange func(path string)

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewFileWatcher creates a watcher for path. The file's current state is
// the baseline that later changes are measured against.
func NewFileWatcher(path string, settle time.Duration, log *slog.Logger) (*FileWatcher, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	// Resolve symlinks so events name the real file.
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory: saving by rename replaces the file's inode.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	fw := &FileWatcher{
		path:    abs,
		settle:  settle,
		watcher: w,
		log:     log,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	fw.ResetBaseline()
	return fw, nil
}

// OnChange sets the callback for outside changes. The callback is called
// from a background goroutine.
func (fw *FileWatcher) OnChange(callback func(path string)) {
	fw.mu.Lock()
	fw.onChange = callback
	fw.mu.Unlock()
}

// Path returns the watched file.
func (fw *FileWatcher) Path() string {
	return fw.path
}

// Start begins watching in a background goroutine.
func (fw *FileWatcher) Start() {
	go fw.watchLoop()
}

// Stop ends watching and waits for the watcher goroutine to exit.
func (fw *FileWatcher) Stop() error {
	close(fw.stopCh)
	err := fw.watcher.Close()
	<-fw.doneCh
	return err
}

// ResetBaseline accepts the file's current state as unchanged. Call it after
// writing the file yourself.
func (fw *FileWatcher) ResetBaseline() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.modTime, fw.size = time.Time{}, -1
	if info, err := os.Stat(fw.path); err == nil {
		fw.modTime, fw.size = info.ModTime(), info.Size()
	}
}

func (fw *FileWatcher) watchLoop() {
	defer close(fw.doneCh)

	timer := time.NewTimer(fw.settle)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-fw.stopCh:
			return
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != fw.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(fw.settle)
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Warn("file watch error", "path", fw.path, "error", err)
		case <-timer.C:
			if fw.checkForUpdate() {
				fw.mu.Lock()
				cb := fw.onChange
				fw.mu.Unlock()
				fw.log.Info("file changed on disk", "path", fw.path)
				if cb != nil {
					cb(fw.path)
				}
			}
		}
	}
}

// checkForUpdate reports whether the file differs from the baseline, and if
// so makes its current state the new baseline.
func (fw *FileWatcher) checkForUpdate() bool {
	info, err := os.Stat(fw.path)
	if err != nil {
		return false
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if info.ModTime().Equal(fw.modTime) && info.Size() == fw.size {
		return false
	}
	fw.modTime, fw.size = info.ModTime(), info.Size()
	return true
}
