// FILE: lixenwraith/keyprop/watch.go
package keyprop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchOptions configures file watching behavior
type WatchOptions struct {
	// Debounce coalesces bursts of file events into one notification (minimum MinDebounce)
	Debounce time.Duration
}

// DefaultWatchOptions returns sensible defaults for file watching
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{Debounce: DefaultDebounce}
}

// FileSupplier is a Supplier reading one configuration file.
// Changed compares the file's modification time and size with the last load,
// so wrapping it in a CachingSupplier reloads the file only after it was touched.
type FileSupplier struct {
	path   string
	format string // empty means detect

	mu          sync.Mutex
	loaded      bool
	lastModTime time.Time
	lastSize    int64
}

// NewFileSupplier creates a supplier for path. An optional format hint skips detection.
func NewFileSupplier(path string, format ...string) *FileSupplier {
	s := &FileSupplier{path: path}
	if len(format) > 0 {
		s.format = format[0]
	}
	return s
}

// Path returns the watched file path.
func (s *FileSupplier) Path() string { return s.path }

// Configuration implements Supplier by loading the file.
func (s *FileSupplier) Configuration() (Source, error) {
	info, statErr := os.Stat(s.path)

	var (
		src *MapSource
		err error
	)
	if s.format != "" {
		src, err = LoadFileFormat(s.path, s.format)
	} else {
		src, err = LoadFile(s.path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.loaded = false
		return nil, err
	}
	if statErr == nil {
		s.lastModTime = info.ModTime()
		s.lastSize = info.Size()
	}
	s.loaded = true
	Logger().Debug().Str("path", s.path).Int("keys", src.Len()).Msg("configuration file loaded")
	return src, nil
}

// Changed implements Supplier. It is true before the first successful load and
// whenever the file's modification time or size differ from the last load.
func (s *FileSupplier) Changed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return true
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return true
	}
	return !info.ModTime().Equal(s.lastModTime) || info.Size() != s.lastSize
}

// Watch reports changes to the file on the returned channel, one path per
// debounced burst of events. The parent directory is watched so editors that
// replace the file by rename are followed. The channel is closed when ctx ends.
func (s *FileSupplier) Watch(ctx context.Context, opts WatchOptions) (<-chan string, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Debounce < MinDebounce {
		opts.Debounce = MinDebounce
	}

	target, err := filepath.Abs(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch path '%s': %w", s.path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		w.Close()
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, filepath.Dir(target))
		}
		return nil, fmt.Errorf("failed to watch '%s': %w", filepath.Dir(target), err)
	}

	ch := make(chan string, watchBufferSize)
	go s.watchLoop(ctx, w, target, opts.Debounce, ch)
	return ch, nil
}

// watchLoop owns the fsnotify watcher and the output channel.
func (s *FileSupplier) watchLoop(ctx context.Context, w *fsnotify.Watcher, target string, debounce time.Duration, ch chan<- string) {
	defer close(ch)
	defer w.Close()

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			select {
			case ch <- s.path:
			default:
				Logger().Warn().Str("path", s.path).Msg("change notification dropped, channel full")
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			Logger().Error().Err(err).Str("path", s.path).Msg("file watcher error")
		}
	}
}

func (s *FileSupplier) String() string {
	return fmt.Sprintf("FileSupplier(%s)", s.path)
}
