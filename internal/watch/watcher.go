// Package watch reports changes to the loaded source file on disk.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce coalesces the burst of events an editor produces on save.
const DefaultDebounce = 300 * time.Millisecond

// Change is a debounced modification of the watched file.
type Change struct {
	Path    string
	Removed bool
}

// Watcher watches one file. The directory is watched rather than the file so
// replace-by-rename saves are seen.
type Watcher struct {
	fsw      *fsnotify.Watcher
	path     string
	debounce time.Duration
	out      chan Change
	done     chan struct{}
	once     sync.Once
}

// New starts watching path.
func New(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	w := &Watcher{
		fsw:      fsw,
		path:     abs,
		debounce: debounce,
		out:      make(chan Change, 1),
		done:     make(chan struct{}),
	}
	go w.loop()
	log.Debug().Str("path", abs).Msg("watching source file")
	return w, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Changes delivers debounced changes. It is closed by Close.
func (w *Watcher) Changes() <-chan Change { return w.out }

// Close stops watching.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}

// handle filters an event down to a change of the watched file.
func (w *Watcher) handle(ev fsnotify.Event) (Change, bool) {
	name, err := filepath.Abs(ev.Name)
	if err != nil || name != w.path {
		return Change{}, false
	}
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return Change{Path: w.path, Removed: true}, true
	case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
		return Change{Path: w.path}, true
	}
	return Change{}, false
}

func (w *Watcher) loop() {
	defer close(w.out)

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending Change
	)
	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			c, ok := w.handle(ev)
			if !ok {
				continue
			}
			pending = c
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Str("path", w.path).Msg("file watcher error")
		case <-fire:
			fire = nil
			select {
			case w.out <- pending:
			case <-w.done:
				return
			}
		}
	}
}
