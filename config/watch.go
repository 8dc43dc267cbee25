package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/cloudfx"
)

// Watcher keeps the active configuration in sync with a file on disk.
//
// The directory is watched rather than the file, so editors that save by
// rename are picked up. A reload that fails to parse or validate is logged
// and the previous configuration stays active.
type Watcher struct {
	path    string
	current atomic.Pointer[File]
	reloads atomic.Uint64

	fs       *fsnotify.Watcher
	onChange func(*File)
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// OnChange registers fn to run after each successful reload.
func OnChange(fn func(*File)) WatchOption {
	return func(w *Watcher) { w.onChange = fn }
}

// Watch loads path and starts watching it.
func Watch(path string, opts ...WatchOption) (*Watcher, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("config: watch: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{path: abs, fs: fw, done: make(chan struct{})}
	for _, opt := range opts {
		opt(w)
	}
	w.current.Store(f)

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Current returns the active configuration. The returned File must not be
// modified.
func (w *Watcher) Current() *File { return w.current.Load() }

// Reloads returns the number of successful reloads.
func (w *Watcher) Reloads() uint64 { return w.reloads.Load() }

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.reload()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			cloudfx.Logger().Warn("config: watch error", "path", w.path, "err", err)
		}
	}
}

func (w *Watcher) reload() {
	f, err := Load(w.path)
	if err != nil {
		// A rename may leave the path briefly missing; the following
		// Create event reloads it.
		if !errors.Is(err, cloudfx.ErrIO) {
			cloudfx.Logger().Warn("config: reload rejected, keeping previous", "path", w.path, "err", err)
		}
		return
	}
	w.current.Store(f)
	w.reloads.Add(1)
	cloudfx.Logger().Info("config: reloaded", "path", w.path)
	if w.onChange != nil {
		w.onChange(f)
	}
}
