package config

import (
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Watcher hot-reloads Params from a YAML file on write events, exposing
// the current value through a sync/atomic.Pointer so the search loop's
// reader never blocks on the filesystem watcher goroutine and never
// observes a torn struct (SPEC_FULL §5).
type Watcher struct {
	current atomic.Pointer[Params]
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch starts watching path for writes, reloading Params on each one.
// The returned Watcher's Current() is safe to call from any goroutine;
// a reload only swaps the stored pointer, so a caller that reads
// Current() once per solve sees one consistent Params for that solve.
func Watch(path string, onError func(error)) (*Watcher, error) {
	initial, err := Load(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{watcher: fw, done: make(chan struct{})}
	w.current.Store(&initial)

	go func() {
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				p, err := Load(path)
				if err != nil {
					if onError != nil {
						onError(err)
					}
					continue
				}
				w.current.Store(&p)
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(err)
				}
			case <-w.done:
				return
			}
		}
	}()
	return w, nil
}

// Current returns the most recently loaded Params snapshot.
func (w *Watcher) Current() Params { return *w.current.Load() }

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
