// Package watch implements the optional file-system watcher: fsnotify
// events, debounced and filtered by glob with bmatcuk/doublestar, drive
// Reindex calls against the engine facade.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/cxref/internal/diag"
	"github.com/standardbeagle/cxref/internal/job"
)

// Indexer is the subset of the engine facade the watcher drives.
type Indexer interface {
	Reindex(filename string, mode job.Mode) (int, error)
	Index(input string, args []string, mode job.Mode) (int, error)
}

// Watcher recursively watches a root directory and debounces file
// events into Reindex calls.
type Watcher struct {
	fsw     *fsnotify.Watcher
	engine  Indexer
	include []string
	exclude []string
	root    string

	debounce time.Duration
	mu       sync.Mutex
	pending  map[string]struct{}
	timer    *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Watcher rooted at root, matching files against include
// (and rejecting exclude) doublestar patterns.
func New(root string, include, exclude []string, debounce time.Duration, engine Indexer) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		fsw:      fsw,
		engine:   engine,
		include:  include,
		exclude:  exclude,
		root:     root,
		debounce: debounce,
		pending:  make(map[string]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start adds watches under root and begins processing events.
func (w *Watcher) Start() error {
	if err := w.addWatches(w.root); err != nil {
		return err
	}
	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop shuts the watcher down and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.cancel()
	_ = w.fsw.Close()
	w.wg.Wait()
}

func (w *Watcher) addWatches(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		if w.matches(w.exclude, path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			diag.Warn("watch", "add %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) matches(patterns []string, path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			diag.Warn("watch", "%v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	info, err := os.Stat(ev.Name)
	if err == nil && info.IsDir() {
		if ev.Op&fsnotify.Create != 0 && !w.matches(w.exclude, ev.Name) {
			if err := w.fsw.Add(ev.Name); err != nil {
				diag.Warn("watch", "add %s: %v", ev.Name, err)
			}
		}
		return
	}

	if w.matches(w.exclude, ev.Name) || !w.matches(w.include, ev.Name) {
		return
	}
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	w.pending[ev.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	paths := w.pending
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	for path := range paths {
		if _, err := w.engine.Reindex(path, job.Normal); err != nil {
			diag.Trace("watch", "reindex %s: %v", path, err)
		}
	}
}
