// Package watch reports changes to step declaration files.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/stepls/pkg/logger"
)

// DefaultDebounce is the quiet period after the last event before a change
// is reported.
const DefaultDebounce = 200 * time.Millisecond

var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// Watcher watches a workspace tree and reports changes to files matched by
// the current steps globs or to explicitly tracked files.
type Watcher struct {
	root     string
	globs    func() []string
	debounce time.Duration
	log      logr.Logger

	mu      sync.Mutex
	tracked map[string]bool
	watcher *fsnotify.Watcher
}

// New watches every directory under root. globs is consulted on each event
// so configuration changes take effect without restarting the watcher.
func New(root string, globs func() []string, lgr logr.Logger) (*Watcher, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		root:     root,
		globs:    globs,
		debounce: DefaultDebounce,
		log:      lgr,
		tracked:  make(map[string]bool),
		watcher:  fw,
	}
	if err := w.addTree(root); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// SetDebounce changes the quiet period.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	w.debounce = d
	w.mu.Unlock()
}

// Track reports changes to path even when no glob matches it.
func (w *Watcher) Track(path string) {
	if path == "" {
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	w.mu.Lock()
	w.tracked[abs] = true
	w.mu.Unlock()
	if !strings.HasPrefix(abs, w.root+string(filepath.Separator)) {
		_ = w.watcher.Add(filepath.Dir(abs))
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("watch %s: %w", root, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.log.V(logger.TraceLevel).Info("cannot watch directory", logger.PathKey, path, "error", err.Error())
		}
		return nil
	})
}

// Relevant reports whether a change to path should trigger a reload.
func (w *Watcher) Relevant(path string) bool {
	w.mu.Lock()
	tracked := w.tracked[path]
	w.mu.Unlock()
	if tracked {
		return true
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, g := range w.globs() {
		if filepath.IsAbs(g) {
			if ok, _ := doublestar.PathMatch(g, path); ok {
				return true
			}
			continue
		}
		g = strings.TrimPrefix(filepath.ToSlash(g), "./")
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	return false
}

// Run delivers debounced changes to onChange until ctx ends. onChange
// receives the last relevant path of each burst.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					_ = w.addTree(ev.Name)
					continue
				}
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !w.Relevant(ev.Name) {
				continue
			}
			w.log.V(logger.TraceLevel).Info("file changed", logger.PathKey, ev.Name, "op", ev.Op.String())
			pending = ev.Name
			w.mu.Lock()
			d := w.debounce
			w.mu.Unlock()
			if timer == nil {
				timer = time.NewTimer(d)
			} else {
				timer.Stop()
				timer.Reset(d)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange(pending)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error(err, "watch error")
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
