// Package watch reports changes to documents below a directory.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Paintersrp/linkrank/internal/pathutil"
)

// DefaultDebounce groups bursts of events, such as an editor saving through a
// temporary file, into one notification.
const DefaultDebounce = 250 * time.Millisecond

type Watcher struct {
	watcher    *fsnotify.Watcher
	root       string
	extensions []string
	ignored    map[string]struct{}
	debounce   time.Duration
	done       chan struct{}
	once       sync.Once
}

// New watches root and every directory below it, skipping dot-directories and
// the ignored folder names (case-insensitive). Only files matching extensions
// are reported; an empty list reports every file.
func New(root string, extensions, ignoredFolders []string, debounce time.Duration) (*Watcher, error) {
	normalized := pathutil.NormalizePath(root)
	if normalized == "" {
		return nil, errors.New("watch directory cannot be empty")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:    fw,
		root:       normalized,
		extensions: append([]string(nil), extensions...),
		ignored:    make(map[string]struct{}, len(ignoredFolders)),
		debounce:   debounce,
		done:       make(chan struct{}),
	}

	for _, name := range ignoredFolders {
		w.ignored[strings.ToLower(name)] = struct{}{}
	}

	if err := w.addRecursive(normalized); err != nil {
		_ = w.Close()
		return nil, err
	}

	return w, nil
}

// Run blocks until ctx is cancelled or the watcher is closed. After each
// burst of relevant events fn receives the changed paths relative to the
// root, sorted.
func (w *Watcher) Run(ctx context.Context, fn func(changed []string)) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for rel := range pending {
				changed = append(changed, rel)
			}
			sort.Strings(changed)
			pending = make(map[string]struct{})
			fn(changed)
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !w.skipDir(filepath.Base(event.Name)) {
						_ = w.addRecursive(event.Name)
					}
					continue
				}
			}

			rel := w.relevantPath(event)
			if rel == "" {
				continue
			}
			pending[rel] = struct{}{}
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}
}

func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}

	var closeErr error
	w.once.Do(func() {
		close(w.done)
		closeErr = w.watcher.Close()
	})
	return closeErr
}

func (w *Watcher) addRecursive(root string) error {
	normalized := pathutil.NormalizePath(root)
	return filepath.WalkDir(normalized, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return filepath.SkipDir
			}
			return err
		}

		if !d.IsDir() {
			return nil
		}
		if path != normalized && w.skipDir(d.Name()) {
			return filepath.SkipDir
		}

		return w.watcher.Add(path)
	})
}

func (w *Watcher) relevantPath(event fsnotify.Event) string {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return ""
	}

	rel, err := pathutil.RootRelative(w.root, pathutil.NormalizePath(event.Name))
	if err != nil || rel == "." || rel == "" || strings.HasPrefix(rel, "..") {
		return ""
	}
	if !pathutil.HasExtension(rel, w.extensions) {
		return ""
	}
	dirs := strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/")
	for _, dir := range dirs {
		if dir != "." && w.skipDir(dir) {
			return ""
		}
	}
	return rel
}

// skipDir matches the directory rules of source.Dir.
func (w *Watcher) skipDir(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, ".") {
		return true
	}
	_, ok := w.ignored[lower]
	return ok
}
