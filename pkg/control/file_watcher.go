package control

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

const debounceInterval = 200 * time.Millisecond

// FileWatcher refreshes the filter when one of the word list files changes.
// Editors write a file in several steps, so events are debounced into one
// refresh.
type FileWatcher struct {
	paths     map[string]bool
	cache     Invalidator
	refresher Refresher

	fw       *fsnotify.Watcher
	stopOnce sync.Once
}

func NewFileWatcher(paths []string, cache Invalidator, r Refresher) (*FileWatcher, error) {
	w := &FileWatcher{
		paths:     make(map[string]bool, len(paths)),
		cache:     cache,
		refresher: r,
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve %s", p)
		}
		w.paths[abs] = true
	}
	return w, nil
}

// Start watches the parent directories of the files, so atomic
// rename-into-place saves are seen as well as in-place writes.
func (w *FileWatcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create fsnotify watcher")
	}
	dirs := map[string]bool{}
	for p := range w.paths {
		dirs[filepath.Dir(p)] = true
	}
	for d := range dirs {
		if err := fw.Add(d); err != nil {
			fw.Close()
			return errors.Wrapf(err, "watch %s", d)
		}
	}
	w.fw = fw
	log.Printf("Control: watching %d word list file(s)", len(w.paths))

	go w.loop(ctx)
	return nil
}

func (w *FileWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.fw != nil {
			err = w.fw.Close()
		}
	})
	return err
}

func (w *FileWatcher) loop(ctx context.Context) {
	defer w.Stop()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !w.paths[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceInterval)
			} else {
				timer.Reset(debounceInterval)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			forceRefresh(ctx, "file", w.cache, w.refresher)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Printf("Control: fsnotify error: %v", err)
		}
	}
}
