package api

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/dgallion1/sidetoc/internal/site"
)

// Watcher invalidates rendered articles when their sources change and tells
// reload clients about it.
type Watcher struct {
	fs   *fsnotify.Watcher
	lib  *site.Library
	hub  *Hub
	log  *slog.Logger
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewWatcher watches the library's content directory and its
// subdirectories. Hidden directories are skipped.
func NewWatcher(lib *site.Library, hub *Hub, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:   fsw,
		lib:  lib,
		hub:  hub,
		log:  log,
		done: make(chan struct{}),
	}
	if err := w.addRecursive(lib.Dir()); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if site.HiddenDir(dir, path, d) {
			return filepath.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		return w.fs.Add(path)
	})
}

// Start begins handling file events.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case ev, ok := <-w.fs.Events:
				if !ok {
					return
				}
				w.handle(ev)
			case err, ok := <-w.fs.Errors:
				if !ok {
					return
				}
				w.log.Warn("content watcher", "error", err)
			case <-w.done:
				return
			}
		}
	}()
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) && !strings.HasPrefix(filepath.Base(ev.Name), ".") {
		if err := w.addRecursive(ev.Name); err == nil {
			w.log.Debug("watching new path", "path", ev.Name)
		}
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	switch strings.ToLower(filepath.Ext(ev.Name)) {
	case ".md", ".markdown":
	default:
		return
	}

	slug := site.Slug(ev.Name)
	w.lib.Invalidate(slug)
	w.log.Info("article changed", "slug", slug, "op", ev.Op.String())
	if w.hub != nil {
		w.hub.Broadcast(Message{Type: "reload", Slug: slug})
	}
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}
