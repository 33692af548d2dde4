// Copyright (c) 2026 Yomikata. All rights reserved.

/*
Package watcher reacts to candidate folders appearing or disappearing
under a library's scan paths and submits a deduplicated rescan. Watches
are non-recursive: only immediate entries of each scan path are observed,
since deeper changes inside an existing archive are not actionable at
this layer.
*/
package watcher

import (
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/yomikata/ingest/internal/scanqueue"
)

// Submitter is the subset of the scan queue the watcher depends on.
type Submitter interface {
	Submit(libraryID string, priority scanqueue.TaskPriority) string
}

type libraryWatch struct {
	fsWatcher *fsnotify.Watcher
	paths     []string
	stop      chan struct{}
	done      chan struct{}
}

// Watcher owns one fsnotify watcher per library currently being watched.
type Watcher struct {
	submitter Submitter
	logger    *slog.Logger

	mu       sync.Mutex
	watching map[string]*libraryWatch
}

// New constructs an empty Watcher bound to submitter.
func New(submitter Submitter, logger *slog.Logger) *Watcher {
	return &Watcher{
		submitter: submitter,
		logger:    logger,
		watching:  make(map[string]*libraryWatch),
	}
}

// Start begins watching scanPaths on behalf of libraryID. A no-op if
// already watching, or if scanPaths is empty.
func (w *Watcher) Start(libraryID string, scanPaths []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.watching[libraryID]; ok {
		return nil
	}
	if len(scanPaths) == 0 {
		return nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, path := range scanPaths {
		if err := fsWatcher.Add(path); err != nil {
			w.logger.Error("watcher_add_path_failed",
				slog.String("library_id", libraryID), slog.String("path", path), slog.Any("error", err))
		}
	}

	lw := &libraryWatch{
		fsWatcher: fsWatcher,
		paths:     scanPaths,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	w.watching[libraryID] = lw

	go w.run(libraryID, lw)

	return nil
}

// Stop stops watching libraryID, if currently watching.
func (w *Watcher) Stop(libraryID string) {
	w.mu.Lock()
	lw, ok := w.watching[libraryID]
	if ok {
		delete(w.watching, libraryID)
	}
	w.mu.Unlock()

	if !ok {
		return
	}
	close(lw.stop)
	<-lw.done
}

// Refresh restarts the watch for libraryID against a new set of scan
// paths, used when a library's scan paths change.
func (w *Watcher) Refresh(libraryID string, scanPaths []string) error {
	w.Stop(libraryID)
	return w.Start(libraryID, scanPaths)
}

// IsWatching reports whether libraryID currently has an active watch.
func (w *Watcher) IsWatching(libraryID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.watching[libraryID]
	return ok
}

// StopAll stops every active watch. Called at shutdown.
func (w *Watcher) StopAll() {
	w.mu.Lock()
	libraryIDs := make([]string, 0, len(w.watching))
	for libraryID := range w.watching {
		libraryIDs = append(libraryIDs, libraryID)
	}
	w.mu.Unlock()

	for _, libraryID := range libraryIDs {
		w.Stop(libraryID)
	}
}
