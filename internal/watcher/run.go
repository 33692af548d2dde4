// Copyright (c) 2026 Yomikata. All rights reserved.

package watcher

import (
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yomikata/ingest/internal/platform/constants"
	"github.com/yomikata/ingest/internal/scanqueue"
)

// run is libraryID's event loop: it filters to Create/Remove events,
// debounces a burst into a single rescan, and exits when stopped.
func (w *Watcher) run(libraryID string, lw *libraryWatch) {
	defer close(lw.done)
	defer lw.fsWatcher.Close()

	for {
		select {
		case <-lw.stop:
			return

		case err, ok := <-lw.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher_error", slog.String("library_id", libraryID), slog.Any("error", err))

		case event, ok := <-lw.fsWatcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}

			time.Sleep(constants.DefaultWatchDebounce)
			drainEvents(lw.fsWatcher.Events)

			w.submitter.Submit(libraryID, scanqueue.PriorityNormal)
		}
	}
}

// drainEvents consumes any events already queued without blocking, so a
// burst collapses into the single rescan its caller is about to submit.
func drainEvents(events <-chan fsnotify.Event) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
