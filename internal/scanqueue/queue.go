// Copyright (c) 2026 Yomikata. All rights reserved.

package scanqueue

import (
	"container/heap"
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yomikata/ingest/internal/platform/apperr"
	"github.com/yomikata/ingest/internal/platform/constants"
)

// Runner performs a scan for a single library. Implementations (the scan
// pipeline) are expected to check ctx for cancellation between coarse
// steps, per the worker protocol's cooperative-cancellation checkpoints.
type Runner interface {
	Run(ctx context.Context, libraryID string) (Result, error)
}

// Queue is the priority-ordered, per-library-deduplicated scan queue with
// a single background worker. All mutable state is protected by one
// coarse mutex; there is no nested locking.
type Queue struct {
	runner Runner
	logger *slog.Logger

	mu            sync.Mutex
	tasks         map[string]*ScanTask
	active        map[string]string // library_id -> task_id
	pending       entryHeap
	pendingByTask map[string]*queuedEntry
	runningCancel context.CancelFunc // set while a task is Running

	signal   chan struct{} // buffered 1: wakes the worker
	shutdown chan struct{}
	done     chan struct{} // closed once the worker goroutine returns
}

// New constructs a Queue bound to runner. Call [Queue.Start] once to begin
// processing.
func New(runner Runner, logger *slog.Logger) *Queue {
	return &Queue{
		runner:        runner,
		logger:        logger,
		tasks:         make(map[string]*ScanTask),
		active:        make(map[string]string),
		pendingByTask: make(map[string]*queuedEntry),
		signal:        make(chan struct{}, 1),
		shutdown:      make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start runs the worker loop in a new goroutine. It returns immediately.
func (q *Queue) Start() {
	go q.workerLoop()
}

// Submit enqueues a scan for libraryID at priority, deduplicating against
// any non-terminal task already active for that library.
func (q *Queue) Submit(libraryID string, priority TaskPriority) string {
	q.mu.Lock()
	defer q.mu.Unlock()

	if taskID, ok := q.active[libraryID]; ok {
		task := q.tasks[taskID]
		if task.Status == StatusPending && priority > task.Priority {
			task.Priority = priority
			if entry, ok := q.pendingByTask[taskID]; ok {
				entry.priority = priority
				heap.Fix(&q.pending, entry.index)
			}
		}
		return taskID
	}

	task := &ScanTask{
		ID:        uuid.New().String(),
		LibraryID: libraryID,
		Priority:  priority,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	q.tasks[task.ID] = task
	q.active[libraryID] = task.ID

	entry := &queuedEntry{taskID: task.ID, priority: priority, createdAt: task.CreatedAt}
	heap.Push(&q.pending, entry)
	q.pendingByTask[task.ID] = entry

	q.wake()

	return task.ID
}

// wake signals the worker without blocking if it is already awake.
func (q *Queue) wake() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Get returns a copy of the task, or nil if no such task exists.
func (q *Queue) Get(taskID string) *ScanTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tasks[taskID].Clone()
}

// GetByLibrary returns a copy of the active (Pending or Running) task for
// libraryID, or nil if none.
func (q *Queue) GetByLibrary(libraryID string) *ScanTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	taskID, ok := q.active[libraryID]
	if !ok {
		return nil
	}
	return q.tasks[taskID].Clone()
}

// ListPending returns every Pending task ordered by the queue's own key
// (priority desc, created_at asc).
func (q *Queue) ListPending() []*ScanTask {
	q.mu.Lock()
	defer q.mu.Unlock()

	ordered := make(entryHeap, len(q.pending))
	copy(ordered, q.pending)
	sort.Slice(ordered, func(i, j int) bool { return ordered.Less(i, j) })

	tasks := make([]*ScanTask, 0, len(ordered))
	for _, entry := range ordered {
		tasks = append(tasks, q.tasks[entry.taskID].Clone())
	}
	return tasks
}

// ListProcessing returns the currently Running task, if any, as a
// single-element (or empty) slice.
func (q *Queue) ListProcessing() []*ScanTask {
	q.mu.Lock()
	defer q.mu.Unlock()

	var running []*ScanTask
	for _, task := range q.tasks {
		if task.Status == StatusRunning {
			running = append(running, task.Clone())
		}
	}
	return running
}

// ListHistory returns terminal tasks completed within the last 24 hours,
// most-recent-first, truncated to limit. limit <= 0 uses the package
// default.
func (q *Queue) ListHistory(limit int) []*ScanTask {
	if limit <= 0 {
		limit = constants.DefaultScanHistoryLimit
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	cutoff := time.Now().Add(-constants.ScanHistoryRetention)
	var history []*ScanTask
	for _, task := range q.tasks {
		if !task.Status.IsTerminal() || task.CompletedAt == nil || task.CompletedAt.Before(cutoff) {
			continue
		}
		history = append(history, task.Clone())
	}

	sort.Slice(history, func(i, j int) bool {
		return history[i].CompletedAt.After(*history[j].CompletedAt)
	})
	if len(history) > limit {
		history = history[:limit]
	}
	return history
}

// Cancel marks taskID Cancelled. Pending cancellation is immediate and
// final; Running cancellation is cooperative and observed by the worker
// at its next checkpoint. Terminal tasks return apperr.InvalidState.
func (q *Queue) Cancel(taskID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	task, ok := q.tasks[taskID]
	if !ok {
		return apperr.NotFound("scan_task")
	}

	switch task.Status {
	case StatusPending:
		task.Status = StatusCancelled
		now := time.Now()
		task.CompletedAt = &now
		q.removeFromPendingLocked(taskID)
		q.removeFromActiveLocked(task.LibraryID, taskID)
		return nil
	case StatusRunning:
		task.Status = StatusCancelled
		now := time.Now()
		task.CompletedAt = &now
		// Remove from Active immediately: a terminal task must never be
		// found there (invariant, spec §4.3), and leaving the stale
		// mapping in place until the worker's cooperative checkpoint would
		// make Submit() for this library return this already-terminal id
		// instead of enqueueing a fresh scan.
		q.removeFromActiveLocked(task.LibraryID, taskID)
		// The worker's context is cancelled immediately; the pipeline still
		// only actually stops at its next coarse checkpoint. runTask's own
		// completion bookkeeping re-checks task.Status == Cancelled and
		// skips re-adding it, so this does not race with a task the
		// worker is still physically executing.
		if q.runningCancel != nil {
			q.runningCancel()
		}
		return nil
	default:
		return apperr.InvalidState("scan task is already terminal")
	}
}

// Shutdown signals the worker to stop after its current task and waits up
// to constants.ShutdownTimeout. Leftover Pending tasks are discarded on
// process exit; this does not clear them itself.
func (q *Queue) Shutdown() {
	close(q.shutdown)
	select {
	case <-q.done:
	case <-time.After(constants.ShutdownTimeout):
		q.logger.Warn("scan_queue_shutdown_timed_out")
	}
}

func (q *Queue) removeFromPendingLocked(taskID string) {
	entry, ok := q.pendingByTask[taskID]
	if !ok {
		return
	}
	heap.Remove(&q.pending, entry.index)
	delete(q.pendingByTask, taskID)
}

func (q *Queue) removeFromActiveLocked(libraryID, taskID string) {
	if q.active[libraryID] == taskID {
		delete(q.active, libraryID)
	}
}
