// Copyright (c) 2026 Yomikata. All rights reserved.

package scanqueue

import (
	"container/heap"
	"context"
	"log/slog"
	"time"
)

// workerLoop is the queue's single worker: it waits for a signal or
// shutdown, pops the highest-priority Pending entry, and runs it to
// completion before looping. Exactly one goroutine ever runs this.
func (q *Queue) workerLoop() {
	defer close(q.done)

	for {
		select {
		case <-q.shutdown:
			return
		case <-q.signal:
		}

		for {
			select {
			case <-q.shutdown:
				return
			default:
			}

			task := q.popNextLocked()
			if task == nil {
				break
			}
			q.runTask(task)
		}
	}
}

// popNextLocked pops the highest-priority Pending entry and transitions
// its task to Running, skipping entries whose task was cancelled while
// still Pending. It returns nil once Pending is empty.
func (q *Queue) popNextLocked() *ScanTask {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.pending.Len() > 0 {
		entry := heap.Pop(&q.pending).(*queuedEntry)
		delete(q.pendingByTask, entry.taskID)

		task := q.tasks[entry.taskID]
		if task == nil || task.Status != StatusPending {
			continue
		}

		now := time.Now()
		task.Status = StatusRunning
		task.StartedAt = &now
		return task
	}
	return nil
}

// runTask invokes the runner for task, observing cooperative cancellation
// via a context tied to [Queue.Cancel], and records the terminal outcome.
func (q *Queue) runTask(task *ScanTask) {
	ctx, cancel := context.WithCancel(context.Background())

	q.mu.Lock()
	q.runningCancel = cancel
	q.mu.Unlock()

	result, err := q.runner.Run(ctx, task.LibraryID)
	cancel()

	q.mu.Lock()
	defer q.mu.Unlock()
	q.runningCancel = nil

	// A concurrent Cancel() already marked the task terminal; keep that
	// outcome rather than overwriting it with whatever the runner returned.
	if task.Status == StatusCancelled {
		q.removeFromActiveLocked(task.LibraryID, task.ID)
		return
	}

	now := time.Now()
	task.CompletedAt = &now
	if err != nil {
		task.Status = StatusFailed
		task.Error = err.Error()
		q.logger.Error("scan_task_failed",
			slog.String("task_id", task.ID),
			slog.String("library_id", task.LibraryID),
			slog.Any("error", err),
		)
	} else {
		task.Status = StatusCompleted
		task.Result = &result
		q.logger.Info("scan_task_completed",
			slog.String("task_id", task.ID),
			slog.String("library_id", task.LibraryID),
			slog.Int("added", result.Added),
			slog.Int("removed", result.Removed),
		)
	}

	q.removeFromActiveLocked(task.LibraryID, task.ID)
}
