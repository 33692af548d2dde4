// Copyright (c) 2026 Yomikata. All rights reserved.

package scanqueue_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yomikata/ingest/internal/scanqueue"
)

// blockingRunner blocks Run until release is closed, recording every
// libraryID it was invoked with and whether its context was cancelled.
type blockingRunner struct {
	mu        sync.Mutex
	release   chan struct{}
	invoked   []string
	cancelled bool
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{release: make(chan struct{})}
}

func (r *blockingRunner) Run(ctx context.Context, libraryID string) (scanqueue.Result, error) {
	r.mu.Lock()
	r.invoked = append(r.invoked, libraryID)
	r.mu.Unlock()

	select {
	case <-r.release:
	case <-ctx.Done():
		r.mu.Lock()
		r.cancelled = true
		r.mu.Unlock()
		return scanqueue.Result{}, ctx.Err()
	}
	return scanqueue.Result{Added: 1}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestSubmit_DedupesActiveLibrary verifies that a second Submit for a library
already active returns the same task id rather than creating a new task.
*/
func TestSubmit_DedupesActiveLibrary(t *testing.T) {
	runner := newBlockingRunner()
	defer close(runner.release)
	q := scanqueue.New(runner, testLogger())
	q.Start()
	defer q.Shutdown()

	first := q.Submit("lib-1", scanqueue.PriorityNormal)
	second := q.Submit("lib-1", scanqueue.PriorityNormal)

	assert.Equal(t, first, second)
}

/*
TestSubmit_UpgradesPendingPriority verifies that submitting a High-priority
request for a library with a still-Pending Normal task upgrades it in
place instead of creating a second task.
*/
func TestSubmit_UpgradesPendingPriority(t *testing.T) {
	runner := newBlockingRunner()
	defer close(runner.release)
	q := scanqueue.New(runner, testLogger())
	// Worker not started: both submissions stay Pending.

	q.Submit("lib-1", scanqueue.PriorityNormal)
	taskID := q.Submit("lib-2", scanqueue.PriorityNormal)
	upgraded := q.Submit("lib-2", scanqueue.PriorityHigh)

	require.Equal(t, taskID, upgraded)
	task := q.Get(taskID)
	require.NotNil(t, task)
	assert.Equal(t, scanqueue.PriorityHigh, task.Priority)
}

/*
TestListPending_OrdersByPriorityThenAge verifies the (priority desc,
created_at asc) ordering independent of submission order.
*/
func TestListPending_OrdersByPriorityThenAge(t *testing.T) {
	runner := newBlockingRunner()
	defer close(runner.release)
	q := scanqueue.New(runner, testLogger())

	normalFirst := q.Submit("lib-1", scanqueue.PriorityNormal)
	normalSecond := q.Submit("lib-2", scanqueue.PriorityNormal)
	high := q.Submit("lib-3", scanqueue.PriorityHigh)

	pending := q.ListPending()
	require.Len(t, pending, 3)
	assert.Equal(t, high, pending[0].ID)
	assert.Equal(t, normalFirst, pending[1].ID)
	assert.Equal(t, normalSecond, pending[2].ID)
}

/*
TestCancel_Pending verifies that cancelling a Pending task removes it from
the pending set immediately and marks it terminal.
*/
func TestCancel_Pending(t *testing.T) {
	runner := newBlockingRunner()
	defer close(runner.release)
	q := scanqueue.New(runner, testLogger())

	taskID := q.Submit("lib-1", scanqueue.PriorityNormal)
	require.NoError(t, q.Cancel(taskID))

	task := q.Get(taskID)
	require.NotNil(t, task)
	assert.Equal(t, scanqueue.StatusCancelled, task.Status)
	assert.Empty(t, q.ListPending())
}

/*
TestCancel_Terminal verifies that cancelling an already-terminal task
returns InvalidState rather than succeeding.
*/
func TestCancel_Terminal(t *testing.T) {
	runner := newBlockingRunner()
	defer close(runner.release)
	q := scanqueue.New(runner, testLogger())

	taskID := q.Submit("lib-1", scanqueue.PriorityNormal)
	require.NoError(t, q.Cancel(taskID))

	err := q.Cancel(taskID)
	require.Error(t, err)
}

/*
TestCancel_Running verifies that cancelling a Running task cancels its
context so a cooperating runner observes it and stops.
*/
func TestCancel_Running(t *testing.T) {
	runner := newBlockingRunner()
	q := scanqueue.New(runner, testLogger())
	q.Start()
	defer q.Shutdown()

	taskID := q.Submit("lib-1", scanqueue.PriorityNormal)

	require.Eventually(t, func() bool {
		task := q.Get(taskID)
		return task != nil && task.Status == scanqueue.StatusRunning
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, q.Cancel(taskID))

	require.Eventually(t, func() bool {
		runner.mu.Lock()
		defer runner.mu.Unlock()
		return runner.cancelled
	}, time.Second, 5*time.Millisecond)
}

/*
TestSubmit_AfterCancellingRunningTaskCreatesNewTask verifies that
cancelling a Running task frees its library for a fresh Submit right
away, rather than returning the stale, already-terminal task id until the
worker notices the cancellation at its next checkpoint.
*/
func TestSubmit_AfterCancellingRunningTaskCreatesNewTask(t *testing.T) {
	runner := newBlockingRunner()
	q := scanqueue.New(runner, testLogger())
	q.Start()
	defer q.Shutdown()

	first := q.Submit("lib-1", scanqueue.PriorityNormal)

	require.Eventually(t, func() bool {
		task := q.Get(first)
		return task != nil && task.Status == scanqueue.StatusRunning
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, q.Cancel(first))
	assert.Equal(t, scanqueue.StatusCancelled, q.Get(first).Status)

	second := q.Submit("lib-1", scanqueue.PriorityNormal)
	assert.NotEqual(t, first, second)
	assert.Equal(t, scanqueue.StatusPending, q.Get(second).Status)

	close(runner.release)
}

/*
TestWorker_ProcessesOneLibraryAtATime verifies that a second library's task
only becomes Running once the first has completed, even though both were
submitted before the worker started.
*/
func TestWorker_ProcessesOneLibraryAtATime(t *testing.T) {
	runner := newBlockingRunner()
	q := scanqueue.New(runner, testLogger())

	first := q.Submit("lib-1", scanqueue.PriorityNormal)
	second := q.Submit("lib-2", scanqueue.PriorityNormal)
	q.Start()
	defer q.Shutdown()

	require.Eventually(t, func() bool {
		task := q.Get(first)
		return task != nil && task.Status == scanqueue.StatusRunning
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, scanqueue.StatusPending, q.Get(second).Status)

	runner.release <- struct{}{}

	require.Eventually(t, func() bool {
		task := q.Get(first)
		return task != nil && task.Status == scanqueue.StatusCompleted
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		task := q.Get(second)
		return task != nil && task.Status == scanqueue.StatusRunning
	}, time.Second, 5*time.Millisecond)

	close(runner.release)
}

/*
TestShutdown_LeavesRemainingPendingTasksPending verifies that Shutdown
stops the worker after its current task rather than draining the rest of
the backlog: a second Pending task must not be popped and run.
*/
func TestShutdown_LeavesRemainingPendingTasksPending(t *testing.T) {
	runner := newBlockingRunner()
	q := scanqueue.New(runner, testLogger())

	first := q.Submit("lib-1", scanqueue.PriorityNormal)
	second := q.Submit("lib-2", scanqueue.PriorityNormal)
	q.Start()

	require.Eventually(t, func() bool {
		task := q.Get(first)
		return task != nil && task.Status == scanqueue.StatusRunning
	}, time.Second, 5*time.Millisecond)

	shutdownDone := make(chan struct{})
	go func() {
		q.Shutdown()
		close(shutdownDone)
	}()

	runner.release <- struct{}{}
	<-shutdownDone

	assert.Equal(t, scanqueue.StatusCompleted, q.Get(first).Status)
	assert.Equal(t, scanqueue.StatusPending, q.Get(second).Status)
}
