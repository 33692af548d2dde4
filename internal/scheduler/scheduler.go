// Copyright (c) 2026 Yomikata. All rights reserved.

/*
Package scheduler fires a Normal-priority rescan for every library on its
own `scan_interval_minutes` period. Bindings are in-memory only: on
restart, [Scheduler.Restore] reconstructs them from the persisted
libraries list.
*/
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/yomikata/ingest/internal/scanqueue"
)

// Submitter is the subset of the scan queue the scheduler depends on.
type Submitter interface {
	Submit(libraryID string, priority scanqueue.TaskPriority) string
}

// LibraryBinding is a library's restorable scheduling configuration.
type LibraryBinding struct {
	ID                  string
	ScanIntervalMinutes int
}

// Binding describes one library's active timer, as returned by
// [Scheduler.ListScheduled].
type Binding struct {
	LibraryID string
	Minutes   int
	NextFire  time.Time
}

type binding struct {
	minutes  int
	timer    *time.Timer
	nextFire time.Time
}

// Scheduler owns one recurring timer per library with scheduled scanning
// enabled.
type Scheduler struct {
	submitter Submitter
	logger    *slog.Logger

	mu       sync.Mutex
	bindings map[string]*binding
}

// New constructs an empty Scheduler bound to submitter.
func New(submitter Submitter, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		submitter: submitter,
		logger:    logger,
		bindings:  make(map[string]*binding),
	}
}

// Schedule cancels any existing binding for libraryID and, if minutes > 0,
// registers a new recurring timer with period minutes*60s. The first fire
// happens at now+period; registering never fires immediately.
func (s *Scheduler) Schedule(libraryID string, minutes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(libraryID)

	if minutes <= 0 {
		return
	}

	period := time.Duration(minutes) * time.Minute
	b := &binding{minutes: minutes, nextFire: time.Now().Add(period)}
	b.timer = time.AfterFunc(period, func() { s.fire(libraryID) })
	s.bindings[libraryID] = b
}

// fire submits a rescan for libraryID, then reschedules itself for the
// next period. A submission failure is logged; the next tick still
// proceeds on schedule.
func (s *Scheduler) fire(libraryID string) {
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("scheduler_submit_panicked", slog.String("library_id", libraryID), slog.Any("recover", r))
			}
		}()
		s.submitter.Submit(libraryID, scanqueue.PriorityNormal)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bindings[libraryID]
	if !ok {
		// Cancelled or replaced between the timer firing and this
		// continuation acquiring the lock; do not resurrect it.
		return
	}

	period := time.Duration(b.minutes) * time.Minute
	b.nextFire = time.Now().Add(period)
	b.timer = time.AfterFunc(period, func() { s.fire(libraryID) })
}

// Cancel stops and drops the binding for libraryID, if present.
func (s *Scheduler) Cancel(libraryID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(libraryID)
}

func (s *Scheduler) cancelLocked(libraryID string) {
	b, ok := s.bindings[libraryID]
	if !ok {
		return
	}
	b.timer.Stop()
	delete(s.bindings, libraryID)
}

// Update is semantically equal to Schedule.
func (s *Scheduler) Update(libraryID string, minutes int) {
	s.Schedule(libraryID, minutes)
}

// NextFire returns the next scheduled fire time for libraryID, if bound.
func (s *Scheduler) NextFire(libraryID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bindings[libraryID]
	if !ok {
		return time.Time{}, false
	}
	return b.nextFire, true
}

// IsScheduled reports whether libraryID currently has an active binding.
func (s *Scheduler) IsScheduled(libraryID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.bindings[libraryID]
	return ok
}

// ListScheduled returns every active binding.
func (s *Scheduler) ListScheduled() []Binding {
	s.mu.Lock()
	defer s.mu.Unlock()

	bindings := make([]Binding, 0, len(s.bindings))
	for libraryID, b := range s.bindings {
		bindings = append(bindings, Binding{LibraryID: libraryID, Minutes: b.minutes, NextFire: b.nextFire})
	}
	return bindings
}

// Restore registers bindings for every library whose ScanIntervalMinutes
// is positive. Called once at process start.
func (s *Scheduler) Restore(libraries []LibraryBinding) {
	for _, lib := range libraries {
		if lib.ScanIntervalMinutes > 0 {
			s.Schedule(lib.ID, lib.ScanIntervalMinutes)
		}
	}
}

// CancelAll stops every binding. Called at shutdown.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for libraryID := range s.bindings {
		s.cancelLocked(libraryID)
	}
}
