// Copyright (c) 2026 Yomikata. All rights reserved.

package watcher_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yomikata/ingest/internal/scanqueue"
	"github.com/yomikata/ingest/internal/watcher"
)

type recordingSubmitter struct {
	mu    sync.Mutex
	calls []string
}

func (s *recordingSubmitter) Submit(libraryID string, _ scanqueue.TaskPriority) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, libraryID)
	return "task-" + libraryID
}

func (s *recordingSubmitter) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestStart_ZeroPathsIsNoop verifies that starting a watch with no scan
paths succeeds without actually watching anything.
*/
func TestStart_ZeroPathsIsNoop(t *testing.T) {
	submitter := &recordingSubmitter{}
	w := watcher.New(submitter, testLogger())

	require.NoError(t, w.Start("lib-1", nil))
	assert.False(t, w.IsWatching("lib-1"))
}

/*
TestStart_IsIdempotent verifies that starting an already-watched library
is a no-op rather than creating a second fsnotify watcher.
*/
func TestStart_IsIdempotent(t *testing.T) {
	dir := t.TempDir()
	submitter := &recordingSubmitter{}
	w := watcher.New(submitter, testLogger())
	defer w.StopAll()

	require.NoError(t, w.Start("lib-1", []string{dir}))
	require.NoError(t, w.Start("lib-1", []string{dir}))
	assert.True(t, w.IsWatching("lib-1"))
}

/*
TestCreate_DebouncesBurstIntoOneSubmit verifies that a burst of file
creations within the debounce window collapses into exactly one submit.
*/
func TestCreate_DebouncesBurstIntoOneSubmit(t *testing.T) {
	dir := t.TempDir()
	submitter := &recordingSubmitter{}
	w := watcher.New(submitter, testLogger())
	defer w.StopAll()

	require.NoError(t, w.Start("lib-1", []string{dir}))

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "folder-"+string(rune('a'+i))), []byte("x"), 0o644))
	}

	require.Eventually(t, func() bool {
		return submitter.count() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	// Give any in-flight debounce window time to finish draining before
	// asserting the burst collapsed to a single submit.
	time.Sleep(750 * time.Millisecond)
	assert.Equal(t, 1, submitter.count())
}

/*
TestStop_StopsWatching verifies that Stop marks the library as no longer
watched and a subsequent Start succeeds again.
*/
func TestStop_StopsWatching(t *testing.T) {
	dir := t.TempDir()
	submitter := &recordingSubmitter{}
	w := watcher.New(submitter, testLogger())

	require.NoError(t, w.Start("lib-1", []string{dir}))
	w.Stop("lib-1")

	assert.False(t, w.IsWatching("lib-1"))
}

/*
TestRefresh_RestartsWatch verifies that Refresh leaves the library
watching after swapping its scan paths.
*/
func TestRefresh_RestartsWatch(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	submitter := &recordingSubmitter{}
	w := watcher.New(submitter, testLogger())
	defer w.StopAll()

	require.NoError(t, w.Start("lib-1", []string{dirA}))
	require.NoError(t, w.Refresh("lib-1", []string{dirB}))

	assert.True(t, w.IsWatching("lib-1"))
}
