// Copyright (c) 2026 Yomikata. All rights reserved.

/*
Package library holds the persisted domain types the scan subsystem
reconciles against: Library, ScanPath, Content, and Chapter.

# Overview

A Library owns zero or more ScanPaths; each ScanPath, when scanned, owns
zero or more Contents (one per candidate folder); each Content owns the
Chapters found inside that folder. All four are cascade-deleted downward.
*/
package library

import "time"

// WatchMode toggles whether the filesystem watcher follows a library's
// scan paths.
type WatchMode bool

const (
	WatchOn  WatchMode = true
	WatchOff WatchMode = false
)

// Library is the top-level aggregate: a named collection of scan paths with
// its own schedule and watch setting.
type Library struct {
	ID                  string
	Name                string
	ScanIntervalMinutes int // 0 = scheduled scanning disabled.
	WatchMode           WatchMode
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ScanPath is an absolute filesystem root the scanner enumerates on behalf
// of its owning Library.
type ScanPath struct {
	ID        string
	LibraryID string
	Path      string
	CreatedAt time.Time
}

// Classification distinguishes page-based content (Comic) from text-based
// content (Novel).
type Classification string

const (
	ClassificationComic Classification = "comic"
	ClassificationNovel Classification = "novel"
)

// Content is one candidate folder reconciled into the library: a single
// comic volume, novel, or equivalent grouping of chapters.
type Content struct {
	ID             string
	LibraryID      string
	ScanPathID     string
	Classification Classification
	Title          string
	FolderPath     string
	ChapterCount   int
	Thumbnail      []byte // nil if no cover could be produced.
	Metadata       []byte // opaque JSON document from the metadata client, nil if unscraped.
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Chapter is a single archive file within a Content's folder.
type Chapter struct {
	ID            string
	ContentID     string
	Title         string
	FilePath      string
	SortOrder     int // dense permutation 0..N-1, natural order of basename.
	PageCount     *int
	FileSizeBytes int64
}
