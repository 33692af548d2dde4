// Copyright (c) 2026 Yomikata. All rights reserved.

package library

import "context"

// LibraryRepository defines the data access contract for Library aggregates.
//
// The Postgres implementations live in store_postgres.go — this interface lives
// in the domain package because the scan subsystem (the consumer) defines
// what it needs.
type LibraryRepository interface {
	List(ctx context.Context) ([]*Library, error)
	FindByID(ctx context.Context, id string) (*Library, error)
	Create(ctx context.Context, l *Library) error
	Update(ctx context.Context, l *Library) error

	// Delete removes the library and cascades to its ScanPaths and Contents.
	Delete(ctx context.Context, id string) error
}

// ScanPathRepository defines the data access contract for ScanPath rows.
type ScanPathRepository interface {
	ListByLibrary(ctx context.Context, libraryID string) ([]*ScanPath, error)
	FindByID(ctx context.Context, id string) (*ScanPath, error)
	Create(ctx context.Context, p *ScanPath) error

	// Delete removes the scan path and cascades to every Content imported
	// through it.
	Delete(ctx context.Context, id string) error
}

// ContentRepository defines the data access contract for Content rows and
// their owned Chapters.
//
// # Scan Pipeline Support
//
// ListFolderPathsByScanPath backs the removal pass: the pipeline diffs
// this set against what it finds on disk. UpdateThumbnail,
// UpdateMetadata, and UpdateChapterCount are narrow, single-column writes
// so a rescan does not have to re-supply the entire Content to touch one
// derived field.
type ContentRepository interface {
	FindByID(ctx context.Context, id string) (*Content, error)
	FindByFolderPath(ctx context.Context, libraryID, folderPath string) (*Content, error)
	ListByScanPath(ctx context.Context, scanPathID string) ([]*Content, error)

	// ListFolderPathsByScanPath returns the folder_path of every Content
	// currently associated with scanPathID.
	ListFolderPathsByScanPath(ctx context.Context, scanPathID string) ([]string, error)

	Create(ctx context.Context, c *Content) error

	// Delete removes the content and cascades to its Chapters.
	Delete(ctx context.Context, id string) error

	UpdateThumbnail(ctx context.Context, contentID string, thumbnail []byte) error
	UpdateMetadata(ctx context.Context, contentID string, metadata []byte) error
	UpdateChapterCount(ctx context.Context, contentID string, count int) error
}

// ChapterRepository defines the data access contract for Chapter rows.
type ChapterRepository interface {
	ListByContent(ctx context.Context, contentID string) ([]*Chapter, error)

	// CreateBatch persists chapters keyed by content id, replacing any
	// existing chapters for the same content ids in the batch.
	CreateBatch(ctx context.Context, chapters []*Chapter) error
}
