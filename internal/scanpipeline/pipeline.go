// Copyright (c) 2026 Yomikata. All rights reserved.

/*
Package scanpipeline reconciles the on-disk state of a library's scan
paths with the persisted Library/ScanPath/Content/Chapter graph. It is
invoked exactly once at a time, by the single scan-queue worker, so it
performs no internal locking of its own.
*/
package scanpipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/yomikata/ingest/internal/library"
	"github.com/yomikata/ingest/internal/platform/apperr"
	"github.com/yomikata/ingest/internal/scanqueue"
)

// MetadataScraper is the subset of the metadata client the pipeline
// depends on.
type MetadataScraper interface {
	AutoScrape(ctx context.Context, title string) (doc json.RawMessage, reason string)
}

// FailedScrape pairs a persisted Content with the reason its metadata
// enrichment did not succeed.
type FailedScrape struct {
	Content *library.Content
	Reason  string
}

// Result is the aggregate outcome of one pipeline invocation, across
// every ScanPath belonging to the library.
type Result struct {
	Added        []*library.Content
	Removed      []string
	FailedScrape []FailedScrape
}

// Pipeline implements [scanqueue.Runner] against the Persistence
// Interface and the metadata client.
type Pipeline struct {
	libraries library.LibraryRepository
	scanPaths library.ScanPathRepository
	contents  library.ContentRepository
	chapters  library.ChapterRepository
	metadata  MetadataScraper
	logger    *slog.Logger
}

// New constructs a Pipeline.
func New(
	libraries library.LibraryRepository,
	scanPaths library.ScanPathRepository,
	contents library.ContentRepository,
	chapters library.ChapterRepository,
	metadata MetadataScraper,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		libraries: libraries,
		scanPaths: scanPaths,
		contents:  contents,
		chapters:  chapters,
		metadata:  metadata,
		logger:    logger,
	}
}

// Run reconciles every ScanPath of libraryID and returns the aggregate
// result. It implements [scanqueue.Runner]; failing to resolve libraryID
// or to list its scan paths are the only errors that abort the whole
// invocation, since per-path and per-folder failures are caught and
// degrade to logging instead.
func (p *Pipeline) Run(ctx context.Context, libraryID string) (scanqueue.Result, error) {
	lib, err := p.libraries.FindByID(ctx, libraryID)
	if err != nil {
		return scanqueue.Result{}, err
	}

	paths, err := p.scanPaths.ListByLibrary(ctx, libraryID)
	if err != nil {
		return scanqueue.Result{}, err
	}

	var aggregate Result
	for _, scanPath := range paths {
		// Checkpoint: between scan-path iterations.
		if ctx.Err() != nil {
			break
		}

		pathResult, err := p.reconcileScanPath(ctx, lib, scanPath)
		if err != nil {
			p.logger.Warn("scan_path_failed",
				slog.String("library_id", libraryID),
				slog.String("scan_path_id", scanPath.ID),
				slog.Any("error", err),
			)
			continue
		}

		aggregate.Added = append(aggregate.Added, pathResult.Added...)
		aggregate.Removed = append(aggregate.Removed, pathResult.Removed...)
		aggregate.FailedScrape = append(aggregate.FailedScrape, pathResult.FailedScrape...)
	}

	return scanqueue.Result{
		Added:        len(aggregate.Added),
		Removed:      len(aggregate.Removed),
		FailedScrape: len(aggregate.FailedScrape),
	}, nil
}

// pathMissing wraps the scan path's absolute path into an apperr.PathMissing.
func pathMissing(path string) error {
	return apperr.PathMissing(path)
}
