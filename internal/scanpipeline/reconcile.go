// Copyright (c) 2026 Yomikata. All rights reserved.

package scanpipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/yomikata/ingest/internal/archive"
	"github.com/yomikata/ingest/internal/library"
)

// reconcileScanPath runs the removal pass then the addition pass for one
// scan path, returning the portion of the result it produced.
func (p *Pipeline) reconcileScanPath(ctx context.Context, lib *library.Library, scanPath *library.ScanPath) (Result, error) {
	info, err := os.Stat(scanPath.Path)
	if err != nil || !info.IsDir() {
		return Result{}, pathMissing(scanPath.Path)
	}

	candidates, err := candidateFolders(scanPath.Path)
	if err != nil {
		return Result{}, err
	}

	known, err := p.contents.ListFolderPathsByScanPath(ctx, scanPath.ID)
	if err != nil {
		return Result{}, err
	}

	var result Result

	removed, err := p.removalPass(ctx, lib.ID, known, candidates)
	if err != nil {
		return Result{}, err
	}
	result.Removed = removed

	knownSet := make(map[string]bool, len(known))
	for _, k := range known {
		knownSet[k] = true
	}

	for _, folderPath := range candidates {
		// Checkpoint: before/after each folder import.
		if ctx.Err() != nil {
			break
		}
		if knownSet[folderPath] {
			continue
		}

		content, reason, err := p.importFolder(ctx, lib, scanPath, folderPath)
		if err != nil {
			p.logger.Warn("folder_import_failed",
				slog.String("library_id", lib.ID),
				slog.String("folder_path", folderPath),
				slog.Any("error", err),
			)
			continue
		}

		result.Added = append(result.Added, content)
		if reason != "" {
			result.FailedScrape = append(result.FailedScrape, FailedScrape{Content: content, Reason: reason})
		}
	}

	return result, nil
}

// removalPass deletes every Content whose folder_path is no longer a
// candidate folder on disk, returning the deleted content ids.
func (p *Pipeline) removalPass(ctx context.Context, libraryID string, known, candidates []string) ([]string, error) {
	onDisk := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		onDisk[c] = true
	}

	var removedIDs []string
	for _, folderPath := range known {
		if onDisk[folderPath] {
			continue
		}

		content, err := p.contents.FindByFolderPath(ctx, libraryID, folderPath)
		if err != nil {
			p.logger.Warn("removal_lookup_failed",
				slog.String("library_id", libraryID), slog.String("folder_path", folderPath), slog.Any("error", err))
			continue
		}
		if err := p.contents.Delete(ctx, content.ID); err != nil {
			p.logger.Warn("removal_delete_failed",
				slog.String("library_id", libraryID), slog.String("content_id", content.ID), slog.Any("error", err))
			continue
		}
		removedIDs = append(removedIDs, content.ID)
	}

	return removedIDs, nil
}

// candidateFolders enumerates immediate subdirectories of root that
// contain at least one supported archive file, non-recursively, sorted
// by natural order of basename.
func candidateFolders(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, pathMissing(root)
	}

	var folders []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folderPath := filepath.Join(root, entry.Name())
		hasSupported, err := folderHasSupportedFile(folderPath)
		if err != nil {
			continue
		}
		if hasSupported {
			folders = append(folders, folderPath)
		}
	}

	slices.SortFunc(folders, func(a, b string) int {
		return archive.Compare(filepath.Base(a), filepath.Base(b))
	})

	return folders, nil
}

func folderHasSupportedFile(folderPath string) (bool, error) {
	entries, err := os.ReadDir(folderPath)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if !entry.IsDir() && archive.IsSupported(entry.Name()) {
			return true, nil
		}
	}
	return false, nil
}
