// Copyright (c) 2026 Yomikata. All rights reserved.

package scanpipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yomikata/ingest/internal/archive"
	"github.com/yomikata/ingest/internal/library"
	"github.com/yomikata/ingest/internal/platform/apperr"
	"github.com/yomikata/ingest/pkg/uuidv7"
)

var coverFileNames = []string{"cover.jpg", "cover.jpeg", "cover.png", "cover.webp"}

// importFolder classifies folderPath, persists its Content and Chapters,
// and best-effort resolves a thumbnail and metadata document. The second
// return value is the metadata scrape's failure reason, empty on success.
func (p *Pipeline) importFolder(ctx context.Context, lib *library.Library, scanPath *library.ScanPath, folderPath string) (*library.Content, string, error) {
	classification, err := classifyFolder(folderPath)
	if err != nil {
		return nil, "", err
	}

	files, err := chapterFiles(folderPath, classification)
	if err != nil {
		return nil, "", err
	}
	if len(files) == 0 {
		return nil, "", apperr.EmptyFolder(folderPath)
	}

	title := filepath.Base(folderPath)
	now := time.Now()

	content := &library.Content{
		ID:             uuidv7.New(),
		LibraryID:      lib.ID,
		ScanPathID:     scanPath.ID,
		Classification: classification,
		Title:          title,
		FolderPath:     folderPath,
		ChapterCount:   len(files),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	chapters := make([]*library.Chapter, len(files))
	for i, filePath := range files {
		info, err := os.Stat(filePath)
		var size int64
		if err == nil {
			size = info.Size()
		}
		chapters[i] = &library.Chapter{
			ID:            uuidv7.New(),
			ContentID:     content.ID,
			Title:         strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath)),
			FilePath:      filePath,
			SortOrder:     i,
			FileSizeBytes: size,
		}
	}

	if err := p.contents.Create(ctx, content); err != nil {
		return nil, "", err
	}
	if err := p.chapters.CreateBatch(ctx, chapters); err != nil {
		return nil, "", err
	}

	if thumb := p.resolveThumbnail(folderPath, classification, files[0]); thumb != nil {
		content.Thumbnail = thumb
		if err := p.contents.UpdateThumbnail(ctx, content.ID, thumb); err != nil {
			p.logger.Warn("thumbnail_persist_failed",
				slog.String("content_id", content.ID), slog.Any("error", err))
		}
	}

	doc, reason := p.metadata.AutoScrape(ctx, title)
	if reason == "" {
		content.Metadata = doc
		if err := p.contents.UpdateMetadata(ctx, content.ID, doc); err != nil {
			p.logger.Warn("metadata_persist_failed",
				slog.String("content_id", content.ID), slog.Any("error", err))
		}
	}

	return content, reason, nil
}

// resolveThumbnail prefers a sibling cover image file for novels, falling
// back in both families to the first page/cover of the first chapter.
func (p *Pipeline) resolveThumbnail(folderPath string, classification library.Classification, firstChapterPath string) []byte {
	if classification == library.ClassificationNovel {
		if data := readSiblingCover(folderPath); data != nil {
			if thumb, err := archive.Thumbnail(data); err == nil {
				return thumb
			}
		}
	}

	data, err := archive.FirstPageBytes(firstChapterPath)
	if err != nil {
		p.logger.Warn("thumbnail_source_failed",
			slog.String("folder_path", folderPath), slog.Any("error", err))
		return nil
	}

	thumb, err := archive.Thumbnail(data)
	if err != nil {
		p.logger.Warn("thumbnail_encode_failed",
			slog.String("folder_path", folderPath), slog.Any("error", err))
		return nil
	}
	return thumb
}

func readSiblingCover(folderPath string) []byte {
	for _, name := range coverFileNames {
		data, err := os.ReadFile(filepath.Join(folderPath, name))
		if err == nil {
			return data
		}
	}
	return nil
}
