// Copyright (c) 2026 Yomikata. All rights reserved.

package scanpipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/yomikata/ingest/internal/archive"
	"github.com/yomikata/ingest/internal/library"
	"github.com/yomikata/ingest/internal/platform/apperr"
)

// classifyComicExtensions is the comic family used by the folder-classify
// step: zip, cbz, cbr, rar (spec.md §4.2). This is deliberately narrower
// than archive.IsComicExtension, which also accepts pdf for the
// archive-access layer (§4.1) — pdf is never counted toward a folder's
// comic/novel family decision.
var classifyComicExtensions = map[string]bool{
	"zip": true, "cbz": true, "cbr": true, "rar": true,
}

func isClassifyComicExtension(ext string) bool {
	return classifyComicExtensions[strings.ToLower(ext)]
}

// classifyFolder counts the comic-family and novel-family files directly
// inside folderPath and resolves the folder's Classification. A folder
// with neither family present is EmptyFolder, reported as an error since
// it yields no Content to persist.
func classifyFolder(folderPath string) (library.Classification, error) {
	entries, err := os.ReadDir(folderPath)
	if err != nil {
		return "", err
	}

	var comicCount, novelCount int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := archive.Ext(entry.Name())
		switch {
		case isClassifyComicExtension(ext):
			comicCount++
		case archive.IsNovelExtension(ext):
			novelCount++
		}
	}

	switch {
	case comicCount >= novelCount && comicCount > 0:
		return library.ClassificationComic, nil
	case novelCount > 0:
		return library.ClassificationNovel, nil
	default:
		return "", apperr.EmptyFolder(folderPath)
	}
}

// chapterFiles lists the supported archive files directly inside
// folderPath matching classification's family, in natural order of
// basename.
func chapterFiles(folderPath string, classification library.Classification) ([]string, error) {
	entries, err := os.ReadDir(folderPath)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := archive.Ext(entry.Name())
		belongs := (classification == library.ClassificationComic && isClassifyComicExtension(ext)) ||
			(classification == library.ClassificationNovel && archive.IsNovelExtension(ext))
		if belongs {
			names = append(names, entry.Name())
		}
	}

	archive.SortStrings(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(folderPath, name)
	}
	return paths, nil
}
