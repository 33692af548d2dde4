// Copyright (c) 2026 Yomikata. All rights reserved.

package archive

import (
	"archive/zip"
	"io"
	"path"
	"strings"

	"github.com/yomikata/ingest/internal/platform/apperr"
)

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true, "bmp": true,
}

func isImageEntry(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	return imageExtensions[ext]
}

// zipAccessor backs the ZIP and CBZ archive kinds. Both are plain ZIP
// containers; CBZ is a naming convention, not a distinct format.
type zipAccessor struct{}

func (zipAccessor) open(archivePath string) (*zip.ReadCloser, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, apperr.ArchiveOpen(err)
	}
	return reader, nil
}

func (a zipAccessor) ListPages(archivePath string) ([]string, error) {
	reader, err := a.open(archivePath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var names []string
	for _, file := range reader.File {
		if file.FileInfo().IsDir() || !isImageEntry(file.Name) {
			continue
		}
		if !isSafeEntryPath(file.Name) {
			continue
		}
		names = append(names, file.Name)
	}
	SortStrings(names)
	return names, nil
}

func (a zipAccessor) Extract(archivePath, id string) ([]byte, error) {
	reader, err := a.open(archivePath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != id {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, apperr.ReadFailure(err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, apperr.ReadFailure(err)
		}
		return data, nil
	}
	return nil, apperr.EntryNotFound(id)
}

func (a zipAccessor) PageCount(archivePath string) (int, error) {
	pages, err := a.ListPages(archivePath)
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

// isSafeEntryPath rejects zip-slip style entries (absolute paths or any
// ".." path-traversal segment).
func isSafeEntryPath(name string) bool {
	if path.IsAbs(name) {
		return false
	}
	cleaned := path.Clean(name)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return false
	}
	return true
}
