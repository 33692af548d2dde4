// Copyright (c) 2026 Yomikata. All rights reserved.

package archive

import (
	"io"
	"os"
	"path/filepath"

	"github.com/nwaples/rardecode"

	"github.com/yomikata/ingest/internal/platform/apperr"
)

// rarAccessor backs the RAR and CBR archive kinds via streaming traversal.
// RAR has no random-access entry table the way ZIP does, so extracting a
// single named entry still means walking from the start of the archive.
type rarAccessor struct{}

func (rarAccessor) listEntries(archivePath string) ([]string, error) {
	reader, err := rardecode.OpenReader(archivePath, "")
	if err != nil {
		return nil, apperr.ArchiveOpen(err)
	}
	defer reader.Close()

	var names []string
	for {
		header, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperr.ReadFailure(err)
		}
		if header.IsDir || !isImageEntry(header.Name) {
			continue
		}
		if !isSafeEntryPath(header.Name) {
			continue
		}
		names = append(names, header.Name)
	}
	SortStrings(names)
	return names, nil
}

func (a rarAccessor) ListPages(archivePath string) ([]string, error) {
	return a.listEntries(archivePath)
}

// Extract streams the RAR archive into a scoped temp directory and returns
// the bytes of the matching entry. The temp directory is removed on every
// exit path, successful or not.
func (a rarAccessor) Extract(archivePath, id string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "yomikata-rar-*")
	if err != nil {
		return nil, apperr.ReadFailure(err)
	}
	defer os.RemoveAll(tmpDir)

	reader, err := rardecode.OpenReader(archivePath, "")
	if err != nil {
		return nil, apperr.ArchiveOpen(err)
	}
	defer reader.Close()

	for {
		header, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperr.ReadFailure(err)
		}
		if header.Name != id {
			continue
		}

		destPath := filepath.Join(tmpDir, filepath.Base(header.Name))
		out, err := os.Create(destPath)
		if err != nil {
			return nil, apperr.ReadFailure(err)
		}
		if _, err := io.Copy(out, reader); err != nil {
			out.Close()
			return nil, apperr.ReadFailure(err)
		}
		out.Close()

		data, err := os.ReadFile(destPath)
		if err != nil {
			return nil, apperr.ReadFailure(err)
		}
		return data, nil
	}
	return nil, apperr.EntryNotFound(id)
}

func (a rarAccessor) PageCount(archivePath string) (int, error) {
	pages, err := a.listEntries(archivePath)
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}
