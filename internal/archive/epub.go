// Copyright (c) 2026 Yomikata. All rights reserved.

package archive

import (
	"errors"
	"strings"

	"github.com/simp-lee/epub"

	"github.com/yomikata/ingest/internal/platform/apperr"
)

// epubAccessor backs the EPUB novel format. Resource ids are spine item ids
// (Chapter.ID), which round-trip through epub.Book.Chapters().
type epubAccessor struct{}

func (epubAccessor) open(archivePath string) (*epub.Book, error) {
	book, err := epub.Open(archivePath)
	if err != nil {
		return nil, apperr.ArchiveOpen(err)
	}
	return book, nil
}

func (a epubAccessor) ListPages(archivePath string) ([]string, error) {
	book, err := a.open(archivePath)
	if err != nil {
		return nil, err
	}
	defer book.Close()

	chapters := book.ContentChapters()
	ids := make([]string, 0, len(chapters))
	for _, ch := range chapters {
		ids = append(ids, ch.ID)
	}
	return ids, nil
}

func (a epubAccessor) findChapter(book *epub.Book, id string) (epub.Chapter, bool) {
	for _, ch := range book.Chapters() {
		if ch.ID == id {
			return ch, true
		}
	}
	return epub.Chapter{}, false
}

// Extract returns the chapter's plain-text content as bytes. Novel resources
// are text, not images; callers that need the raw XHTML should use
// ExtractText's sibling on a format that preserves markup instead.
func (a epubAccessor) Extract(archivePath, id string) ([]byte, error) {
	text, err := a.ExtractText(archivePath, id)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

// ExtractText resolves id to stripped, entity-decoded plain text. The HTML
// stripping is done here rather than via BodyHTML so the output matches the
// tag/entity handling novel readers expect: script and style bodies are
// dropped entirely, every other tag is removed, and the handful of entities
// that commonly appear in EPUB prose are decoded.
func (a epubAccessor) ExtractText(archivePath, id string) (string, error) {
	book, err := a.open(archivePath)
	if err != nil {
		return "", err
	}
	defer book.Close()

	chapter, ok := a.findChapter(book, id)
	if !ok {
		return "", apperr.EntryNotFound(id)
	}

	raw, err := chapter.RawContent()
	if err != nil {
		return "", apperr.ReadFailure(err)
	}

	return stripHTML(raw), nil
}

func (a epubAccessor) PageCount(archivePath string) (int, error) {
	pages, err := a.ListPages(archivePath)
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

// Cover returns the embedded cover image, if the EPUB declares one.
func (a epubAccessor) Cover(archivePath string) ([]byte, bool, error) {
	book, err := a.open(archivePath)
	if err != nil {
		return nil, false, err
	}
	defer book.Close()

	cover, err := book.Cover()
	if errors.Is(err, epub.ErrNoCover) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperr.ReadFailure(err)
	}
	return cover.Data, true, nil
}

// stripHTML removes tags (and script/style bodies) and decodes the handful
// of entities that show up in EPUB prose, leaving plain text with
// normalized line endings.
func stripHTML(html string) string {
	var out strings.Builder
	out.Grow(len(html))

	inTag := false
	inScript := false
	inStyle := false

	runes := []rune(html)
	for i := 0; i < len(runes); i++ {
		c := runes[i]

		switch c {
		case '<':
			inTag = true
			remaining := string(runes[i:min(i+10, len(runes))])
			lower := strings.ToLower(remaining)
			switch {
			case strings.HasPrefix(lower, "<script"):
				inScript = true
			case strings.HasPrefix(lower, "<style"):
				inStyle = true
			case strings.HasPrefix(lower, "</script"):
				inScript = false
			case strings.HasPrefix(lower, "</style"):
				inStyle = false
			}
		case '>':
			inTag = false
		default:
			if !inTag && !inScript && !inStyle {
				out.WriteRune(c)
			}
		}
	}

	decoded := out.String()
	decoded = strings.ReplaceAll(decoded, "&nbsp;", " ")
	decoded = strings.ReplaceAll(decoded, "&amp;", "&")
	decoded = strings.ReplaceAll(decoded, "&lt;", "<")
	decoded = strings.ReplaceAll(decoded, "&gt;", ">")
	decoded = strings.ReplaceAll(decoded, "&quot;", "\"")
	decoded = strings.ReplaceAll(decoded, "&#39;", "'")
	decoded = strings.ReplaceAll(decoded, "&apos;", "'")

	decoded = strings.ReplaceAll(decoded, "\r\n", "\n")
	decoded = strings.ReplaceAll(decoded, "\r", "\n")
	return strings.TrimSpace(decoded)
}
