// Copyright (c) 2026 Yomikata. All rights reserved.

/*
Package archive implements the uniform archive-access layer that backs both
the scan pipeline and the (out-of-scope) page/text readers.

It presents one contract — list ordered inner resources and extract any
named resource as bytes — across ZIP, CBZ, RAR, CBR, EPUB, and PDF
containers, plus a format-aware thumbnail helper and the natural-order
comparator that is authoritative for both chapter and page sorting.

Architecture:

  - Accessor: the single entry point every caller uses; it dispatches to a
    format-specific reader keyed by lowercased file extension.
  - Resource ids are opaque strings that round-trip between ListPages and
    Extract; callers must never parse or construct them.
*/
package archive

import (
	"path/filepath"
	"strings"

	"github.com/yomikata/ingest/internal/platform/apperr"
)

// Family groups archive extensions by the content type they back.
type Family int

const (
	// FamilyComic covers page-image containers: ZIP, CBZ, CBR, RAR, PDF.
	FamilyComic Family = iota
	// FamilyNovel covers text containers: EPUB.
	FamilyNovel
)

var comicExtensions = map[string]bool{
	"zip": true, "cbz": true, "cbr": true, "rar": true, "pdf": true,
}

var novelExtensions = map[string]bool{
	"epub": true,
}

// Ext returns the lowercased extension of path, without the leading dot.
func Ext(path string) string {
	ext := filepath.Ext(path)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsSupported reports whether path's extension is a known archive format,
// comic or novel.
func IsSupported(path string) bool {
	ext := Ext(path)
	return comicExtensions[ext] || novelExtensions[ext]
}

// IsComicExtension reports whether ext (no leading dot, any case) belongs
// to the comic family.
func IsComicExtension(ext string) bool {
	return comicExtensions[strings.ToLower(ext)]
}

// IsNovelExtension reports whether ext (no leading dot, any case) belongs
// to the novel family.
func IsNovelExtension(ext string) bool {
	return novelExtensions[strings.ToLower(ext)]
}

// Accessor is the uniform contract implemented per archive format.
//
// Implementations must treat resource ids as opaque: they are produced by
// ListPages and must round-trip unchanged through Extract.
type Accessor interface {
	// ListPages returns the ordered list of resource ids in reading order.
	ListPages(path string) ([]string, error)
	// Extract returns the raw bytes of the named resource.
	Extract(path, id string) ([]byte, error)
	// PageCount returns len(ListPages(path)), but may be cheaper to compute
	// directly for some formats (e.g. PDF).
	PageCount(path string) (int, error)
}

// TextExtractor is implemented by formats that can resolve a resource id to
// plain text (currently EPUB only).
type TextExtractor interface {
	ExtractText(path, id string) (string, error)
}

// CoverExtractor is implemented by formats that can report an
// embedded-cover image distinct from the first reading-order resource.
type CoverExtractor interface {
	Cover(path string) ([]byte, bool, error)
}

// ForPath returns the Accessor responsible for path's extension, or
// apperr.UnsupportedFormat if none matches.
func ForPath(path string) (Accessor, error) {
	switch Ext(path) {
	case "zip", "cbz":
		return zipAccessor{}, nil
	case "rar", "cbr":
		return rarAccessor{}, nil
	case "epub":
		return epubAccessor{}, nil
	case "pdf":
		return pdfAccessor{}, nil
	default:
		return nil, apperr.UnsupportedFormat(Ext(path))
	}
}

// ListPages is a convenience wrapper around ForPath(path).ListPages(path).
func ListPages(path string) ([]string, error) {
	accessor, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	return accessor.ListPages(path)
}

// Extract is a convenience wrapper around ForPath(path).Extract(path, id).
func Extract(path, id string) ([]byte, error) {
	accessor, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	return accessor.Extract(path, id)
}

// PageCount is a convenience wrapper around ForPath(path).PageCount(path).
func PageCount(path string) (int, error) {
	accessor, err := ForPath(path)
	if err != nil {
		return 0, err
	}
	return accessor.PageCount(path)
}

// FirstPageBytes returns the bytes of the first reading-order resource,
// preferring an embedded cover when the format exposes one (EPUB).
func FirstPageBytes(path string) ([]byte, error) {
	accessor, err := ForPath(path)
	if err != nil {
		return nil, err
	}

	if coverAccessor, ok := accessor.(CoverExtractor); ok {
		if data, found, err := coverAccessor.Cover(path); err != nil {
			return nil, err
		} else if found {
			return data, nil
		}
	}

	pages, err := accessor.ListPages(path)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, apperr.EntryNotFound("page 0")
	}
	return accessor.Extract(path, pages[0])
}

// ExtractText resolves id to plain text. Only EPUB currently supports this;
// other formats return apperr.UnsupportedFormat.
func ExtractText(path, id string) (string, error) {
	accessor, err := ForPath(path)
	if err != nil {
		return "", err
	}
	textAccessor, ok := accessor.(TextExtractor)
	if !ok {
		return "", apperr.UnsupportedFormat(Ext(path) + " (text extraction)")
	}
	return textAccessor.ExtractText(path, id)
}
