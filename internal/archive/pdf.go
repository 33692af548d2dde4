// Copyright (c) 2026 Yomikata. All rights reserved.

package archive

import (
	"bytes"
	"fmt"
	"image/png"
	"strconv"
	"strings"

	fitz "github.com/gen2brain/go-fitz"

	"github.com/yomikata/ingest/internal/platform/apperr"
	"github.com/yomikata/ingest/internal/platform/constants"
)

// pdfAccessor backs the PDF comic format. PDF has no inner filenames, so
// pages are addressed by a synthetic "page_NNN" id (1-based, zero-padded to
// three digits) that parsePageIndex converts back to a 0-based page number.
type pdfAccessor struct{}

func pageID(index int) string {
	return fmt.Sprintf("page_%03d", index+1)
}

func parsePageIndex(id string) (int, error) {
	numStr, ok := strings.CutPrefix(id, "page_")
	if !ok {
		return 0, apperr.EntryNotFound(id)
	}
	pageNum, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, apperr.EntryNotFound(id)
	}
	return pageNum - 1, nil
}

func (pdfAccessor) open(archivePath string) (*fitz.Document, error) {
	doc, err := fitz.New(archivePath)
	if err != nil {
		return nil, apperr.ArchiveOpen(err)
	}
	return doc, nil
}

func (a pdfAccessor) ListPages(archivePath string) ([]string, error) {
	doc, err := a.open(archivePath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	count := doc.NumPage()
	ids := make([]string, count)
	for i := 0; i < count; i++ {
		ids[i] = pageID(i)
	}
	return ids, nil
}

// Extract renders the page named by id at constants.PDFRenderScale and
// returns it PNG-encoded.
func (a pdfAccessor) Extract(archivePath, id string) ([]byte, error) {
	pageIndex, err := parsePageIndex(id)
	if err != nil {
		return nil, err
	}

	doc, err := a.open(archivePath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if pageIndex < 0 || pageIndex >= doc.NumPage() {
		return nil, apperr.EntryNotFound(id)
	}

	img, err := doc.ImageDPI(pageIndex, 72*constants.PDFRenderScale)
	if err != nil {
		return nil, apperr.ReadFailure(err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, apperr.ReadFailure(err)
	}
	return buf.Bytes(), nil
}

func (a pdfAccessor) PageCount(archivePath string) (int, error) {
	doc, err := a.open(archivePath)
	if err != nil {
		return 0, err
	}
	defer doc.Close()
	return doc.NumPage(), nil
}
