// Copyright (c) 2026 Yomikata. All rights reserved.

package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestIsSafeEntryPath rejects zip-slip style entries: absolute paths and any
path carrying a ".." traversal segment.
*/
func TestIsSafeEntryPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want bool
	}{
		{"plain_entry", "page1.jpg", true},
		{"nested_entry", "ch01/page1.jpg", true},
		{"absolute_path", "/etc/passwd", false},
		{"parent_traversal", "../../etc/passwd", false},
		{"embedded_traversal", "ch01/../../../etc/passwd", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isSafeEntryPath(tt.path))
		})
	}
}

func writeTestZip(t *testing.T, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.cbz")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

/*
TestZipAccessor_ListPages_NaturalOrder verifies pages come back sorted
naturally and that non-image entries are excluded.
*/
func TestZipAccessor_ListPages_NaturalOrder(t *testing.T) {
	path := writeTestZip(t, map[string]string{
		"page10.jpg": "ten",
		"page2.jpg":  "two",
		"page1.jpg":  "one",
		"ComicInfo.xml": "<ComicInfo/>",
	})

	pages, err := (zipAccessor{}).ListPages(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"page1.jpg", "page2.jpg", "page10.jpg"}, pages)
}

/*
TestZipAccessor_Extract_RoundTrips checks that a resource id returned by
ListPages extracts the same bytes that were written.
*/
func TestZipAccessor_Extract_RoundTrips(t *testing.T) {
	path := writeTestZip(t, map[string]string{"page1.jpg": "hello"})

	data, err := (zipAccessor{}).Extract(path, "page1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

/*
TestZipAccessor_Extract_MissingEntry checks the not-found error path.
*/
func TestZipAccessor_Extract_MissingEntry(t *testing.T) {
	path := writeTestZip(t, map[string]string{"page1.jpg": "hello"})

	_, err := (zipAccessor{}).Extract(path, "page99.jpg")
	assert.Error(t, err)
}
