// Copyright (c) 2026 Yomikata. All rights reserved.

package archive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yomikata/ingest/internal/archive"
)

/*
TestLess checks that digit runs compare numerically rather than lexically.
*/
func TestLess(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"single_digit_vs_double", "page2.jpg", "page10.jpg", true},
		{"double_vs_triple", "page10.jpg", "page100.jpg", true},
		{"equal_strings", "page5.jpg", "page5.jpg", false},
		{"text_prefix_tiebreak", "page10.jpg", "page10a.jpg", true},
		{"reverse_order", "page100.jpg", "page2.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, archive.Less(tt.a, tt.b))
		})
	}
}

/*
TestCompare checks the three-way comparator contract: antisymmetry and a
stable zero case for equal inputs.
*/
func TestCompare(t *testing.T) {
	assert.Equal(t, -1, archive.Compare("a1.jpg", "a2.jpg"))
	assert.Equal(t, 1, archive.Compare("a2.jpg", "a1.jpg"))
	assert.Equal(t, 0, archive.Compare("a1.jpg", "a1.jpg"))
}

/*
TestSortStrings verifies natural order holds across a full run of filenames,
not just pairwise.
*/
func TestSortStrings(t *testing.T) {
	items := []string{"page10.jpg", "page1.jpg", "page2.jpg", "page20.jpg", "page3.jpg"}
	archive.SortStrings(items)

	assert.Equal(t, []string{"page1.jpg", "page2.jpg", "page3.jpg", "page10.jpg", "page20.jpg"}, items)
}
