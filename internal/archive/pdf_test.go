// Copyright (c) 2026 Yomikata. All rights reserved.

package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestParsePageIndex mirrors the virtual filename scheme: 1-based, zero-padded
to three digits, converted to a 0-based page index.
*/
func TestParsePageIndex(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		want      int
		wantError bool
	}{
		{"first_page", "page_001", 0, false},
		{"tenth_page", "page_010", 9, false},
		{"hundredth_page", "page_100", 99, false},
		{"missing_prefix", "invalid", 0, true},
		{"non_numeric_suffix", "page_abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePageIndex(tt.id)
			if tt.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestPageID checks pageID is the exact inverse of parsePageIndex.
*/
func TestPageID(t *testing.T) {
	assert.Equal(t, "page_001", pageID(0))
	assert.Equal(t, "page_100", pageID(99))

	index, err := parsePageIndex(pageID(42))
	require.NoError(t, err)
	assert.Equal(t, 42, index)
}
