// Copyright (c) 2026 Yomikata. All rights reserved.

package archive

import (
	"sort"
	"strings"

	"github.com/facette/natsort"
)

// Less reports whether a sorts strictly before b under natural order:
// embedded digit runs compare as integers, text runs compare
// case-insensitively, and the resulting sequence compares lexicographically.
// "page2.jpg" < "page10.jpg" < "page10a.jpg".
func Less(a, b string) bool {
	lowerA, lowerB := strings.ToLower(a), strings.ToLower(b)
	if lowerA == lowerB {
		return false
	}
	return natsort.Compare(lowerA, lowerB)
}

// Compare is the three-way form of Less, satisfying the usual comparator
// contract: Compare(a, b) < 0 iff Compare(b, a) > 0.
func Compare(a, b string) int {
	switch {
	case Less(a, b):
		return -1
	case Less(b, a):
		return 1
	default:
		return 0
	}
}

// SortStrings sorts items in place by natural order.
func SortStrings(items []string) {
	sort.Slice(items, func(i, j int) bool { return Less(items[i], items[j]) })
}
