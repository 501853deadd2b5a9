// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package similarity decides whether two paper titles denote the same work.
package similarity

import (
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// DuplicateThreshold is the minimum title similarity for two records to be
// treated as the same work. At 0.9, whitespace and punctuation variants of
// a title still match while genuinely distinct titles do not. Lowering it
// merges unrelated papers; raising it lets near-identical listings from
// different sources through as duplicates.
const DuplicateThreshold = 0.9

// Ratio returns a case-insensitive similarity between a and b in [0,1].
// It is 1 - editDistance/maxLen over the lowercased strings, so identical
// strings score 1 and the measure is symmetric.
func Ratio(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))

	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1
	}

	dist := levenshtein(ra, rb)
	return 1 - float64(dist)/float64(maxLen)
}

// IsDuplicate reports whether title matches any existing record's title at
// or above DuplicateThreshold. An empty existing set never matches.
func IsDuplicate(title string, existing []types.Record) bool {
	for _, r := range existing {
		if Ratio(title, r.Title) >= DuplicateThreshold {
			return true
		}
	}
	return false
}

// levenshtein computes the edit distance between two rune slices using the
// two-row form, O(min(m,n)) space.
func levenshtein(s1, s2 []rune) int {
	// Keep s1 the shorter one so the rows stay small.
	if len(s1) > len(s2) {
		s1, s2 = s2, s1
	}

	m, n := len(s1), len(s2)
	if m == 0 {
		return n
	}

	prev := make([]int, m+1)
	curr := make([]int, m+1)

	for i := 0; i <= m; i++ {
		prev[i] = i
	}

	for j := 1; j <= n; j++ {
		curr[0] = j
		for i := 1; i <= m; i++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[i] = min(min(prev[i]+1, curr[i-1]+1), prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[m]
}
