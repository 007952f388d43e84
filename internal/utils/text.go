package utils

import (
	"strings"
	"unicode"
)

// NormalizeLabel lowercases text and collapses runs of whitespace to a
// single space, trimming the ends. Classification and duplicate checks
// operate on normalized labels only.
func NormalizeLabel(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// LetterCount returns the number of letter runes in s.
func LetterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// LevenshteinDistance computes the edit distance between two strings.
// Operates on runes so multi-byte characters count as one edit.
func LevenshteinDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// TextSimilarity returns a normalized similarity in [0,1] between two
// strings after label normalization. 1 means identical, 0 means no
// character in common at the same scale.
func TextSimilarity(a, b string) float64 {
	na := NormalizeLabel(a)
	nb := NormalizeLabel(b)
	if na == nb {
		return 1.0
	}
	la := len([]rune(na))
	lb := len([]rune(nb))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := LevenshteinDistance(na, nb)
	return 1.0 - float64(dist)/float64(maxLen)
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
