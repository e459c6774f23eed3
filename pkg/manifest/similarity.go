package manifest

import "strings"

// containmentScore is the fixed score returned when one normalized name
// contains the other. It sits below 1.0 so a missing middle name still shows
// up as a fuzzy match, and above the 0.85 audit threshold at the call sites.
const containmentScore = 0.9

// Similarity scores how alike two passenger names are, in [0,1], where 1.0
// means identical after lower-casing and trimming. The containment shortcut
// is checked strictly before the edit distance and always wins, even when the
// edit distance would have scored higher.
func Similarity(a, b string) float64 {
	na := strings.ToLower(strings.TrimSpace(a))
	nb := strings.ToLower(strings.TrimSpace(b))

	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return containmentScore
	}

	// Distance and length are counted in runes so an accented character
	// costs one edit, not one per UTF-8 byte
	ra := []rune(na)
	rb := []rune(nb)
	distance := levenshtein(ra, rb)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// levenshtein computes the classic edit distance with unit costs for
// substitution, insertion and deletion, using the full DP table by rows.
func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j-1]+cost, prev[j]+1, curr[j-1]+1)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
