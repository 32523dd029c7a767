package ranking

import "unicode"

// MatchThreshold is the similarity a token pair must exceed to count as a match
const MatchThreshold = 50.0

// Similarity returns the positional character-match percentage of a and b in [0,100].
// Characters at the same rune index are compared case-insensitively and the match count
// is divided by the longer length, so an insertion shifts every later position.
// Two empty strings have similarity 0.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	minLen, maxLen := len(ra), len(rb)
	if minLen > maxLen {
		minLen, maxLen = maxLen, minLen
	}
	if maxLen == 0 {
		return 0
	}

	matches := 0
	for i := 0; i < minLen; i++ {
		if unicode.ToLower(ra[i]) == unicode.ToLower(rb[i]) {
			matches++
		}
	}
	return float64(matches) / float64(maxLen) * 100
}

// IsMatch reports whether two tokens are similar enough to score
func IsMatch(a, b string) bool {
	return Similarity(a, b) > MatchThreshold
}

// countMatches counts the tokens in candidates that match token
func countMatches(token string, candidates []string) int {
	n := 0
	for _, c := range candidates {
		if IsMatch(token, c) {
			n++
		}
	}
	return n
}
