package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{"identical", "Blue", "Blue", 100},
		{"case insensitive", "ABBA", "abba", 100},
		{"both empty", "", "", 0},
		{"one empty", "abc", "", 0},
		{"disjoint", "abc", "xyz", 0},
		{"prefix", "Blue", "Blues", 80},
		{"one substitution", "Abba", "Abby", 75},
		{"transposition shifts positions", "abc", "bac", 100.0 / 3},
		{"insertion shifts positions", "abc", "xabc", 0},
		{"unicode runes", "Café", "CAFÉ", 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Similarity(tc.a, tc.b), 1e-9)
			assert.InDelta(t, tc.expected, Similarity(tc.b, tc.a), 1e-9, "similarity should be symmetric")
		})
	}
}

func TestSimilarityIdentityIsFull(t *testing.T) {
	for _, s := range []string{"a", "Moon", "K-Pop", "Daft Punk", "über"} {
		assert.Equal(t, 100.0, Similarity(s, s), "Similarity(%q, %q)", s, s)
	}
}

func TestIsMatch(t *testing.T) {
	tests := []struct {
		a, b     string
		expected bool
	}{
		{"Blue", "blue", true},
		{"ab", "abc", true},   // 66.7
		{"ab", "abcd", false}, // exactly 50 is not a match
		{"rock", "pop", false},
		{"", "", false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, IsMatch(tc.a, tc.b), "IsMatch(%q, %q)", tc.a, tc.b)
	}
}
