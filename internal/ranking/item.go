// Package ranking scores a catalog snapshot against a free-text query or a
// listener's recent history and assembles the ordered result.
//
// Everything in this package is request-scoped and side-effect free: it never
// touches the database and never mutates the snapshot it is given.
package ranking

import (
	"errors"
	"strings"
)

// ErrInvalidInput is returned when the caller breaks the contract, e.g. passes a nil snapshot.
var ErrInvalidInput = errors.New("invalid ranking input")

// CatalogItem is one song as seen by the ranking engine
type CatalogItem struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Artist    string   `json:"artist"`
	Genre     []string `json:"genre"`
	LikeCount int      `json:"likes"`
}

// Snapshot is an immutable view of the catalog for the duration of one request.
// Items are in scan order; ties are resolved against this order.
type Snapshot struct {
	Items []CatalogItem
}

// NewSnapshot copies items into a fresh snapshot so later writes by the caller
// are not observed by an in-flight ranking.
func NewSnapshot(items []CatalogItem) *Snapshot {
	copied := make([]CatalogItem, len(items))
	for i, item := range items {
		item.Genre = append([]string(nil), item.Genre...)
		copied[i] = item
	}
	return &Snapshot{Items: copied}
}

// Len returns the number of catalog items
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Items)
}

// index maps item id to its first scan position
func (s *Snapshot) index() map[string]int {
	idx := make(map[string]int, len(s.Items))
	for i, item := range s.Items {
		if _, ok := idx[item.ID]; !ok {
			idx[item.ID] = i
		}
	}
	return idx
}

// tokenize splits a field on whitespace. strings.Fields never yields empty tokens.
func tokenize(field string) []string {
	return strings.Fields(field)
}

// genreTokens flattens an item's genre list into whitespace tokens.
// A nil genre list is an empty token set.
func genreTokens(genres []string) []string {
	var tokens []string
	for _, g := range genres {
		tokens = append(tokens, tokenize(g)...)
	}
	return tokens
}
