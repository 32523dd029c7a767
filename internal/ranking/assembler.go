package ranking

import (
	"fmt"
	"sort"
)

// TieBreak decides the order of items with equal score
type TieBreak int

const (
	// TieBreakReverseScan puts the item scanned later first. This is what the
	// legacy insertion ranking produced and what existing clients observe.
	TieBreakReverseScan TieBreak = iota
	// TieBreakScanOrder keeps equal-score items in catalog order
	TieBreakScanOrder
)

// String returns the config spelling of the tie-break
func (t TieBreak) String() string {
	switch t {
	case TieBreakScanOrder:
		return "scan-order"
	default:
		return "reverse-scan"
	}
}

// ParseTieBreak parses "reverse-scan" or "scan-order"; empty means reverse-scan
func ParseTieBreak(s string) (TieBreak, error) {
	switch s {
	case "", "reverse-scan":
		return TieBreakReverseScan, nil
	case "scan-order":
		return TieBreakScanOrder, nil
	default:
		return TieBreakReverseScan, fmt.Errorf("unknown tie-break %q: %w", s, ErrInvalidInput)
	}
}

// ScoredItem pairs a catalog item with its score and scan position
type ScoredItem struct {
	Item      CatalogItem
	Score     int
	ScanIndex int
}

// Assemble orders scored items by descending score. Items with score 0 are dropped.
// The input is not modified.
func Assemble(scored []ScoredItem, tb TieBreak) []ScoredItem {
	out := make([]ScoredItem, 0, len(scored))
	for _, s := range scored {
		if s.Score > 0 {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if tb == TieBreakScanOrder {
			return out[i].ScanIndex < out[j].ScanIndex
		}
		return out[i].ScanIndex > out[j].ScanIndex
	})
	return out
}

// Ranker builds a ranking incrementally, one scored item at a time, in scan order.
// A new item is placed before the first entry whose score is not greater than its own,
// which is the legacy rule and yields the reverse-scan tie-break.
type Ranker struct {
	entries []ScoredItem
}

// Insert adds a scored item. Items with score 0 are ignored.
func (r *Ranker) Insert(s ScoredItem) {
	if s.Score <= 0 {
		return
	}
	// entries are sorted descending, so "score <= s.Score" is monotone
	pos := sort.Search(len(r.entries), func(i int) bool {
		return r.entries[i].Score <= s.Score
	})
	r.entries = append(r.entries, ScoredItem{})
	copy(r.entries[pos+1:], r.entries[pos:])
	r.entries[pos] = s
}

// Len returns the number of ranked entries
func (r *Ranker) Len() int {
	return len(r.entries)
}

// Entries returns the current ranking
func (r *Ranker) Entries() []ScoredItem {
	return append([]ScoredItem(nil), r.entries...)
}
