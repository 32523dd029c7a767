package ranking

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Recommendation weights
const (
	RecentBonus = 10 // item is one of the listener's recently played songs
	ArtistMatch = 2  // per matching (item artist token, profile artist token) pair
	GenreMatch  = 1  // per matching (item genre token, profile genre token) pair
)

// scoreFunc computes a non-negative score for a single item
type scoreFunc func(item CatalogItem) int

// keywordScorer scores an item against search keywords. For each keyword the title
// tokens are matched first; only a keyword with zero title matches falls back to the
// artist tokens.
func keywordScorer(keywords []string) scoreFunc {
	return func(item CatalogItem) int {
		if len(keywords) == 0 {
			return 0
		}
		title := tokenize(item.Title)
		var artist []string
		score := 0
		for _, kw := range keywords {
			n := countMatches(kw, title)
			if n == 0 {
				if artist == nil {
					artist = tokenize(item.Artist)
				}
				n = countMatches(kw, artist)
			}
			score += n
		}
		return score
	}
}

// affinityScorer scores an item against a listener profile
func affinityScorer(p Profile) scoreFunc {
	return func(item CatalogItem) int {
		score := 0
		if p.Contains(item.ID) {
			score += RecentBonus
		}
		for _, tok := range tokenize(item.Artist) {
			score += ArtistMatch * countMatches(tok, p.Artists)
		}
		for _, tok := range genreTokens(item.Genre) {
			score += GenreMatch * countMatches(tok, p.Genres)
		}
		return score
	}
}

// Scorer runs a scoreFunc over every item of a snapshot
type Scorer struct {
	workers   int
	threshold int
}

// NewScorer creates a scorer. Catalogs with more than threshold items are split
// across workers goroutines; workers <= 1 always scores sequentially.
func NewScorer(workers, threshold int) *Scorer {
	return &Scorer{workers: workers, threshold: threshold}
}

// Score returns the items with a non-zero score, in scan order, each tagged with
// its scan index. Completion order of parallel workers never leaks into the output.
func (s *Scorer) Score(ctx context.Context, snap *Snapshot, fn scoreFunc) ([]ScoredItem, error) {
	n := snap.Len()
	scores := make([]int, n)

	if s.workers <= 1 || n <= s.threshold {
		for i, item := range snap.Items {
			if i%256 == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			scores[i] = fn(item)
		}
	} else if err := s.scoreParallel(ctx, snap, fn, scores); err != nil {
		return nil, err
	}

	scored := make([]ScoredItem, 0, n/4)
	for i, score := range scores {
		if score > 0 {
			scored = append(scored, ScoredItem{Item: snap.Items[i], Score: score, ScanIndex: i})
		}
	}
	return scored, nil
}

func (s *Scorer) scoreParallel(ctx context.Context, snap *Snapshot, fn scoreFunc, scores []int) error {
	n := len(scores)
	chunk := (n + s.workers - 1) / s.workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				// each index is written by exactly one goroutine
				scores[i] = fn(snap.Items[i])
			}
			return nil
		})
	}
	return g.Wait()
}
