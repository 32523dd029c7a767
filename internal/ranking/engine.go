package ranking

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/zfogg/cadence/internal/logger"
	"go.uber.org/zap"
)

// Config controls how the engine scores and orders results
type Config struct {
	// Workers is the number of goroutines used to score large catalogs (default: GOMAXPROCS)
	Workers int
	// ParallelThreshold is the catalog size above which scoring is parallelized (default: 2048)
	ParallelThreshold int
	// TieBreak orders equal-score items (default: reverse-scan)
	TieBreak TieBreak
}

// DefaultConfig returns the configuration used by the API server
func DefaultConfig() Config {
	return Config{
		Workers:           runtime.GOMAXPROCS(0),
		ParallelThreshold: 2048,
		TieBreak:          TieBreakReverseScan,
	}
}

// Result is an ordered ranking. Scores[i] belongs to Items[i].
type Result struct {
	Items  []CatalogItem `json:"songs"`
	Scores []int         `json:"scores,omitempty"`
	// ColdStart is set when the listener had no usable history and the catalog
	// was ordered by likes instead
	ColdStart bool `json:"cold_start"`
}

// IDs returns the ranked item ids
func (r *Result) IDs() []string {
	ids := make([]string, len(r.Items))
	for i, item := range r.Items {
		ids[i] = item.ID
	}
	return ids
}

// Len returns the number of ranked items
func (r *Result) Len() int {
	return len(r.Items)
}

// Engine answers search and recommendation queries over a snapshot.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	cfg    Config
	scorer *Scorer
	log    *zap.Logger
}

// NewEngine creates a ranking engine
func NewEngine(cfg Config) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.ParallelThreshold <= 0 {
		cfg.ParallelThreshold = DefaultConfig().ParallelThreshold
	}
	return &Engine{
		cfg:    cfg,
		scorer: NewScorer(cfg.Workers, cfg.ParallelThreshold),
		log:    logger.Log.Named("ranking"),
	}
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Search ranks the snapshot against the whitespace-separated keywords in query.
// An empty query yields an empty result.
func (e *Engine) Search(ctx context.Context, query string, snap *Snapshot) (*Result, error) {
	if snap == nil {
		return nil, fmt.Errorf("search: nil catalog snapshot: %w", ErrInvalidInput)
	}

	keywords := tokenize(query)
	if len(keywords) == 0 {
		return &Result{Items: []CatalogItem{}, Scores: []int{}}, nil
	}

	scored, err := e.scorer.Score(ctx, snap, keywordScorer(keywords))
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	res := e.assemble(scored)

	e.log.Debug("search ranked",
		zap.Int("keywords", len(keywords)),
		zap.Int("catalog_size", snap.Len()),
		zap.Int("results", res.Len()),
	)
	return res, nil
}

// Recommend ranks the snapshot for a listener whose play history is given oldest first.
// Without usable history the whole catalog is returned ordered by likes.
func (e *Engine) Recommend(ctx context.Context, history []string, snap *Snapshot) (*Result, error) {
	profile, err := BuildProfile(history, snap)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	if profile.Empty() {
		res := ColdStart(snap)
		e.log.Debug("recommend cold start",
			zap.Int("history", len(history)),
			zap.Int("catalog_size", snap.Len()),
		)
		return res, nil
	}

	scored, err := e.scorer.Score(ctx, snap, affinityScorer(profile))
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	res := e.assemble(scored)

	e.log.Debug("recommend ranked",
		zap.Int("recent", len(profile.Recent)),
		zap.Int("artist_tokens", len(profile.Artists)),
		zap.Int("genre_tokens", len(profile.Genres)),
		zap.Int("results", res.Len()),
	)
	return res, nil
}

func (e *Engine) assemble(scored []ScoredItem) *Result {
	ordered := Assemble(scored, e.cfg.TieBreak)
	res := &Result{
		Items:  make([]CatalogItem, len(ordered)),
		Scores: make([]int, len(ordered)),
	}
	for i, s := range ordered {
		res.Items[i] = s.Item
		res.Scores[i] = s.Score
	}
	return res
}

// ColdStart returns every catalog item ordered by like count descending,
// keeping catalog order among equal counts.
func ColdStart(snap *Snapshot) *Result {
	items := make([]CatalogItem, snap.Len())
	if snap != nil {
		copy(items, snap.Items)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].LikeCount > items[j].LikeCount
	})
	return &Result{Items: items, ColdStart: true}
}
