// Package discovery answers search and recommendation requests for the API.
// It loads the catalog and the listener's history, then hands both to the ranking engine.
package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/zfogg/cadence/internal/logger"
	"github.com/zfogg/cadence/internal/metrics"
	"github.com/zfogg/cadence/internal/ranking"
	"github.com/zfogg/cadence/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	modeSearch    = "search"
	modeRecommend = "recommend"
)

// CatalogProvider supplies a consistent view of the catalog for one request
type CatalogProvider interface {
	Snapshot(ctx context.Context) (*ranking.Snapshot, error)
}

// HistoryProvider supplies a listener's recently viewed song ids, oldest first
type HistoryProvider interface {
	RecentViews(ctx context.Context, userID string, limit int) ([]string, error)
}

// Service ranks songs for API requests
type Service struct {
	catalog CatalogProvider
	history HistoryProvider
	engine  *ranking.Engine
}

// NewService creates a discovery service
func NewService(catalog CatalogProvider, history HistoryProvider, engine *ranking.Engine) *Service {
	return &Service{
		catalog: catalog,
		history: history,
		engine:  engine,
	}
}

// Search ranks the catalog against a free-text query
func (s *Service) Search(ctx context.Context, query string) (*ranking.Result, error) {
	ctx, span := telemetry.TraceRanking(ctx, modeSearch, attribute.Int("ranking.query_length", len(query)))
	defer span.End()

	start := time.Now()
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		err = fmt.Errorf("failed to load catalog: %w", err)
		s.record(modeSearch, nil, 0, start, err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	res, err := s.engine.Search(ctx, query, snap)
	s.record(modeSearch, res, snap.Len(), start, err)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("ranking.catalog_size", snap.Len()),
		attribute.Int("ranking.results", res.Len()),
	)
	return res, nil
}

// Recommend ranks the catalog for userID using their recent history
func (s *Service) Recommend(ctx context.Context, userID string) (*ranking.Result, error) {
	ctx, span := telemetry.TraceRanking(ctx, modeRecommend, attribute.String("user.id", userID))
	defer span.End()

	start := time.Now()

	var (
		snap    *ranking.Snapshot
		history []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap, err = s.catalog.Snapshot(gctx)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		history, err = s.history.RecentViews(gctx, userID, ranking.RecentWindow)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.record(modeRecommend, nil, 0, start, err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	res, err := s.engine.Recommend(ctx, history, snap)
	s.record(modeRecommend, res, snap.Len(), start, err)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("ranking.history", len(history)),
		attribute.Int("ranking.catalog_size", snap.Len()),
		attribute.Int("ranking.results", res.Len()),
		attribute.Bool("ranking.cold_start", res.ColdStart),
	)
	return res, nil
}

func (s *Service) record(mode string, res *ranking.Result, catalogSize int, start time.Time, err error) {
	m := metrics.RankingMetric{
		Mode:        mode,
		CatalogSize: catalogSize,
		Duration:    time.Since(start),
		Err:         err,
	}
	if res != nil {
		m.ResultCount = res.Len()
		m.ColdStart = res.ColdStart
	}
	metrics.RecordRanking(m)

	if err != nil {
		logger.Log.Warn("ranking failed", zap.String("mode", mode), zap.Error(err))
	}
}
