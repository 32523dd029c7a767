package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/zfogg/cadence/internal/logger"
	"go.uber.org/zap"
)

// ErrStorageUnavailable is returned while the circuit breaker is open
var ErrStorageUnavailable = errors.New("audio storage unavailable")

// BreakerConfig controls when the breaker opens and how long it stays open
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the breaker
	FailureThreshold uint32
	// Timeout is how long the breaker stays open before letting a probe through
	Timeout time.Duration
	// MaxRequests is the number of probes allowed while half-open
	MaxRequests uint32
}

// DefaultBreakerConfig returns the settings used by the API server
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		MaxRequests:      1,
	}
}

// BreakerStore fails fast while the wrapped store keeps erroring
type BreakerStore struct {
	next AudioStore
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreakerStore wraps next with a circuit breaker
func NewBreakerStore(next AudioStore, cfg BreakerConfig) *BreakerStore {
	settings := gobreaker.Settings{
		Name:        "s3",
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// a missing key or a caller that went away says nothing about S3 health
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrObjectNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log.Warn("Storage circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &BreakerStore{next: next, cb: gobreaker.NewCircuitBreaker[any](settings)}
}

// State reports the breaker state, for health output
func (b *BreakerStore) State() string {
	return b.cb.State().String()
}

func (b *BreakerStore) Open(ctx context.Context, key string) (*Object, error) {
	v, err := b.execute(func() (any, error) { return b.next.Open(ctx, key) })
	if err != nil {
		return nil, err
	}
	return v.(*Object), nil
}

func (b *BreakerStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	v, err := b.execute(func() (any, error) { return b.next.Put(ctx, key, body, size, contentType) })
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (b *BreakerStore) Delete(ctx context.Context, key string) error {
	_, err := b.execute(func() (any, error) { return nil, b.next.Delete(ctx, key) })
	return err
}

// CheckBucketAccess bypasses the breaker so startup checks see the real error
func (b *BreakerStore) CheckBucketAccess(ctx context.Context) error {
	return b.next.CheckBucketAccess(ctx)
}

func (b *BreakerStore) execute(fn func() (any, error)) (any, error) {
	v, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return v, err
}

var _ AudioStore = (*BreakerStore)(nil)
