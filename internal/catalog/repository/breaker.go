package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	catalogdomain "github.com/smallbiznis/streetsignal/internal/catalog/domain"
	"github.com/smallbiznis/streetsignal/internal/clock"
	"github.com/smallbiznis/streetsignal/pkg/geo"
	"go.uber.org/zap"
)

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

var ErrBreakerOpen = errors.New("catalog_breaker_open")

type BreakerConfig struct {
	MaxFailures  int
	ResetTimeout time.Duration
}

// BreakerSource fast-fails queries after repeated failures of the wrapped
// source. After ResetTimeout a single trial query is let through; its outcome
// closes or reopens the breaker.
type BreakerSource struct {
	next  catalogdomain.Source
	cfg   BreakerConfig
	clock clock.Clock
	log   *zap.Logger

	mu       sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time
}

func NewBreakerSource(next catalogdomain.Source, cfg BreakerConfig, clk clock.Clock, log *zap.Logger) *BreakerSource {
	if cfg.MaxFailures < 1 {
		cfg.MaxFailures = 1
	}
	if clk == nil {
		clk = clock.NewSystemClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BreakerSource{
		next:  next,
		cfg:   cfg,
		clock: clk,
		log:   log.Named("catalog.breaker"),
	}
}

func (b *BreakerSource) Query(ctx context.Context, box geo.BoundingBox, limit int) ([]catalogdomain.Record, error) {
	if !b.allow() {
		return nil, ErrBreakerOpen
	}
	records, err := b.next.Query(ctx, box, limit)
	if err != nil {
		b.onFailure(err)
		return nil, err
	}
	b.onSuccess()
	return records, nil
}

func (b *BreakerSource) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *BreakerSource) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case BreakerOpen:
		if b.clock.Now().Sub(b.openedAt) < b.cfg.ResetTimeout {
			return false
		}
		b.state = BreakerHalfOpen
		b.log.Info("breaker half open")
		return true
	case BreakerHalfOpen:
		// one trial query at a time
		return false
	default:
		return true
	}
}

func (b *BreakerSource) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != BreakerClosed {
		b.log.Info("breaker closed", zap.String("from", b.state.String()))
	}
	b.state = BreakerClosed
	b.failures = 0
}

func (b *BreakerSource) onFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.state == BreakerHalfOpen || b.failures >= b.cfg.MaxFailures {
		b.state = BreakerOpen
		b.openedAt = b.clock.Now()
		b.log.Warn("breaker opened", zap.Int("failures", b.failures), zap.Error(err))
		return
	}
	b.log.Warn("catalog query failed", zap.Int("failures", b.failures), zap.Error(err))
}
