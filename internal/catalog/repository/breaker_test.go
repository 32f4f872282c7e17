package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	catalogdomain "github.com/smallbiznis/streetsignal/internal/catalog/domain"
	"github.com/smallbiznis/streetsignal/internal/clock"
	"github.com/smallbiznis/streetsignal/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type flakySource struct {
	err   error
	calls int
}

func (f *flakySource) Query(context.Context, geo.BoundingBox, int) ([]catalogdomain.Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []catalogdomain.Record{{ID: "1", Name: "Court"}}, nil
}

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFakeClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	src := &flakySource{err: errors.New("connection refused")}
	b := NewBreakerSource(src, BreakerConfig{MaxFailures: 2, ResetTimeout: 30 * time.Second}, clk, zap.NewNop())

	_, err := b.Query(ctx, geo.BoundingBox{}, 10)
	require.Error(t, err)
	assert.Equal(t, BreakerClosed, b.State())

	_, err = b.Query(ctx, geo.BoundingBox{}, 10)
	require.Error(t, err)
	assert.Equal(t, BreakerOpen, b.State())

	_, err = b.Query(ctx, geo.BoundingBox{}, 10)
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.Equal(t, 2, src.calls)
}

func TestBreakerClosesAfterSuccessfulTrial(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFakeClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	src := &flakySource{err: errors.New("timeout")}
	b := NewBreakerSource(src, BreakerConfig{MaxFailures: 1, ResetTimeout: 30 * time.Second}, clk, zap.NewNop())

	_, _ = b.Query(ctx, geo.BoundingBox{}, 10)
	require.Equal(t, BreakerOpen, b.State())

	clk.Advance(31 * time.Second)
	src.err = nil
	records, err := b.Query(ctx, geo.BoundingBox{}, 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreakerReopensAfterFailedTrial(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFakeClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	src := &flakySource{err: errors.New("timeout")}
	b := NewBreakerSource(src, BreakerConfig{MaxFailures: 3, ResetTimeout: time.Minute}, clk, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, _ = b.Query(ctx, geo.BoundingBox{}, 10)
	}
	require.Equal(t, BreakerOpen, b.State())

	clk.Advance(2 * time.Minute)
	_, err := b.Query(ctx, geo.BoundingBox{}, 10)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBreakerOpen)
	assert.Equal(t, BreakerOpen, b.State())

	_, err = b.Query(ctx, geo.BoundingBox{}, 10)
	assert.ErrorIs(t, err, ErrBreakerOpen)
}

func TestBreakerFailureFeedsUnavailableResult(t *testing.T) {
	clk := clock.NewFakeClock(time.Now())
	b := NewBreakerSource(&flakySource{err: errors.New("down")}, BreakerConfig{MaxFailures: 1, ResetTimeout: time.Minute}, clk, nil)

	catalogdomain.Fetch(context.Background(), b, geo.Point{}, 0.2, 100)
	res := catalogdomain.Fetch(context.Background(), b, geo.Point{}, 0.2, 100)

	assert.True(t, res.Unavailable)
	assert.ErrorIs(t, res.Cause, ErrBreakerOpen)
	assert.ErrorIs(t, res.Cause, catalogdomain.ErrRemoteUnavailable)
}
