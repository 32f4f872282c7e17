package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/streetsignal/internal/catalog/domain"
	"github.com/smallbiznis/streetsignal/internal/clock"
	rewarddomain "github.com/smallbiznis/streetsignal/internal/reward/domain"
	storedomain "github.com/smallbiznis/streetsignal/internal/store/domain"
	"github.com/smallbiznis/streetsignal/internal/store/memory"
	"github.com/smallbiznis/streetsignal/internal/venue/demo"
	venuedomain "github.com/smallbiznis/streetsignal/internal/venue/domain"
	venueservice "github.com/smallbiznis/streetsignal/internal/venue/service"
	"github.com/smallbiznis/streetsignal/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc      *Service
	store    storedomain.Store
	registry venuedomain.Registry
	params   Params
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC))
	store := memory.New(zap.NewNop())
	reg := venueservice.NewRegistry(venueservice.Params{
		Log:      zap.NewNop(),
		Clock:    clk,
		Store:    store,
		Defaults: demo.NewProvider(),
	})
	reg.Reconcile(context.Background(), geo.Point{Lat: 47.2184, Lng: -1.5536}, catalogdomain.Unavailable(errors.New("offline")))

	p := Params{Log: zap.NewNop(), Clock: clk, GenID: node, Store: store, Registry: reg}
	svc := NewService(p).(*Service)
	svc.ticket = func() int { return 4242 }
	return fixture{svc: svc, store: store, registry: reg, params: p}
}

func TestStartingBalanceScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	assert.Equal(t, int64(450), f.svc.Balance(ctx))

	_, err := f.svc.Spend(ctx, 500, "offer")
	assert.ErrorIs(t, err, rewarddomain.ErrInsufficientBalance)
	assert.Equal(t, int64(450), f.svc.Balance(ctx))

	_, err = f.svc.Earn(ctx, 50, "report")
	require.NoError(t, err)
	entry, err := f.svc.Spend(ctx, 500, "offer")
	require.NoError(t, err)
	assert.Equal(t, int64(0), entry.Balance)
	assert.Equal(t, int64(0), f.svc.Balance(ctx))

	summary := f.svc.Summary(ctx)
	require.Len(t, summary.Journal, 2)
	assert.Equal(t, rewarddomain.DirectionEarn, summary.Journal[0].Direction)
	assert.Equal(t, rewarddomain.DirectionSpend, summary.Journal[1].Direction)
}

func TestBalanceSurvivesRestart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Earn(ctx, 30, "bonus")
	require.NoError(t, err)

	again := NewService(f.params)
	assert.Equal(t, int64(480), again.Balance(ctx))
	assert.Len(t, again.Summary(ctx).Journal, 1)
}

func TestNullBalanceOpensAtStartingBalance(t *testing.T) {
	f := newFixture(t)
	f.store.(*memory.Store).SetRaw(storedomain.KeyBalance, []byte("null"))

	again := NewService(f.params)
	assert.Equal(t, int64(450), again.Balance(context.Background()))
}

func TestReportIssueCreditsAndAppends(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report, err := f.svc.ReportIssue(ctx, "2", "  Panier cassé ")
	require.NoError(t, err)
	assert.Equal(t, 4242, report.Ticket)
	assert.Equal(t, int64(50), report.Reward)
	assert.Equal(t, int64(500), report.Balance)

	v, err := f.registry.Get("2")
	require.NoError(t, err)
	assert.Equal(t, []string{"Filet manquant", "Panier cassé"}, v.Issues)
}

func TestReportIssueUnknownVenueLeavesBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ReportIssue(ctx, "nope", "Eclairage")
	assert.ErrorIs(t, err, venuedomain.ErrVenueNotFound)

	_, err = f.svc.ReportIssue(ctx, "1", "   ")
	assert.ErrorIs(t, err, rewarddomain.ErrInvalidIssue)
	assert.Equal(t, int64(450), f.svc.Balance(ctx))
}

func TestDefaultTicketRange(t *testing.T) {
	svc := NewService(newFixture(t).params).(*Service)
	for i := 0; i < 200; i++ {
		n := svc.ticket()
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9999)
	}
}

func TestRedeem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.Redeem(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(250), r.Balance)
	assert.Contains(t, r.Code, "SS-1-")
	assert.True(t, bytes.HasPrefix(r.QRCode, []byte("\x89PNG")))

	_, err = f.svc.Redeem(ctx, "3")
	assert.ErrorIs(t, err, rewarddomain.ErrInsufficientBalance)
	assert.Equal(t, int64(250), f.svc.Balance(ctx))

	_, err = f.svc.Redeem(ctx, "42")
	assert.ErrorIs(t, err, rewarddomain.ErrOfferNotFound)
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Spend(ctx, 400, "offer")
	require.NoError(t, err)

	require.NoError(t, f.svc.Reset(ctx))
	assert.Equal(t, int64(450), f.svc.Balance(ctx))
	assert.Empty(t, f.svc.Summary(ctx).Journal)

	var stored int64
	assert.False(t, f.store.Get(ctx, storedomain.KeyBalance, &stored))
}
