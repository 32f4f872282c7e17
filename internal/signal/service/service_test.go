package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/streetsignal/internal/catalog/domain"
	"github.com/smallbiznis/streetsignal/internal/clock"
	"github.com/smallbiznis/streetsignal/internal/config"
	signaldomain "github.com/smallbiznis/streetsignal/internal/signal/domain"
	storedomain "github.com/smallbiznis/streetsignal/internal/store/domain"
	"github.com/smallbiznis/streetsignal/internal/store/memory"
	venuedomain "github.com/smallbiznis/streetsignal/internal/venue/domain"
	venueservice "github.com/smallbiznis/streetsignal/internal/venue/service"
	"github.com/smallbiznis/streetsignal/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixtureVenues []venuedomain.Venue

func (f fixtureVenues) Venues(time.Time) []venuedomain.Venue {
	out := make([]venuedomain.Venue, 0, len(f))
	for _, v := range f {
		out = append(out, v.Clone())
	}
	return out
}

type harness struct {
	svc      signaldomain.Service
	registry venuedomain.Registry
	store    *memory.Store
	clock    *clock.FakeClock
}

func newHarness(t *testing.T, venues ...venuedomain.Venue) harness {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	st := memory.New(zap.NewNop())
	clk := clock.NewFakeClock(time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC))
	reg := venueservice.NewRegistry(venueservice.Params{
		Log:      zap.NewNop(),
		Clock:    clk,
		Store:    st,
		Defaults: fixtureVenues(venues),
		Engine:   config.NewStaticEngineConfigHolder(config.DefaultEngineConfig()),
	})
	reg.Reconcile(context.Background(), geo.Point{Lat: 47.2184, Lng: -1.5536}, catalogdomain.Unavailable(errors.New("offline")))

	svc := NewService(Params{
		Log:      zap.NewNop(),
		Clock:    clk,
		GenID:    node,
		Registry: reg,
		Store:    st,
	})
	return harness{svc: svc, registry: reg, store: st, clock: clk}
}

func activeCourt() venuedomain.Venue {
	return venuedomain.Venue{
		ID:        "court",
		Name:      "City Stade",
		Geo:       geo.Point{Lat: 47.2150, Lng: -1.5500},
		Status:    venuedomain.StatusActive,
		Occupancy: venuedomain.Occupancy{Current: 2, Max: 10},
	}
}

var user = signaldomain.Actor{ID: "u1", Name: "Dydy P."}

func TestHereOnActiveVenue(t *testing.T) {
	h := newHarness(t, activeCourt())

	out, err := h.svc.Signal(context.Background(), "court", signaldomain.TypeHere, user)
	require.NoError(t, err)

	assert.True(t, out.Applied)
	assert.Equal(t, venuedomain.StatusHot, out.Venue.Status)
	assert.Equal(t, 3, out.Venue.Occupancy.Current)
	require.NotNil(t, out.Venue.LastSignalAt)
	assert.Equal(t, h.clock.Now(), *out.Venue.LastSignalAt)
	assert.Equal(t, LabelJustNow, out.Venue.LastSignalLabel)
	require.NotNil(t, out.Venue.ActiveSession)
	assert.Equal(t, h.clock.Now(), out.Venue.ActiveSession.StartTime)
	assert.NotEmpty(t, out.Venue.ActiveSession.ID)
	assert.Equal(t, []venuedomain.Player{{ID: "u1", Name: "Dydy P.", Status: venuedomain.PlayerPlaying}}, out.Venue.ActiveSession.Players)

	stored, err := h.registry.Get("court")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Occupancy.Current)
}

func TestHereIsIdempotent(t *testing.T) {
	h := newHarness(t, activeCourt())
	ctx := context.Background()

	_, err := h.svc.Signal(ctx, "court", signaldomain.TypeHere, user)
	require.NoError(t, err)
	out, err := h.svc.Signal(ctx, "court", signaldomain.TypeHere, user)
	require.NoError(t, err)

	assert.False(t, out.Applied)
	assert.Equal(t, 3, out.Venue.Occupancy.Current)
	assert.Len(t, out.Venue.ActiveSession.Players, 1)
}

func TestHereClampsAtMax(t *testing.T) {
	court := activeCourt()
	court.Occupancy = venuedomain.Occupancy{Current: 1, Max: 3}
	h := newHarness(t, court)
	ctx := context.Background()

	var out signaldomain.Outcome
	for i := 0; i < 6; i++ {
		var err error
		out, err = h.svc.Signal(ctx, "court", signaldomain.TypeHere, signaldomain.Actor{ID: fmt.Sprintf("p%d", i)})
		require.NoError(t, err)
		assert.LessOrEqual(t, out.Venue.Occupancy.Current, 3)
	}
	assert.Equal(t, 3, out.Venue.Occupancy.Current)
	assert.Len(t, out.Venue.ActiveSession.Players, 6)
	assert.Equal(t, venuedomain.StatusHot, out.Venue.Status)
}

func TestHerePromotesWaitingPlayer(t *testing.T) {
	court := activeCourt()
	court.ActiveSession = &venuedomain.Session{ID: "s1", Players: []venuedomain.Player{
		{ID: "u1", Name: "Dydy P.", Status: venuedomain.PlayerWaiting},
	}}
	h := newHarness(t, court)

	out, err := h.svc.Signal(context.Background(), "court", signaldomain.TypeHere, user)
	require.NoError(t, err)

	assert.Equal(t, "s1", out.Venue.ActiveSession.ID)
	require.Len(t, out.Venue.ActiveSession.Players, 1)
	assert.Equal(t, venuedomain.PlayerPlaying, out.Venue.ActiveSession.Players[0].Status)
	assert.Equal(t, 3, out.Venue.Occupancy.Current)
}

func TestComingRecordsIntentOnly(t *testing.T) {
	h := newHarness(t, activeCourt())
	ctx := context.Background()

	out, err := h.svc.Signal(ctx, "court", signaldomain.TypeComing, user)
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, venuedomain.StatusActive, out.Venue.Status)
	assert.Equal(t, 2, out.Venue.Occupancy.Current)
	assert.Nil(t, out.Venue.ActiveSession)
	assert.Nil(t, out.Venue.LastSignalAt)

	again, err := h.svc.Signal(ctx, "court", signaldomain.TypeComing, user)
	require.NoError(t, err)
	assert.False(t, again.Applied)

	sig, ok := h.svc.Current("u1", "court")
	require.True(t, ok)
	assert.Equal(t, signaldomain.TypeComing, sig.Type)

	var persisted map[string]signaldomain.Signal
	require.True(t, h.store.Get(ctx, storedomain.KeySignals, &persisted))
	assert.Len(t, persisted, 1)
}

func TestComingDoesNotDowngradeCheckIn(t *testing.T) {
	h := newHarness(t, activeCourt())
	ctx := context.Background()

	_, err := h.svc.Signal(ctx, "court", signaldomain.TypeHere, user)
	require.NoError(t, err)
	out, err := h.svc.Signal(ctx, "court", signaldomain.TypeComing, user)
	require.NoError(t, err)

	assert.False(t, out.Applied)
	sig, _ := h.svc.Current("u1", "court")
	assert.Equal(t, signaldomain.TypeHere, sig.Type)
	assert.Equal(t, 3, out.Venue.Occupancy.Current)
}

func TestSignalUnknownVenue(t *testing.T) {
	h := newHarness(t, activeCourt())

	_, err := h.svc.Signal(context.Background(), "nope", signaldomain.TypeHere, user)
	assert.ErrorIs(t, err, venuedomain.ErrVenueNotFound)

	_, ok := h.svc.Current("u1", "nope")
	assert.False(t, ok)
}

func TestSignalValidation(t *testing.T) {
	h := newHarness(t, activeCourt())
	ctx := context.Background()

	_, err := h.svc.Signal(ctx, "court", signaldomain.Type("sprinting"), user)
	assert.ErrorIs(t, err, signaldomain.ErrInvalidSignalType)

	_, err = h.svc.Signal(ctx, "court", signaldomain.TypeHere, signaldomain.Actor{})
	assert.ErrorIs(t, err, signaldomain.ErrInvalidActor)

	v, _ := h.registry.Get("court")
	assert.Equal(t, 2, v.Occupancy.Current)
}

func TestLeaveDropsOccupancy(t *testing.T) {
	court := activeCourt()
	court.Occupancy.Current = 0
	court.Status = venuedomain.StatusEmpty
	h := newHarness(t, court)
	ctx := context.Background()
	other := signaldomain.Actor{ID: "u2", Name: "Sarah B."}

	_, err := h.svc.Signal(ctx, "court", signaldomain.TypeHere, user)
	require.NoError(t, err)
	_, err = h.svc.Signal(ctx, "court", signaldomain.TypeHere, other)
	require.NoError(t, err)

	out, err := h.svc.Leave(ctx, "court", user)
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, 1, out.Venue.Occupancy.Current)
	assert.Equal(t, venuedomain.StatusActive, out.Venue.Status)
	assert.Equal(t, -1, out.Venue.ActiveSession.IndexOf("u1"))

	out, err = h.svc.Leave(ctx, "court", other)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Venue.Occupancy.Current)
	assert.Equal(t, venuedomain.StatusEmpty, out.Venue.Status)
	assert.Nil(t, out.Venue.ActiveSession)

	_, ok := h.svc.Current("u1", "court")
	assert.False(t, ok)
}

func TestLeaveWithoutCheckIn(t *testing.T) {
	h := newHarness(t, activeCourt())

	out, err := h.svc.Leave(context.Background(), "court", user)
	require.NoError(t, err)
	assert.False(t, out.Applied)
	assert.Equal(t, 2, out.Venue.Occupancy.Current)

	_, err = h.svc.Leave(context.Background(), "nope", user)
	assert.ErrorIs(t, err, venuedomain.ErrVenueNotFound)
}

func TestResetClearsIntents(t *testing.T) {
	h := newHarness(t, activeCourt())
	ctx := context.Background()
	_, err := h.svc.Signal(ctx, "court", signaldomain.TypeComing, user)
	require.NoError(t, err)

	require.NoError(t, h.svc.Reset(ctx))
	_, ok := h.svc.Current("u1", "court")
	assert.False(t, ok)
}

func TestParseType(t *testing.T) {
	got, err := signaldomain.ParseType(" HERE ")
	require.NoError(t, err)
	assert.Equal(t, signaldomain.TypeHere, got)

	_, err = signaldomain.ParseType("")
	assert.ErrorIs(t, err, signaldomain.ErrInvalidSignalType)
}
