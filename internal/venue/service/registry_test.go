package service

import (
	"context"
	"errors"
	"testing"
	"time"

	catalogdomain "github.com/smallbiznis/streetsignal/internal/catalog/domain"
	"github.com/smallbiznis/streetsignal/internal/clock"
	"github.com/smallbiznis/streetsignal/internal/config"
	storedomain "github.com/smallbiznis/streetsignal/internal/store/domain"
	"github.com/smallbiznis/streetsignal/internal/store/memory"
	"github.com/smallbiznis/streetsignal/internal/venue/demo"
	venuedomain "github.com/smallbiznis/streetsignal/internal/venue/domain"
	"github.com/smallbiznis/streetsignal/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var nantes = geo.Point{Lat: 47.2184, Lng: -1.5536}

type fixture struct {
	registry *Registry
	store    *memory.Store
	clock    *clock.FakeClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st := memory.New(zap.NewNop())
	clk := clock.NewFakeClock(time.Date(2026, 6, 1, 14, 30, 0, 0, time.UTC))
	reg := NewRegistry(Params{
		Log:      zap.NewNop(),
		Clock:    clk,
		Store:    st,
		Defaults: demo.NewProvider(),
		Engine:   config.NewStaticEngineConfigHolder(config.DefaultEngineConfig()),
	}).(*Registry)
	return fixture{registry: reg, store: st, clock: clk}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func unavailable() catalogdomain.Result {
	return catalogdomain.Unavailable(errors.New("dial tcp: connection refused"))
}

func assertSortedByDistance(t *testing.T, venues []venuedomain.Venue) {
	t.Helper()
	for i := 1; i < len(venues); i++ {
		assert.LessOrEqual(t, venues[i-1].DistanceKm, venues[i].DistanceKm)
	}
}

func TestReconcileUnavailableSeedsDemoIntoEmptyRegistry(t *testing.T) {
	f := newFixture(t)

	outcome := f.registry.Reconcile(context.Background(), nantes, unavailable())

	assert.Equal(t, venuedomain.OutcomeDemo, outcome)
	venues := f.registry.Snapshot()
	require.Len(t, venues, 3)
	assertSortedByDistance(t, venues)
	assert.Equal(t, "Playground des Machines", venues[0].Name)
	assert.NotEmpty(t, venues[0].DistanceLabel)
}

func TestReconcileUnavailableKeepsExistingVenues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registry.Reconcile(ctx, nantes, catalogdomain.Result{Records: []catalogdomain.Record{
		{ID: "42", Name: "Quai des Antilles", Lat: 47.2010, Lng: -1.5730},
	}})

	outcome := f.registry.Reconcile(ctx, nantes, unavailable())

	assert.Equal(t, venuedomain.OutcomeKept, outcome)
	venues := f.registry.Snapshot()
	require.Len(t, venues, 1)
	assert.Equal(t, "42", venues[0].ID)
}

func TestReconcileEmptyRegionClearsCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registry.Reconcile(ctx, nantes, unavailable())
	require.Equal(t, 3, f.registry.Len())

	outcome := f.registry.Reconcile(ctx, nantes, catalogdomain.Result{Records: []catalogdomain.Record{}})

	assert.Equal(t, venuedomain.OutcomeEmptyRegion, outcome)
	assert.Equal(t, 0, f.registry.Len())
	assert.Empty(t, f.registry.List(venuedomain.Filter{}))
}

func TestReconcileMapsCatalogRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.registry.Update("missing", func(*venuedomain.Venue) error { return nil })
	require.ErrorIs(t, err, venuedomain.ErrVenueNotFound)

	require.NoError(t, f.store.Set(ctx, storedomain.KeyFavorites, []string{"b"}))
	f.registry.loadFavorites(ctx)

	outcome := f.registry.Reconcile(ctx, nantes, catalogdomain.Result{Records: []catalogdomain.Record{
		{ID: "a", Name: "Far Court", Lat: 47.30, Lng: -1.50, MaxPlayers: intPtr(20), Floor: strPtr("Parquet"), Lighting: boolPtr(true)},
		{ID: "b", Name: "Near Court", Lat: 47.2185, Lng: -1.5537},
	}})

	assert.Equal(t, venuedomain.OutcomeCatalog, outcome)
	venues := f.registry.Snapshot()
	require.Len(t, venues, 2)
	assert.Equal(t, "b", venues[0].ID)
	assert.True(t, venues[0].Favorite)
	assert.Equal(t, 10, venues[0].Occupancy.Max)
	assert.Equal(t, "Bitume", venues[0].Surface)
	assert.Equal(t, venuedomain.StatusEmpty, venues[0].Status)
	assert.Nil(t, venues[0].ActiveSession)
	assert.Nil(t, venues[0].AmbienceScore)
	assert.Equal(t, "near-court", venues[0].Handle)

	assert.False(t, venues[1].Favorite)
	assert.Equal(t, 20, venues[1].Occupancy.Max)
	assert.Equal(t, "Parquet", venues[1].Surface)
	assert.True(t, venues[1].Amenities.Lit)
	assert.False(t, venues[1].Amenities.Water)
}

func TestRecomputeDistancesResorts(t *testing.T) {
	f := newFixture(t)
	f.registry.Reconcile(context.Background(), nantes, unavailable())

	doulon := geo.Point{Lat: 47.2250, Lng: -1.5600}
	f.registry.RecomputeDistances(doulon)

	venues := f.registry.Snapshot()
	assertSortedByDistance(t, venues)
	assert.Equal(t, "Terrain Vieux Doulon", venues[0].Name)
	assert.Equal(t, "0 m", venues[0].DistanceLabel)
}

func TestToggleFavoriteIsComputedOnRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registry.Reconcile(ctx, nantes, unavailable())

	on, err := f.registry.ToggleFavorite(ctx, "3")
	require.NoError(t, err)
	assert.True(t, on)

	v, err := f.registry.Get("3")
	require.NoError(t, err)
	assert.True(t, v.Favorite)

	var persisted []string
	require.True(t, f.store.Get(ctx, storedomain.KeyFavorites, &persisted))
	assert.Equal(t, []string{"3"}, persisted)

	off, err := f.registry.ToggleFavorite(ctx, "3")
	require.NoError(t, err)
	assert.False(t, off)
	v, _ = f.registry.Get("3")
	assert.False(t, v.Favorite)
	assert.Empty(t, f.registry.Favorites())

	_, err = f.registry.ToggleFavorite(ctx, "404")
	assert.ErrorIs(t, err, venuedomain.ErrVenueNotFound)
}

func TestUpdateIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	f.registry.Reconcile(context.Background(), nantes, unavailable())

	_, err := f.registry.Update("1", func(v *venuedomain.Venue) error {
		v.Occupancy.Current = 0
		return errors.New("rejected")
	})
	require.Error(t, err)

	v, _ := f.registry.Get("1")
	assert.Equal(t, 8, v.Occupancy.Current)
}

func TestListAppliesFiltersWithoutMutating(t *testing.T) {
	f := newFixture(t)
	f.registry.Reconcile(context.Background(), nantes, unavailable())

	lit := f.registry.List(venuedomain.Filter{Lit: true})
	assert.Len(t, lit, 2)
	assert.Equal(t, 3, f.registry.Len())
}

func TestDecayRunsIdleTimeouts(t *testing.T) {
	f := newFixture(t)
	f.registry.Reconcile(context.Background(), nantes, unavailable())

	assert.Empty(t, f.registry.Decay(f.clock.Now()))

	f.clock.Advance(44 * time.Minute)
	changes := f.registry.Decay(f.clock.Now())
	require.Len(t, changes, 1)
	assert.Equal(t, venuedomain.StatusChange{VenueID: "1", From: venuedomain.StatusHot, To: venuedomain.StatusActive}, changes[0])

	v, _ := f.registry.Get("1")
	assert.Equal(t, venuedomain.StatusActive, v.Status)
}

func TestRestoreWarmsFromCache(t *testing.T) {
	f := newFixture(t)
	f.registry.Reconcile(context.Background(), nantes, unavailable())
	cached := f.registry.Snapshot()

	other := newFixture(t)
	cached = append(cached, venuedomain.Venue{ID: "bad", Status: "unknown"})
	other.registry.Restore(nantes, cached)

	assert.Equal(t, 3, other.registry.Len())
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registry.Reconcile(ctx, nantes, unavailable())
	_, err := f.registry.ToggleFavorite(ctx, "1")
	require.NoError(t, err)

	require.NoError(t, f.registry.Reset(ctx))
	assert.Equal(t, 0, f.registry.Len())
	assert.Empty(t, f.registry.Favorites())

	var persisted []string
	assert.False(t, f.store.Get(ctx, storedomain.KeyFavorites, &persisted))
}
