package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gosimple/slug"
	catalogdomain "github.com/smallbiznis/streetsignal/internal/catalog/domain"
	"github.com/smallbiznis/streetsignal/internal/clock"
	"github.com/smallbiznis/streetsignal/internal/config"
	obsmetrics "github.com/smallbiznis/streetsignal/internal/observability/metrics"
	storedomain "github.com/smallbiznis/streetsignal/internal/store/domain"
	venuedomain "github.com/smallbiznis/streetsignal/internal/venue/domain"
	"github.com/smallbiznis/streetsignal/pkg/geo"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	Store      storedomain.Store
	Defaults   venuedomain.DefaultDataProvider
	Engine     *config.EngineConfigHolder `optional:"true"`
	ObsMetrics *obsmetrics.Metrics        `optional:"true"`
}

type Registry struct {
	log        *zap.Logger
	clock      clock.Clock
	store      storedomain.Store
	defaults   venuedomain.DefaultDataProvider
	engine     *config.EngineConfigHolder
	obsMetrics *obsmetrics.Metrics

	mu        sync.RWMutex
	venues    []venuedomain.Venue
	favorites map[string]struct{}
}

func NewRegistry(p Params) venuedomain.Registry {
	r := &Registry{
		log:        p.Log.Named("venue.registry"),
		clock:      p.Clock,
		store:      p.Store,
		defaults:   p.Defaults,
		engine:     p.Engine,
		obsMetrics: p.ObsMetrics,
		favorites:  make(map[string]struct{}),
	}
	r.loadFavorites(context.Background())
	return r
}

func (r *Registry) loadFavorites(ctx context.Context) {
	var ids []string
	if !r.store.Get(ctx, storedomain.KeyFavorites, &ids) {
		return
	}
	for _, id := range ids {
		r.favorites[id] = struct{}{}
	}
}

// Reconcile applies one catalog result. An unavailable catalog keeps the
// current venues and only seeds demo data into an empty registry; an empty
// region clears the registry.
func (r *Registry) Reconcile(ctx context.Context, ref geo.Point, result catalogdomain.Result) venuedomain.ReconcileOutcome {
	var (
		next    []venuedomain.Venue
		outcome venuedomain.ReconcileOutcome
	)

	r.mu.RLock()
	empty := len(r.venues) == 0
	r.mu.RUnlock()

	switch {
	case result.Unavailable:
		if !empty {
			r.log.Warn("catalog unavailable, keeping current venues", zap.Error(result.Cause))
			r.record(ctx, venuedomain.OutcomeKept)
			return venuedomain.OutcomeKept
		}
		r.log.Warn("catalog unavailable, loading demo venues", zap.Error(result.Cause))
		next = r.defaults.Venues(r.clock.Now())
		outcome = venuedomain.OutcomeDemo
	case len(result.Records) == 0:
		next = []venuedomain.Venue{}
		outcome = venuedomain.OutcomeEmptyRegion
	default:
		cfg := r.engine.Get()
		next = make([]venuedomain.Venue, 0, len(result.Records))
		for _, rec := range result.Records {
			next = append(next, fromRecord(rec, cfg))
		}
		outcome = venuedomain.OutcomeCatalog
	}

	for i := range next {
		next[i].Locate(ref)
	}
	sortByDistance(next)

	r.mu.Lock()
	r.venues = next
	r.mu.Unlock()

	r.log.Info("venues reconciled", zap.String("outcome", string(outcome)), zap.Int("venues", len(next)))
	r.record(ctx, outcome)
	return outcome
}

func (r *Registry) record(ctx context.Context, outcome venuedomain.ReconcileOutcome) {
	if r.obsMetrics != nil {
		r.obsMetrics.RecordReconciliation(ctx, string(outcome))
	}
}

func fromRecord(rec catalogdomain.Record, cfg config.EngineConfig) venuedomain.Venue {
	maxPlayers := cfg.DefaultMaxPlayers
	if rec.MaxPlayers != nil && *rec.MaxPlayers > 0 {
		maxPlayers = *rec.MaxPlayers
	}
	surface := cfg.DefaultSurface
	if rec.Floor != nil && strings.TrimSpace(*rec.Floor) != "" {
		surface = *rec.Floor
	}
	return venuedomain.Venue{
		ID:              rec.ID,
		Handle:          slug.Make(rec.Name),
		Name:            rec.Name,
		Geo:             rec.Point(),
		Status:          venuedomain.StatusFromOccupancy(0),
		Occupancy:       venuedomain.Occupancy{Current: 0, Max: maxPlayers},
		Amenities:       venuedomain.Amenities{Lit: deref(rec.Lighting), Water: deref(rec.Water)},
		Surface:         surface,
		Vibe:            "Pickup",
		AmbienceHistory: []float64{},
		Issues:          []string{},
		Origin:          venuedomain.OriginCatalog,
	}
}

func deref(b *bool) bool {
	return b != nil && *b
}

func sortByDistance(venues []venuedomain.Venue) {
	sort.SliceStable(venues, func(i, j int) bool {
		return venues[i].DistanceKm < venues[j].DistanceKm
	})
}

// RecomputeDistances refreshes distances against ref and re-sorts.
func (r *Registry) RecomputeDistances(ref geo.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.venues {
		r.venues[i].Locate(ref)
	}
	sortByDistance(r.venues)
}

func (r *Registry) List(filter venuedomain.Filter) []venuedomain.Venue {
	return venuedomain.ApplyFilters(r.Snapshot(), filter)
}

// Snapshot returns a deep copy of the registry in display order.
func (r *Registry) Snapshot() []venuedomain.Venue {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]venuedomain.Venue, 0, len(r.venues))
	for _, v := range r.venues {
		out = append(out, r.view(v))
	}
	return out
}

func (r *Registry) view(v venuedomain.Venue) venuedomain.Venue {
	out := v.Clone()
	_, out.Favorite = r.favorites[v.ID]
	return out
}

func (r *Registry) Get(id string) (venuedomain.Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return venuedomain.Venue{}, venuedomain.ErrVenueNotFound
	}
	return r.view(r.venues[idx]), nil
}

func (r *Registry) indexOf(id string) int {
	for i := range r.venues {
		if r.venues[i].ID == id {
			return i
		}
	}
	return -1
}

// Update runs mutate on a copy of the venue and stores it only when mutate
// succeeds.
func (r *Registry) Update(id string, mutate func(*venuedomain.Venue) error) (venuedomain.Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return venuedomain.Venue{}, venuedomain.ErrVenueNotFound
	}
	draft := r.venues[idx].Clone()
	if err := mutate(&draft); err != nil {
		return venuedomain.Venue{}, err
	}
	draft.ID = id
	r.venues[idx] = draft
	return r.view(draft), nil
}

func (r *Registry) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	if r.indexOf(id) < 0 {
		r.mu.Unlock()
		return false, venuedomain.ErrVenueNotFound
	}
	_, was := r.favorites[id]
	if was {
		delete(r.favorites, id)
	} else {
		r.favorites[id] = struct{}{}
	}
	ids := r.favoriteIDs()
	r.mu.Unlock()

	if err := r.store.Set(ctx, storedomain.KeyFavorites, ids); err != nil {
		r.log.Warn("failed to persist favorites", zap.Error(err))
	}
	return !was, nil
}

func (r *Registry) Favorites() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.favoriteIDs()
}

func (r *Registry) favoriteIDs() []string {
	ids := make([]string, 0, len(r.favorites))
	for id := range r.favorites {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Restore replaces the registry with cached venues, e.g. at start-up.
func (r *Registry) Restore(ref geo.Point, venues []venuedomain.Venue) {
	next := make([]venuedomain.Venue, 0, len(venues))
	for _, v := range venues {
		if !v.Status.Valid() || v.ID == "" {
			continue
		}
		c := v.Clone()
		c.Favorite = false
		if c.Occupancy.Current > c.Occupancy.Max {
			c.Occupancy.Current = c.Occupancy.Max
		}
		c.Locate(ref)
		next = append(next, c)
	}
	sortByDistance(next)

	r.mu.Lock()
	r.venues = next
	r.mu.Unlock()
}

// Decay applies idle timeouts to every venue.
func (r *Registry) Decay(now time.Time) []venuedomain.StatusChange {
	cfg := r.engine.Get()
	policy := venuedomain.DecayPolicy{HotIdle: cfg.HotIdleTimeout, ActiveIdle: cfg.ActiveIdleTimeout}

	r.mu.Lock()
	defer r.mu.Unlock()
	var changes []venuedomain.StatusChange
	for i := range r.venues {
		if change, ok := policy.Decay(&r.venues[i], now); ok {
			changes = append(changes, change)
		}
	}
	return changes
}

// Reset drops all venues and favorites.
func (r *Registry) Reset(ctx context.Context) error {
	r.mu.Lock()
	r.venues = nil
	r.favorites = make(map[string]struct{})
	r.mu.Unlock()
	return r.store.Delete(ctx, storedomain.KeyFavorites, storedomain.KeyVenues)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.venues)
}
