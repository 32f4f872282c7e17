package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	catalogdomain "github.com/smallbiznis/streetsignal/internal/catalog/domain"
	"github.com/smallbiznis/streetsignal/internal/clock"
	"github.com/smallbiznis/streetsignal/internal/config"
	enginedomain "github.com/smallbiznis/streetsignal/internal/engine/domain"
	geocodedomain "github.com/smallbiznis/streetsignal/internal/geocode/domain"
	"github.com/smallbiznis/streetsignal/internal/location"
	locationdomain "github.com/smallbiznis/streetsignal/internal/location/domain"
	obsmetrics "github.com/smallbiznis/streetsignal/internal/observability/metrics"
	ratinghistorydomain "github.com/smallbiznis/streetsignal/internal/ratinghistory/domain"
	rewarddomain "github.com/smallbiznis/streetsignal/internal/reward/domain"
	signaldomain "github.com/smallbiznis/streetsignal/internal/signal/domain"
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
	Catalog    catalogdomain.Source
	Geocoder   geocodedomain.Service
	Resolver   *location.Resolver
	Registry   venuedomain.Registry
	Signals    signaldomain.Service
	Rewards    rewarddomain.Service
	Ratings    ratinghistorydomain.Service
	Engine     *config.EngineConfigHolder `optional:"true"`
	ObsMetrics *obsmetrics.Metrics        `optional:"true"`
}

type Engine struct {
	log        *zap.Logger
	clock      clock.Clock
	store      storedomain.Store
	catalog    catalogdomain.Source
	geocoder   geocodedomain.Service
	resolver   *location.Resolver
	registry   venuedomain.Registry
	signals    signaldomain.Service
	rewards    rewarddomain.Service
	ratings    ratinghistorydomain.Service
	engine     *config.EngineConfigHolder
	obsMetrics *obsmetrics.Metrics

	token atomic.Uint64

	// applyMu serializes registry writes from reconciliations.
	applyMu sync.Mutex

	stateMu sync.RWMutex
	state   enginedomain.State

	profileMu sync.Mutex
}

func NewEngine(p Params) enginedomain.Service {
	return &Engine{
		log:        p.Log.Named("engine"),
		clock:      p.Clock,
		store:      p.Store,
		catalog:    p.Catalog,
		geocoder:   p.Geocoder,
		resolver:   p.Resolver,
		registry:   p.Registry,
		signals:    p.Signals,
		rewards:    p.Rewards,
		ratings:    p.Ratings,
		engine:     p.Engine,
		obsMetrics: p.ObsMetrics,
	}
}

// Start resolves the position, warms the registry from the venue cache and
// runs the first reconciliation.
func (e *Engine) Start(ctx context.Context, provider locationdomain.Provider) (enginedomain.State, error) {
	res := e.resolver.Resolve(ctx, provider)

	var cached []venuedomain.Venue
	if e.store.Get(ctx, storedomain.KeyVenues, &cached) && len(cached) > 0 {
		e.registry.Restore(res.Point, cached)
		e.log.Info("venue cache restored", zap.Int("venues", e.registry.Len()))
	}

	update, err := e.locate(ctx, res)
	if err != nil {
		return enginedomain.State{}, err
	}
	return update.State, nil
}

// UpdateLocation reconciles against a device-reported position.
func (e *Engine) UpdateLocation(ctx context.Context, point geo.Point) (enginedomain.Update, error) {
	return e.locate(ctx, locationdomain.Resolution{Point: point})
}

func (e *Engine) locate(ctx context.Context, res locationdomain.Resolution) (enginedomain.Update, error) {
	token := e.token.Add(1)
	cfg := e.engine.Get()
	log := e.log.With(zap.Uint64("token", token))

	place := e.geocoder.Resolve(ctx, res.Point)
	result := catalogdomain.Fetch(ctx, e.catalog, res.Point, cfg.CatalogRadiusDeg, cfg.CatalogLimit)
	if err := ctx.Err(); err != nil {
		return enginedomain.Update{Token: token}, err
	}

	e.applyMu.Lock()
	defer e.applyMu.Unlock()

	if token != e.token.Load() {
		log.Info("discarding superseded catalog result")
		if e.obsMetrics != nil {
			e.obsMetrics.RecordStaleResult(ctx)
		}
		return enginedomain.Update{Token: token, State: e.State()}, nil
	}

	outcome := e.registry.Reconcile(ctx, res.Point, result)
	if outcome == venuedomain.OutcomeKept {
		e.registry.RecomputeDistances(res.Point)
	}
	if result.Unavailable && !errors.Is(result.Cause, catalogdomain.ErrNotConfigured) {
		log.Warn("catalog unavailable", zap.Error(result.Cause))
	}

	if err := e.store.Set(ctx, storedomain.KeyVenues, e.registry.Snapshot()); err != nil {
		log.Warn("failed to cache venues", zap.Error(err))
	}

	city := res.City
	if place.Resolved() {
		city = *place.City
		e.rememberCity(ctx, city)
	}
	if city == "" {
		city = e.State().City
	}

	state := enginedomain.State{
		Location:  res.Point,
		DemoMode:  res.DemoMode,
		City:      city,
		Outcome:   outcome,
		Venues:    e.registry.Len(),
		Token:     token,
		UpdatedAt: e.clock.Now(),
	}
	e.stateMu.Lock()
	e.state = state
	e.stateMu.Unlock()

	log.Info("location applied",
		zap.String("outcome", string(outcome)),
		zap.Bool("demo_mode", res.DemoMode),
		zap.Int("venues", state.Venues),
	)
	return enginedomain.Update{Token: token, Applied: true, State: state}, nil
}

func (e *Engine) State() enginedomain.State {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.state
}

func (e *Engine) loadProfile(ctx context.Context) enginedomain.Profile {
	profile := enginedomain.DefaultProfile()
	e.store.Get(ctx, storedomain.KeyUser, &profile)
	return profile
}

func (e *Engine) rememberCity(ctx context.Context, city string) {
	e.profileMu.Lock()
	defer e.profileMu.Unlock()
	profile := e.loadProfile(ctx)
	if profile.City == city {
		return
	}
	profile.City = city
	if err := e.store.Set(ctx, storedomain.KeyUser, profile); err != nil {
		e.log.Warn("failed to persist profile", zap.Error(err))
	}
}

// Profile returns the stored player with live karma and rating.
func (e *Engine) Profile(ctx context.Context) enginedomain.Profile {
	e.profileMu.Lock()
	profile := e.loadProfile(ctx)
	e.profileMu.Unlock()

	profile.Karma = e.rewards.Balance(ctx)
	profile.Rating = e.ratings.History(ctx).Current
	return profile
}

func (e *Engine) Flags(ctx context.Context) enginedomain.Flags {
	var flags enginedomain.Flags
	e.store.Get(ctx, storedomain.KeyOnboarded, &flags.Onboarded)
	e.store.Get(ctx, storedomain.KeyTutorialCompleted, &flags.TutorialCompleted)
	return flags
}

func (e *Engine) SetFlag(ctx context.Context, flag enginedomain.Flag) (enginedomain.Flags, error) {
	key := storedomain.KeyOnboarded
	switch flag {
	case enginedomain.FlagOnboarded:
	case enginedomain.FlagTutorialCompleted:
		key = storedomain.KeyTutorialCompleted
	default:
		return enginedomain.Flags{}, enginedomain.ErrUnknownFlag
	}
	if err := e.store.Set(ctx, key, true); err != nil {
		return enginedomain.Flags{}, err
	}
	return e.Flags(ctx), nil
}

// ResetDemoData clears every persisted key and reconciles again from the
// last known position.
func (e *Engine) ResetDemoData(ctx context.Context) (enginedomain.State, error) {
	resets := []func(context.Context) error{
		e.registry.Reset,
		e.signals.Reset,
		e.rewards.Reset,
		e.ratings.Reset,
		func(ctx context.Context) error { return e.store.Delete(ctx, storedomain.AllKeys...) },
	}
	for _, reset := range resets {
		if err := reset(ctx); err != nil {
			return enginedomain.State{}, err
		}
	}
	e.log.Info("demo data reset")

	prev := e.State()
	res := locationdomain.Resolution{Point: prev.Location, DemoMode: prev.DemoMode, City: prev.City}
	if prev.Token == 0 {
		res = e.resolver.Demo()
	}
	update, err := e.locate(ctx, res)
	if err != nil {
		return enginedomain.State{}, err
	}
	return update.State, nil
}
