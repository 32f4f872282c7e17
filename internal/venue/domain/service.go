package domain

import (
	"context"
	"time"

	catalogdomain "github.com/smallbiznis/streetsignal/internal/catalog/domain"
	"github.com/smallbiznis/streetsignal/pkg/geo"
)

// Registry owns the venue list of the current session.
type Registry interface {
	Reconcile(ctx context.Context, ref geo.Point, result catalogdomain.Result) ReconcileOutcome
	RecomputeDistances(ref geo.Point)
	List(filter Filter) []Venue
	Get(id string) (Venue, error)
	Update(id string, mutate func(*Venue) error) (Venue, error)
	ToggleFavorite(ctx context.Context, id string) (bool, error)
	Favorites() []string
	Snapshot() []Venue
	Restore(ref geo.Point, venues []Venue)
	Decay(now time.Time) []StatusChange
	Reset(ctx context.Context) error
	Len() int
}
