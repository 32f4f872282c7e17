package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallbiznis/streetsignal/pkg/geo"
)

var (
	ErrRemoteUnavailable = errors.New("remote_unavailable")
	ErrNotConfigured     = errors.New("catalog_not_configured")
)

// Record is one venue as published by the catalog. Optional attributes are
// nil when the catalog does not carry them.
type Record struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	MaxPlayers *int    `json:"max_players,omitempty"`
	Floor      *string `json:"floor,omitempty"`
	Lighting   *bool   `json:"lighting,omitempty"`
	Water      *bool   `json:"water,omitempty"`
}

func (r Record) Point() geo.Point {
	return geo.Point{Lat: r.Lat, Lng: r.Lng}
}

// Source queries venues inside a bounding box.
type Source interface {
	Query(ctx context.Context, box geo.BoundingBox, limit int) ([]Record, error)
}

// Result is the outcome of one catalog fetch. Unavailable results carry the
// cause and no records; an available result with zero records is an empty region.
type Result struct {
	Records     []Record
	Unavailable bool
	Cause       error
}

func (r Result) EmptyRegion() bool {
	return !r.Unavailable && len(r.Records) == 0
}

// Unavailable builds a failed result wrapping cause as ErrRemoteUnavailable.
func Unavailable(cause error) Result {
	if cause == nil {
		cause = ErrRemoteUnavailable
	}
	if !errors.Is(cause, ErrRemoteUnavailable) && !errors.Is(cause, ErrNotConfigured) {
		cause = fmt.Errorf("%w: %w", ErrRemoteUnavailable, cause)
	}
	return Result{Unavailable: true, Cause: cause}
}

// Fetch queries src around center and folds every failure into an
// unavailable result.
func Fetch(ctx context.Context, src Source, center geo.Point, radiusDeg float64, limit int) Result {
	if src == nil {
		return Unavailable(ErrNotConfigured)
	}
	records, err := src.Query(ctx, geo.BoxAround(center, radiusDeg), limit)
	if err != nil {
		return Unavailable(err)
	}
	if records == nil {
		records = []Record{}
	}
	return Result{Records: records}
}

// Unconfigured is the source used when no catalog is set up.
type Unconfigured struct{}

func (Unconfigured) Query(context.Context, geo.BoundingBox, int) ([]Record, error) {
	return nil, ErrNotConfigured
}
