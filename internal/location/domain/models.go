package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/streetsignal/pkg/geo"
)

var ErrGeolocationDenied = errors.New("geolocation_denied")

// Provider yields the device position once per call.
type Provider interface {
	Locate(ctx context.Context) (geo.Point, error)
}

// Resolution is the position the engine works from. DemoMode is set when the
// device position was unavailable and the demo coordinate is used instead.
type Resolution struct {
	Point    geo.Point `json:"point"`
	DemoMode bool      `json:"demoMode"`
	City     string    `json:"city,omitempty"`
}

// Fixed reports a known position.
type Fixed geo.Point

func (f Fixed) Locate(context.Context) (geo.Point, error) {
	return geo.Point(f), nil
}

// Denied always fails as a refused permission would.
type Denied struct{}

func (Denied) Locate(context.Context) (geo.Point, error) {
	return geo.Point{}, ErrGeolocationDenied
}
