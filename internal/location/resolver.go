package location

import (
	"context"

	"github.com/smallbiznis/streetsignal/internal/config"
	locationdomain "github.com/smallbiznis/streetsignal/internal/location/domain"
	"github.com/smallbiznis/streetsignal/pkg/geo"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("location",
	fx.Provide(NewResolver),
)

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

// Resolver turns a provider answer into a Resolution, falling back to the
// demo coordinate when the provider is missing or fails.
type Resolver struct {
	demo locationdomain.Resolution
	log  *zap.Logger
}

func NewResolver(p Params) *Resolver {
	return &Resolver{
		demo: locationdomain.Resolution{
			Point:    geo.Point{Lat: p.Config.Demo.Lat, Lng: p.Config.Demo.Lng},
			DemoMode: true,
			City:     p.Config.Demo.City,
		},
		log: p.Log.Named("location.resolver"),
	}
}

func (r *Resolver) Resolve(ctx context.Context, provider locationdomain.Provider) locationdomain.Resolution {
	if provider == nil {
		r.log.Warn("no location provider, using demo position")
		return r.demo
	}
	point, err := provider.Locate(ctx)
	if err != nil {
		r.log.Warn("device location unavailable, using demo position", zap.Error(err))
		return r.demo
	}
	return locationdomain.Resolution{Point: point}
}

func (r *Resolver) Demo() locationdomain.Resolution {
	return r.demo
}
