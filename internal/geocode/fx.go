package geocode

import (
	"time"

	"github.com/smallbiznis/streetsignal/internal/config"
	geocodedomain "github.com/smallbiznis/streetsignal/internal/geocode/domain"
	"github.com/smallbiznis/streetsignal/internal/geocode/nominatim"
	"github.com/smallbiznis/streetsignal/internal/geocode/service"
	"go.uber.org/fx"
)

var Module = fx.Module("geocode.service",
	fx.Provide(
		newGeocoder,
		service.NewService,
	),
)

// newGeocoder yields a nil geocoder when lookups are disabled.
func newGeocoder(cfg config.Config) geocodedomain.Geocoder {
	if !cfg.Geocoder.Enabled {
		return nil
	}
	return nominatim.NewClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, time.Duration(cfg.Geocoder.TimeoutMS)*time.Millisecond)
}
