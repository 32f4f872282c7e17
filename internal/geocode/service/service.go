package service

import (
	"context"

	"github.com/smallbiznis/streetsignal/internal/cache"
	geocodedomain "github.com/smallbiznis/streetsignal/internal/geocode/domain"
	"github.com/smallbiznis/streetsignal/pkg/geo"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Geocoder geocodedomain.Geocoder `optional:"true"`
	Log      *zap.Logger
}

type Service struct {
	geocoder geocodedomain.Geocoder
	places   cache.PlaceCache[geocodedomain.Place]
	log      *zap.Logger
}

func NewService(p Params) geocodedomain.Service {
	return &Service{
		geocoder: p.Geocoder,
		places:   cache.NewPlaceCache[geocodedomain.Place](),
		log:      p.Log.Named("geocode.service"),
	}
}

func (s *Service) Resolve(ctx context.Context, point geo.Point) geocodedomain.Place {
	if s.geocoder == nil {
		return geocodedomain.Unresolved()
	}
	if place, ok := s.places.Get(point.Lat, point.Lng); ok {
		return place
	}

	place, err := s.geocoder.Lookup(ctx, point)
	if err != nil {
		s.log.Warn("reverse geocoding failed", zap.Float64("lat", point.Lat), zap.Float64("lng", point.Lng), zap.Error(err))
		place = geocodedomain.Unresolved()
		s.places.SetMiss(point.Lat, point.Lng, place)
		return place
	}
	s.places.Set(point.Lat, point.Lng, place)
	return place
}
