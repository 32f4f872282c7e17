package service

import (
	"context"

	ambiencedomain "github.com/smallbiznis/streetsignal/internal/ambience/domain"
	"github.com/smallbiznis/streetsignal/internal/config"
	obslogger "github.com/smallbiznis/streetsignal/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/streetsignal/internal/observability/metrics"
	venuedomain "github.com/smallbiznis/streetsignal/internal/venue/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Registry   venuedomain.Registry
	Engine     *config.EngineConfigHolder `optional:"true"`
	ObsMetrics *obsmetrics.Metrics        `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	registry   venuedomain.Registry
	engine     *config.EngineConfigHolder
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) ambiencedomain.Service {
	return &Service{
		log:        p.Log.Named("ambience.service"),
		registry:   p.Registry,
		engine:     p.Engine,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Record(ctx context.Context, venueID string, ratings ambiencedomain.Ratings) (venuedomain.Venue, error) {
	if err := ambiencedomain.Validate(ratings); err != nil {
		return venuedomain.Venue{}, err
	}
	size := s.engine.Get().AmbienceWindow
	score := ambiencedomain.SessionScore(ratings)

	venue, err := s.registry.Update(venueID, func(v *venuedomain.Venue) error {
		v.AmbienceHistory, v.AmbienceScore = ambiencedomain.Push(v.AmbienceHistory, score, size)
		return nil
	})
	if err != nil {
		return venuedomain.Venue{}, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordAmbienceRating(ctx)
	}
	obslogger.WithVenue(s.log, venueID).Info("ambience recorded",
		zap.Float64("session_score", score),
		zap.Float64("ambience_score", *venue.AmbienceScore),
	)
	return venue, nil
}
