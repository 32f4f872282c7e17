package service

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/streetsignal/internal/clock"
	obslogger "github.com/smallbiznis/streetsignal/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/streetsignal/internal/observability/metrics"
	signaldomain "github.com/smallbiznis/streetsignal/internal/signal/domain"
	storedomain "github.com/smallbiznis/streetsignal/internal/store/domain"
	venuedomain "github.com/smallbiznis/streetsignal/internal/venue/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// LabelJustNow is the last-signal label set by a check-in.
const LabelJustNow = "just now"

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	GenID      *snowflake.Node
	Registry   venuedomain.Registry
	Store      storedomain.Store
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	clock      clock.Clock
	genID      *snowflake.Node
	registry   venuedomain.Registry
	store      storedomain.Store
	obsMetrics *obsmetrics.Metrics

	mu      sync.Mutex
	signals map[string]signaldomain.Signal
}

func NewService(p Params) signaldomain.Service {
	s := &Service{
		log:        p.Log.Named("signal.service"),
		clock:      p.Clock,
		genID:      p.GenID,
		registry:   p.Registry,
		store:      p.Store,
		obsMetrics: p.ObsMetrics,
		signals:    make(map[string]signaldomain.Signal),
	}
	s.store.Get(context.Background(), storedomain.KeySignals, &s.signals)
	if s.signals == nil {
		s.signals = make(map[string]signaldomain.Signal)
	}
	return s
}

func signalKey(actorID, venueID string) string {
	return actorID + "@" + venueID
}

// Signal applies an intent. A check-in is a no-op for an actor already
// playing at the venue, and an arrival announcement never downgrades it.
func (s *Service) Signal(ctx context.Context, venueID string, t signaldomain.Type, actor signaldomain.Actor) (signaldomain.Outcome, error) {
	if err := actor.Validate(); err != nil {
		return signaldomain.Outcome{}, err
	}
	t, err := signaldomain.ParseType(string(t))
	if err != nil {
		return signaldomain.Outcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := signalKey(actor.ID, venueID)
	prev, hasPrev := s.signals[key]
	now := s.clock.Now()
	checkedIn := false
	alreadyHere := false

	venue, err := s.registry.Update(venueID, func(v *venuedomain.Venue) error {
		alreadyHere = isPlaying(v.ActiveSession, actor.ID)
		if t != signaldomain.TypeHere || alreadyHere {
			return nil
		}
		checkIn(v, actor, now, s.genID)
		checkedIn = true
		return nil
	})
	if err != nil {
		return signaldomain.Outcome{}, err
	}

	current := prev
	changed := false
	switch {
	case t == signaldomain.TypeHere && (checkedIn || !hasPrev || prev.Type != signaldomain.TypeHere):
		current = signaldomain.Signal{VenueID: venueID, ActorID: actor.ID, Type: t, IssuedAt: now}
		changed = true
	case t == signaldomain.TypeComing && !hasPrev && !alreadyHere:
		current = signaldomain.Signal{VenueID: venueID, ActorID: actor.ID, Type: t, IssuedAt: now}
		changed = true
	}
	if changed {
		s.signals[key] = current
		s.persist(ctx)
	}

	applied := checkedIn || (t == signaldomain.TypeComing && changed)
	if applied {
		obslogger.WithActor(obslogger.WithVenue(s.log, venueID), actor.ID).Info("signal applied",
			zap.String("signal_type", string(t)),
			zap.Int("occupancy", venue.Occupancy.Current),
		)
	}
	s.record(ctx, t, applied)

	var sig *signaldomain.Signal
	if changed || hasPrev {
		sig = &current
	}
	return signaldomain.Outcome{Venue: venue, Signal: sig, Applied: applied}, nil
}

// Leave checks the actor out of the venue and withdraws any intent held there.
func (s *Service) Leave(ctx context.Context, venueID string, actor signaldomain.Actor) (signaldomain.Outcome, error) {
	if err := actor.Validate(); err != nil {
		return signaldomain.Outcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := signalKey(actor.ID, venueID)
	_, hasPrev := s.signals[key]
	checkedOut := false

	venue, err := s.registry.Update(venueID, func(v *venuedomain.Venue) error {
		checkedOut = checkOut(v, actor.ID)
		return nil
	})
	if err != nil {
		return signaldomain.Outcome{}, err
	}

	if hasPrev {
		delete(s.signals, key)
		s.persist(ctx)
	}
	if checkedOut {
		obslogger.WithActor(obslogger.WithVenue(s.log, venueID), actor.ID).Info("check-out applied",
			zap.Int("occupancy", venue.Occupancy.Current),
			zap.String("status", string(venue.Status)),
		)
	}
	return signaldomain.Outcome{Venue: venue, Applied: checkedOut || hasPrev}, nil
}

func (s *Service) Current(actorID, venueID string) (signaldomain.Signal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sig, ok := s.signals[signalKey(actorID, venueID)]
	return sig, ok
}

func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.signals = make(map[string]signaldomain.Signal)
	s.mu.Unlock()
	return s.store.Delete(ctx, storedomain.KeySignals)
}

func (s *Service) persist(ctx context.Context) {
	if err := s.store.Set(ctx, storedomain.KeySignals, s.signals); err != nil {
		s.log.Warn("failed to persist signals", zap.Error(err))
	}
}

func (s *Service) record(ctx context.Context, t signaldomain.Type, applied bool) {
	if s.obsMetrics != nil {
		s.obsMetrics.RecordSignal(ctx, string(t), applied)
	}
}

func isPlaying(session *venuedomain.Session, actorID string) bool {
	idx := session.IndexOf(actorID)
	return idx >= 0 && session.Players[idx].Status == venuedomain.PlayerPlaying
}

func checkIn(v *venuedomain.Venue, actor signaldomain.Actor, now time.Time, genID *snowflake.Node) {
	player := venuedomain.Player{ID: actor.ID, Name: actor.Name, Status: venuedomain.PlayerPlaying}
	if v.ActiveSession == nil {
		v.ActiveSession = &venuedomain.Session{
			ID:        genID.Generate().String(),
			StartTime: now,
			Players:   []venuedomain.Player{player},
		}
	} else if idx := v.ActiveSession.IndexOf(actor.ID); idx >= 0 {
		v.ActiveSession.Players[idx] = player
	} else {
		v.ActiveSession.Players = append(v.ActiveSession.Players, player)
	}

	if v.Occupancy.Current < v.Occupancy.Max {
		v.Occupancy.Current++
	}
	v.Status = v.Status.Next(venuedomain.TransitionCheckIn, v.Occupancy.Current)
	at := now
	v.LastSignalAt = &at
	v.LastSignalLabel = LabelJustNow
}

func checkOut(v *venuedomain.Venue, actorID string) bool {
	idx := v.ActiveSession.IndexOf(actorID)
	if idx < 0 {
		return false
	}
	players := v.ActiveSession.Players
	v.ActiveSession.Players = append(players[:idx:idx], players[idx+1:]...)
	if v.Occupancy.Current > 0 {
		v.Occupancy.Current--
	}
	v.Status = v.Status.Next(venuedomain.TransitionOccupancyDrop, v.Occupancy.Current)
	if v.Status == venuedomain.StatusEmpty {
		v.ActiveSession = nil
	}
	return true
}
