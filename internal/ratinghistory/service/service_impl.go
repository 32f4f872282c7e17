package service

import (
	"context"
	"sync"

	"github.com/smallbiznis/streetsignal/internal/clock"
	"github.com/smallbiznis/streetsignal/internal/config"
	ratinghistorydomain "github.com/smallbiznis/streetsignal/internal/ratinghistory/domain"
	storedomain "github.com/smallbiznis/streetsignal/internal/store/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log    *zap.Logger
	Clock  clock.Clock
	Store  storedomain.Store
	Repo   ratinghistorydomain.Repository `optional:"true"`
	Engine *config.EngineConfigHolder     `optional:"true"`
}

type Service struct {
	log    *zap.Logger
	clock  clock.Clock
	store  storedomain.Store
	repo   ratinghistorydomain.Repository
	engine *config.EngineConfigHolder
	userID string

	mu      sync.Mutex
	tracker *ratinghistorydomain.Tracker
}

func NewService(p Params) ratinghistorydomain.Service {
	s := &Service{
		log:    p.Log.Named("ratinghistory.service"),
		clock:  p.Clock,
		store:  p.Store,
		repo:   p.Repo,
		engine: p.Engine,
		userID: ratinghistorydomain.DefaultUserID,
	}
	s.tracker = s.load(context.Background())
	return s
}

// load prefers repository rows, then the persisted series, then the sample series.
func (s *Service) load(ctx context.Context) *ratinghistorydomain.Tracker {
	size := s.engine.Get().RatingWindow

	if s.repo != nil {
		rows, err := s.repo.Recent(ctx, s.userID, size)
		switch {
		case err != nil:
			s.log.Warn("failed to load rating history", zap.Error(err))
		case len(rows) > 0:
			return ratinghistorydomain.NewTracker(size, rows...)
		}
	}

	var persisted []ratinghistorydomain.Snapshot
	if s.store.Get(ctx, storedomain.KeyRatingHistory, &persisted) && len(persisted) > 0 {
		return ratinghistorydomain.NewTracker(size, persisted...)
	}
	return ratinghistorydomain.NewTracker(size, ratinghistorydomain.MockHistory(s.clock.Now().Year())...)
}

func (s *Service) History(ctx context.Context) ratinghistorydomain.History {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fit()
	return s.view()
}

// fit follows a reloaded rating window. Shrinking drops the oldest
// snapshots; growing only raises the cap for later appends. Callers hold s.mu.
func (s *Service) fit() {
	if size := s.engine.Get().RatingWindow; size != s.tracker.Cap() {
		s.log.Info("rating window resized", zap.Int("from", s.tracker.Cap()), zap.Int("to", size))
		s.tracker.Resize(size)
	}
}

func (s *Service) view() ratinghistorydomain.History {
	current, ok := s.tracker.Current()
	if !ok {
		current = s.engine.Get().StartingRating
	}
	return ratinghistorydomain.History{
		Snapshots: s.tracker.Snapshots(),
		Current:   current,
		Delta:     s.tracker.Delta(),
	}
}

func (s *Service) Append(ctx context.Context, rating int) (ratinghistorydomain.History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fit()
	if err := s.append(ctx, rating); err != nil {
		return ratinghistorydomain.History{}, err
	}
	return s.view(), nil
}

// append writes through to the repository before touching the tracker;
// callers hold s.mu.
func (s *Service) append(ctx context.Context, rating int) error {
	if rating <= 0 {
		return ratinghistorydomain.ErrInvalidRating
	}
	now := s.clock.Now()
	snap := ratinghistorydomain.Snapshot{Rating: rating, Label: ratinghistorydomain.Label(now), RecordedAt: now}

	if s.repo != nil {
		if err := s.repo.Append(ctx, s.userID, snap); err != nil {
			return err
		}
	}
	if err := s.tracker.Append(snap); err != nil {
		return err
	}
	if err := s.store.Set(ctx, storedomain.KeyRatingHistory, s.tracker.Snapshots()); err != nil {
		s.log.Warn("failed to persist rating history", zap.Error(err))
	}
	return nil
}

// RecordMatch appends a rating gain on victory. Any other score is left
// pending validation by the opponent.
func (s *Service) RecordMatch(ctx context.Context, myScore, opponentScore int) (ratinghistorydomain.MatchResult, error) {
	if myScore < 0 || opponentScore < 0 {
		return ratinghistorydomain.MatchResult{}, ratinghistorydomain.ErrInvalidScore
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fit()

	current := s.view().Current
	if myScore <= opponentScore {
		s.log.Info("match pending validation", zap.Int("my_score", myScore), zap.Int("opponent_score", opponentScore))
		return ratinghistorydomain.MatchResult{Outcome: ratinghistorydomain.MatchPending, Rating: current}, nil
	}

	gain := s.engine.Get().MatchWinGain
	if err := s.append(ctx, current+gain); err != nil {
		return ratinghistorydomain.MatchResult{}, err
	}
	s.log.Info("match won", zap.Int("rating", current+gain), zap.Int("gain", gain))
	return ratinghistorydomain.MatchResult{Outcome: ratinghistorydomain.MatchVictory, Gain: gain, Rating: current + gain}, nil
}

// Reset drops the persisted series and reloads. Repository rows are kept.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, storedomain.KeyRatingHistory); err != nil {
		return err
	}
	s.tracker = s.load(ctx)
	return nil
}
