package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/skip2/go-qrcode"
	"github.com/smallbiznis/streetsignal/internal/clock"
	"github.com/smallbiznis/streetsignal/internal/config"
	obslogger "github.com/smallbiznis/streetsignal/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/streetsignal/internal/observability/metrics"
	rewarddomain "github.com/smallbiznis/streetsignal/internal/reward/domain"
	storedomain "github.com/smallbiznis/streetsignal/internal/store/domain"
	venuedomain "github.com/smallbiznis/streetsignal/internal/venue/domain"
	"github.com/smallbiznis/streetsignal/pkg/window"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const qrSize = 256

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	GenID      *snowflake.Node
	Store      storedomain.Store
	Registry   venuedomain.Registry
	Engine     *config.EngineConfigHolder `optional:"true"`
	ObsMetrics *obsmetrics.Metrics        `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	clock      clock.Clock
	genID      *snowflake.Node
	store      storedomain.Store
	registry   venuedomain.Registry
	engine     *config.EngineConfigHolder
	obsMetrics *obsmetrics.Metrics
	ticket     func() int

	mu      sync.Mutex
	ledger  *rewarddomain.Ledger
	journal *window.Window[rewarddomain.Entry]
}

func NewService(p Params) rewarddomain.Service {
	s := &Service{
		log:        p.Log.Named("reward.service"),
		clock:      p.Clock,
		genID:      p.GenID,
		store:      p.Store,
		registry:   p.Registry,
		engine:     p.Engine,
		obsMetrics: p.ObsMetrics,
		ticket:     func() int { return 1000 + rand.IntN(9000) },
	}
	s.load(context.Background())
	return s
}

func (s *Service) load(ctx context.Context) {
	balance := s.engine.Get().StartingBalance
	if !s.store.Get(ctx, storedomain.KeyBalance, &balance) {
		s.log.Debug("no persisted balance, using starting balance", zap.Int64("balance", balance))
	}
	s.ledger = rewarddomain.NewLedger(balance)

	var entries []rewarddomain.Entry
	s.store.Get(ctx, storedomain.KeyJournal, &entries)
	s.journal = window.From(rewarddomain.JournalSize, entries)
}

func (s *Service) Balance(ctx context.Context) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Balance()
}

func (s *Service) Summary(ctx context.Context) rewarddomain.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rewarddomain.Summary{Balance: s.ledger.Balance(), Journal: s.journal.Items()}
}

func (s *Service) Earn(ctx context.Context, amount int64, reason string) (rewarddomain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.post(ctx, rewarddomain.DirectionEarn, amount, reason)
}

func (s *Service) Spend(ctx context.Context, cost int64, reason string) (rewarddomain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.post(ctx, rewarddomain.DirectionSpend, cost, reason)
}

// post applies one movement; callers hold s.mu.
func (s *Service) post(ctx context.Context, direction rewarddomain.EntryDirection, amount int64, reason string) (rewarddomain.Entry, error) {
	var err error
	switch direction {
	case rewarddomain.DirectionEarn:
		err = s.ledger.Earn(amount)
	default:
		err = s.ledger.Spend(amount)
	}
	op := strings.ToLower(string(direction))
	if err != nil {
		s.recordOperation(ctx, op, err)
		return rewarddomain.Entry{}, err
	}

	entry := rewarddomain.Entry{
		ID:        s.genID.Generate().String(),
		Direction: direction,
		Amount:    amount,
		Balance:   s.ledger.Balance(),
		Reason:    reason,
		CreatedAt: s.clock.Now(),
	}
	s.journal.Push(entry)
	s.persist(ctx)
	s.recordOperation(ctx, op, nil)
	return entry, nil
}

func (s *Service) persist(ctx context.Context) {
	if err := s.store.Set(ctx, storedomain.KeyBalance, s.ledger.Balance()); err != nil {
		s.log.Warn("failed to persist balance", zap.Error(err))
	}
	if err := s.store.Set(ctx, storedomain.KeyJournal, s.journal.Items()); err != nil {
		s.log.Warn("failed to persist journal", zap.Error(err))
	}
}

func (s *Service) recordOperation(ctx context.Context, op string, err error) {
	if s.obsMetrics == nil {
		return
	}
	outcome := "ok"
	switch {
	case errors.Is(err, rewarddomain.ErrInsufficientBalance):
		outcome = "insufficient_balance"
	case errors.Is(err, rewarddomain.ErrInvalidAmount):
		outcome = "invalid_amount"
	case err != nil:
		outcome = "error"
	}
	s.obsMetrics.RecordLedgerOperation(ctx, op, outcome)
}

// ReportIssue files an issue against a venue and credits the reporter.
func (s *Service) ReportIssue(ctx context.Context, venueID, issue string) (rewarddomain.Report, error) {
	issue = strings.TrimSpace(issue)
	if issue == "" {
		return rewarddomain.Report{}, rewarddomain.ErrInvalidIssue
	}
	reward := s.engine.Get().ReportReward

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.registry.Update(venueID, func(v *venuedomain.Venue) error {
		v.Issues = append(v.Issues, issue)
		return nil
	}); err != nil {
		return rewarddomain.Report{}, err
	}

	ticket := s.ticket()
	entry, err := s.post(ctx, rewarddomain.DirectionEarn, reward, fmt.Sprintf("report #%d", ticket))
	if err != nil {
		return rewarddomain.Report{}, err
	}

	obslogger.WithVenue(s.log, venueID).Info("issue reported",
		zap.Int("ticket", ticket),
		zap.String("issue", issue),
	)
	return rewarddomain.Report{
		Ticket:  ticket,
		VenueID: venueID,
		Issue:   issue,
		Reward:  reward,
		Balance: entry.Balance,
	}, nil
}

// Redeem spends the offer cost and issues a redemption code.
func (s *Service) Redeem(ctx context.Context, offerID string) (rewarddomain.Redemption, error) {
	offer, err := rewarddomain.FindOffer(offerID)
	if err != nil {
		return rewarddomain.Redemption{}, err
	}

	code := fmt.Sprintf("SS-%s-%s", offer.ID, strings.ToUpper(s.genID.Generate().Base36()))
	png, err := qrcode.Encode(code, qrcode.Medium, qrSize)
	if err != nil {
		return rewarddomain.Redemption{}, fmt.Errorf("encode redemption code: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.post(ctx, rewarddomain.DirectionSpend, offer.Cost, offer.Partner+" "+offer.Title)
	if err != nil {
		return rewarddomain.Redemption{}, err
	}

	s.log.Info("offer redeemed", zap.String("offer_id", offer.ID), zap.Int64("balance", entry.Balance))
	return rewarddomain.Redemption{
		Offer:   offer,
		Code:    code,
		QRCode:  png,
		Balance: entry.Balance,
	}, nil
}

// Reset restores the starting balance and clears the journal.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = rewarddomain.NewLedger(s.engine.Get().StartingBalance)
	s.journal = window.New[rewarddomain.Entry](rewarddomain.JournalSize)
	return s.store.Delete(ctx, storedomain.KeyBalance, storedomain.KeyJournal)
}
