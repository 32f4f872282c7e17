package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/streetsignal/internal/clock"
	"github.com/smallbiznis/streetsignal/internal/config"
	obsmetrics "github.com/smallbiznis/streetsignal/internal/observability/metrics"
	storedomain "github.com/smallbiznis/streetsignal/internal/store/domain"
	venuedomain "github.com/smallbiznis/streetsignal/internal/venue/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const JobVenueDecay = "venue_decay"

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	GenID    *snowflake.Node
	Registry venuedomain.Registry
	Store    storedomain.Store
	Engine   *config.EngineConfigHolder    `optional:"true"`
	Metrics  *obsmetrics.SchedulerMetrics `optional:"true"`
	Config   Config                       `optional:"true"`
}

type Scheduler struct {
	log      *zap.Logger
	cfg      Config
	genID    *snowflake.Node
	clock    clock.Clock
	registry venuedomain.Registry
	store    storedomain.Store
	metrics  *obsmetrics.SchedulerMetrics
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.GenID == nil || p.Registry == nil || p.Store == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config
	if cfg.RunInterval <= 0 {
		cfg.RunInterval = p.Engine.Get().DecayInterval
	}
	metrics := p.Metrics
	if metrics == nil {
		metrics = obsmetrics.Scheduler()
	}
	return &Scheduler{
		log:      p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:      cfg.withDefaults(),
		genID:    p.GenID,
		clock:    p.Clock,
		registry: p.Registry,
		store:    p.Store,
		metrics:  metrics,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	ctx, run := s.startJobRun(ctx, name)
	s.logJobStart(ctx, run)
	s.metrics.IncJobRun(name)

	err := fn(ctx)
	s.metrics.ObserveJobDuration(name, s.clock.Now().Sub(start))
	if err != nil {
		run.IncError()
	}
	s.logJobFinish(ctx, run)
	if err == nil {
		return nil
	}

	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isTimeout {
		s.metrics.IncJobTimeout(name)
	}
	s.metrics.IncJobError(name, err)
	if isTimeout {
		s.logger(ctx).Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error
	jobs := []struct {
		Name string
		Run  func(context.Context) error
	}{
		{JobVenueDecay, s.VenueDecayJob},
	}
	for _, job := range jobs {
		if s.isJobEnabled(job.Name) {
			err = errors.Join(err, s.runJob(parent, job.Name, job.Run))
		}
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := time.Now().Add(s.cfg.RunInterval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if lag := time.Since(nextRun); lag > 0 {
			s.metrics.ObserveRunLoopLag(lag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.RunInterval)
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

// VenueDecayJob applies idle timeouts and refreshes the venue cache when any
// status changed.
func (s *Scheduler) VenueDecayJob(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	run := jobRunFromContext(ctx)
	changes := s.registry.Decay(s.clock.Now())
	run.AddChanges(changes)
	if len(changes) == 0 {
		return nil
	}

	for _, change := range changes {
		s.metrics.IncStatusTransition(string(change.From), string(change.To))
		s.logStatusChange(ctx, change)
	}
	if err := s.store.Set(ctx, storedomain.KeyVenues, s.registry.Snapshot()); err != nil {
		return fmt.Errorf("cache venues: %w", err)
	}
	return nil
}
