package scheduler

import (
	"context"
	"time"

	obscontext "github.com/smallbiznis/streetsignal/internal/observability/context"
	obslogger "github.com/smallbiznis/streetsignal/internal/observability/logger"
	venuedomain "github.com/smallbiznis/streetsignal/internal/venue/domain"
	"go.uber.org/zap"
)

// jobRun accumulates what a single job execution did, for the finish log.
type jobRun struct {
	job       string
	runID     string
	startedAt time.Time
	changes   map[venuedomain.Status]int
	errors    int
}

type jobRunKey struct{}

// AddChanges counts decay transitions by target status.
func (r *jobRun) AddChanges(changes []venuedomain.StatusChange) {
	if r == nil {
		return
	}
	for _, change := range changes {
		r.changes[change.To]++
	}
}

func (r *jobRun) IncError() {
	if r == nil {
		return
	}
	r.errors++
}

func (r *jobRun) changed() int {
	total := 0
	for _, n := range r.changes {
		total += n
	}
	return total
}

func (s *Scheduler) startJobRun(ctx context.Context, job string) (context.Context, *jobRun) {
	run := &jobRun{
		job:       job,
		runID:     s.genID.Generate().String(),
		startedAt: s.clock.Now(),
		changes:   make(map[venuedomain.Status]int),
	}
	ctx = context.WithValue(ctx, jobRunKey{}, run)
	ctx = obscontext.WithActor(ctx, "scheduler")
	return ctx, run
}

func jobRunFromContext(ctx context.Context) *jobRun {
	if ctx == nil {
		return nil
	}
	run, _ := ctx.Value(jobRunKey{}).(*jobRun)
	return run
}

func (s *Scheduler) logger(ctx context.Context) *zap.Logger {
	return obslogger.WithContext(ctx, s.log)
}

func (s *Scheduler) logStatusChange(ctx context.Context, change venuedomain.StatusChange) {
	obslogger.WithVenue(s.logger(ctx), change.VenueID).Info("venue.status.decayed",
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)),
	)
}

func (s *Scheduler) logJobStart(ctx context.Context, run *jobRun) {
	s.logger(ctx).Debug("scheduler.job.start",
		zap.String("job", run.job),
		zap.String("run_id", run.runID),
	)
}

func (s *Scheduler) logJobFinish(ctx context.Context, run *jobRun) {
	fields := []zap.Field{
		zap.String("job", run.job),
		zap.String("run_id", run.runID),
		zap.Int64("duration_ms", s.clock.Now().Sub(run.startedAt).Milliseconds()),
		zap.Int("cooled_to_active", run.changes[venuedomain.StatusActive]),
		zap.Int("emptied", run.changes[venuedomain.StatusEmpty]),
		zap.Int("error_count", run.errors),
	}
	log := s.logger(ctx)
	switch {
	case run.errors > 0:
		log.Warn("scheduler.job.finish", fields...)
	case run.changed() > 0:
		log.Info("scheduler.job.finish", fields...)
	default:
		log.Debug("scheduler.job.finish", fields...)
	}
}
