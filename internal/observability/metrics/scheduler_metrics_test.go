package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestClassifyJobError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: SchedulerJobReasonDeadlineExceeded},
		{name: "wrapped_deadline", err: fmt.Errorf("decay: %w", context.DeadlineExceeded), want: SchedulerJobReasonDeadlineExceeded},
		{name: "canceled", err: context.Canceled, want: SchedulerJobReasonCanceled},
		{name: "unknown", err: errors.New("boom"), want: SchedulerJobReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyJobError(tc.err); got != tc.want {
				t.Fatalf("expected reason %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSchedulerMetricsCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newSchedulerMetrics(registry, Config{ServiceName: "streetsignal", Environment: "test"})

	m.IncJobRun("venue_decay")
	m.IncJobRun("venue_decay")
	m.IncJobError("venue_decay", context.DeadlineExceeded)
	m.IncJobError("venue_decay", nil)
	m.IncStatusTransition("hot", "active")
	m.ObserveJobDuration("venue_decay", 20*time.Millisecond)

	if got := testutil.ToFloat64(m.jobRuns.WithLabelValues("venue_decay")); got != 2 {
		t.Fatalf("expected 2 runs, got %v", got)
	}
	if got := testutil.ToFloat64(m.jobErrors.WithLabelValues("venue_decay", SchedulerJobReasonDeadlineExceeded)); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
	if got := testutil.ToFloat64(m.statusTransitions.WithLabelValues("hot", "active")); got != 1 {
		t.Fatalf("expected 1 transition, got %v", got)
	}
}

func TestSchedulerMetricsNilSafe(t *testing.T) {
	var m *SchedulerMetrics
	m.IncJobRun("x")
	m.IncJobTimeout("x")
	m.IncJobError("x", errors.New("boom"))
	m.ObserveJobDuration("x", time.Second)
	m.ObserveRunLoopLag(time.Second)
	m.IncStatusTransition("hot", "active")
}
