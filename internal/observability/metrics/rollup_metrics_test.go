package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
)

func TestClassifyRollupError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "deadline",
			err:  context.DeadlineExceeded,
			want: RollupErrorReasonDeadlineExceeded,
		},
		{
			name: "canceled",
			err:  context.Canceled,
			want: RollupErrorReasonDeadlineExceeded,
		},
		{
			name: "unique_violation_gorm",
			err:  gorm.ErrDuplicatedKey,
			want: RollupErrorReasonUniqueViolation,
		},
		{
			name: "unique_violation_pg",
			err:  &pgconn.PgError{Code: "23505"},
			want: RollupErrorReasonUniqueViolation,
		},
		{
			name: "db",
			err:  gorm.ErrInvalidTransaction,
			want: RollupErrorReasonDB,
		},
		{
			name: "unknown",
			err:  errors.New("boom"),
			want: RollupErrorReasonUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyRollupError(tc.err); got != tc.want {
				t.Fatalf("expected reason %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRollupCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := newRollupMetrics(registry, Config{
		ServiceName: "scene",
		Environment: "test",
	})

	metrics.IncJobRun("venue_daily_rollup")
	metrics.AddVenuesRolledUp("venue_daily_rollup", 3)
	metrics.IncJobError("venue_daily_rollup", gorm.ErrDuplicatedKey)
	metrics.ObserveJobDuration("venue_daily_rollup", 50*time.Millisecond)
	metrics.ObserveRunLoopLag(-time.Second) // clamps to zero

	runs := testutil.ToFloat64(metrics.jobRuns.WithLabelValues("venue_daily_rollup"))
	if runs != 1 {
		t.Fatalf("expected 1 job run, got %v", runs)
	}
	venues := testutil.ToFloat64(metrics.venuesRolledUp.WithLabelValues("venue_daily_rollup"))
	if venues != 3 {
		t.Fatalf("expected 3 venues rolled up, got %v", venues)
	}
	errs := testutil.ToFloat64(metrics.jobErrors.WithLabelValues("venue_daily_rollup", RollupErrorReasonUniqueViolation))
	if errs != 1 {
		t.Fatalf("expected 1 unique violation, got %v", errs)
	}
}
