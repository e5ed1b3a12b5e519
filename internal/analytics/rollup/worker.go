// Package rollup runs the periodic job that folds each day's check-ins
// into the venue_analytics table.
package rollup

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/sceneworks/scene/internal/analytics/domain"
	"github.com/sceneworks/scene/internal/clock"
	"github.com/sceneworks/scene/internal/config"
	obsmetrics "github.com/sceneworks/scene/internal/observability/metrics"
	venuedomain "github.com/sceneworks/scene/internal/venue/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const jobName = "venue_daily_rollup"

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Config    *config.RollupConfigHolder
	Analytics analyticsdomain.Service
	Venues    venuedomain.Repository
}

type Worker struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	config    *config.RollupConfigHolder
	analytics analyticsdomain.Service
	venues    venuedomain.Repository
}

func NewWorker(p Params) *Worker {
	return &Worker{
		db:        p.DB,
		log:       p.Log.Named("analytics.rollup"),
		clock:     p.Clock,
		config:    p.Config,
		analytics: p.Analytics,
		venues:    p.Venues,
	}
}

// RunForever re-reads the config each tick so interval and batch size
// changes apply without a restart.
func (w *Worker) RunForever(ctx context.Context) {
	for {
		cfg := w.config.Current()
		if cfg.Enabled {
			if err := w.RunOnce(ctx); err != nil {
				w.log.Warn("rollup run failed", zap.Error(err))
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(cfg.PollInterval):
		}
	}
}

// RunOnce rolls up the previous UTC day for every venue, paging through
// the id space in batches so no venue is skipped regardless of fleet
// size. Buckets that already exist are left as they are.
func (w *Worker) RunOnce(parentCtx context.Context) error {
	cfg := w.config.Current()
	ctx, cancel := context.WithTimeout(parentCtx, cfg.RunTimeout)
	defer cancel()

	m := obsmetrics.Rollup()
	m.IncJobRun(jobName)
	started := time.Now()
	defer func() {
		m.ObserveJobDuration(jobName, time.Since(started))
	}()

	day := w.clock.Now().UTC().AddDate(0, 0, -1)
	processed := 0
	after := snowflake.ID(0)
	for {
		ids, err := w.venues.IDsAfter(ctx, w.db, after, cfg.BatchSize)
		if err != nil {
			m.IncJobError(jobName, err)
			return err
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			if _, err := w.analytics.RecordDailyMetrics(ctx, id.String(), day); err != nil {
				m.IncJobError(jobName, err)
				w.log.Warn("rollup venue failed",
					zap.Error(err),
					zap.String("venue_id", id.String()),
				)
				continue
			}
			processed++
		}

		after = ids[len(ids)-1]
		if len(ids) < cfg.BatchSize {
			break
		}
	}

	m.AddVenuesRolledUp(jobName, processed)
	w.log.Debug("rollup run complete", zap.Int("venues", processed))
	return nil
}
