package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	RollupErrorReasonDeadlineExceeded = "deadline_exceeded"
	RollupErrorReasonUniqueViolation  = "unique_violation"
	RollupErrorReasonDB               = "db"
	RollupErrorReasonUnknown          = "unknown"
)

// RollupMetrics captures analytics rollup worker health signals.
type RollupMetrics struct {
	jobRuns        *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
	jobErrors      *prometheus.CounterVec
	venuesRolledUp *prometheus.CounterVec
	runLoopLag     prometheus.Observer
}

var (
	rollupMetricsOnce sync.Once
	rollupMetrics     *RollupMetrics
)

// Rollup returns the singleton rollup metrics registry.
func Rollup() *RollupMetrics {
	return RollupWithConfig(Config{})
}

// RollupWithConfig returns the singleton rollup metrics registry using config labels.
func RollupWithConfig(cfg Config) *RollupMetrics {
	rollupMetricsOnce.Do(func() {
		rollupMetrics = newRollupMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return rollupMetrics
}

// ResetRollupMetricsForTest resets the rollup metrics singleton for tests.
func ResetRollupMetricsForTest() {
	rollupMetricsOnce = sync.Once{}
	rollupMetrics = nil
}

func newRollupMetrics(registerer prometheus.Registerer, cfg Config) *RollupMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "scene"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "scene_rollup_job_runs_total",
		Help:        "Rollup job runs by name.",
		ConstLabels: constLabels,
	}, []string{"job"})
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "scene_rollup_job_duration_seconds",
		Help:        "Rollup job latency to keep analytics freshness within bounds.",
		Buckets:     []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		ConstLabels: constLabels,
	}, []string{"job"})
	jobErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "scene_rollup_job_errors_total",
		Help:        "Rollup job errors by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"job", "reason"})
	venuesRolledUp := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "scene_rollup_venues_total",
		Help:        "Venues rolled up per job run to gauge analytics throughput.",
		ConstLabels: constLabels,
	}, []string{"job"})
	runLoopLag := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "scene_rollup_runloop_lag_seconds",
		Help:        "Rollup run loop lag beyond the configured interval.",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		ConstLabels: constLabels,
	})

	registerer.MustRegister(jobRuns, jobDuration, jobErrors, venuesRolledUp, runLoopLag)

	return &RollupMetrics{
		jobRuns:        jobRuns,
		jobDuration:    jobDuration,
		jobErrors:      jobErrors,
		venuesRolledUp: venuesRolledUp,
		runLoopLag:     runLoopLag,
	}
}

// IncJobRun increments the run counter for a rollup job.
func (m *RollupMetrics) IncJobRun(job string) {
	if m == nil || m.jobRuns == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

// ObserveJobDuration records rollup job latency in seconds.
func (m *RollupMetrics) ObserveJobDuration(job string, duration time.Duration) {
	if m == nil || m.jobDuration == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

// IncJobError increments the rollup job error counter with classification.
func (m *RollupMetrics) IncJobError(job string, err error) {
	if m == nil || m.jobErrors == nil || err == nil {
		return
	}
	m.jobErrors.WithLabelValues(job, classifyRollupError(err)).Inc()
}

// AddVenuesRolledUp increments the rolled-up venue counter by count.
func (m *RollupMetrics) AddVenuesRolledUp(job string, count int) {
	if m == nil || m.venuesRolledUp == nil || count <= 0 {
		return
	}
	m.venuesRolledUp.WithLabelValues(job).Add(float64(count))
}

// ObserveRunLoopLag records lag between the scheduled tick and actual run start.
func (m *RollupMetrics) ObserveRunLoopLag(duration time.Duration) {
	if m == nil || m.runLoopLag == nil {
		return
	}
	lag := duration
	if lag < 0 {
		lag = 0
	}
	m.runLoopLag.Observe(lag.Seconds())
}

func classifyRollupError(err error) string {
	if err == nil {
		return RollupErrorReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return RollupErrorReasonDeadlineExceeded
	}
	if isUniqueViolation(err) {
		return RollupErrorReasonUniqueViolation
	}
	if isDBError(err) {
		return RollupErrorReasonDB
	}
	return RollupErrorReasonUnknown
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return hasPGCode(err, "23505")
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

func isDBError(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	if errors.Is(err, gorm.ErrInvalidDB) ||
		errors.Is(err, gorm.ErrInvalidTransaction) ||
		errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr)
}
