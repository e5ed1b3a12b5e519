package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/sceneworks/scene/internal/analytics/domain"
	"github.com/sceneworks/scene/internal/clock"
	"github.com/sceneworks/scene/internal/identity"
	promotiondomain "github.com/sceneworks/scene/internal/promotion/domain"
	venuedomain "github.com/sceneworks/scene/internal/venue/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	reportWindowDays  = 7
	topPromotionCount = 5
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       analyticsdomain.Repository
	Venues     venuedomain.Repository
	Promotions promotiondomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       analyticsdomain.Repository
	venues     venuedomain.Repository
	promotions promotiondomain.Repository
}

func New(p Params) analyticsdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("analytics.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		venues:     p.Venues,
		promotions: p.Promotions,
	}
}

// GetVenueAnalytics builds the manager-facing report: trailing seven-day
// daily counts, the hour-of-day profile over the same window, live
// occupancy and the most redeemed promotions.
func (s *Service) GetVenueAnalytics(ctx context.Context, rawVenueID string) (*analyticsdomain.Report, error) {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok {
		return nil, identity.ErrUnauthenticated
	}

	venueID, err := snowflake.ParseString(strings.TrimSpace(rawVenueID))
	if err != nil {
		return nil, analyticsdomain.ErrVenueNotFound
	}

	venue, err := s.venues.FindByID(ctx, s.db, venueID)
	if err != nil {
		return nil, fmt.Errorf("%w: load venue: %v", analyticsdomain.ErrAggregation, err)
	}
	if venue == nil {
		return nil, analyticsdomain.ErrVenueNotFound
	}
	if actor.Role != identity.RoleVenueManager || venue.ManagerID != actor.UserID {
		return nil, analyticsdomain.ErrForbidden
	}

	now := s.clock.Now()
	windowEnd := now
	windowStart := startOfDay(now).AddDate(0, 0, -(reportWindowDays - 1))

	visits, err := s.repo.VisitsBetween(ctx, s.db, venueID, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: load visits: %v", analyticsdomain.ErrAggregation, err)
	}

	topPromotions, err := s.promotions.RedemptionCounts(ctx, s.db, venueID, topPromotionCount)
	if err != nil {
		return nil, fmt.Errorf("%w: load redemptions: %v", analyticsdomain.ErrAggregation, err)
	}

	return &analyticsdomain.Report{
		VenueID:         venueID.String(),
		CurrentCheckins: venue.CurrentCheckins,
		TotalCheckins:   venue.TotalCheckins,
		Capacity:        venue.Capacity,
		Daily:           dailyCounts(visits, windowStart, reportWindowDays),
		Hours:           hourProfile(visits),
		TopPromotions:   topPromotions,
	}, nil
}

// RecordDailyMetrics aggregates the rollup row for the UTC day holding
// the given time. A bucket that already exists is returned untouched,
// so re-runs never rewrite history.
func (s *Service) RecordDailyMetrics(ctx context.Context, rawVenueID string, at time.Time) (*analyticsdomain.VenueAnalytics, error) {
	venueID, err := snowflake.ParseString(strings.TrimSpace(rawVenueID))
	if err != nil {
		return nil, analyticsdomain.ErrVenueNotFound
	}

	venue, err := s.venues.FindByID(ctx, s.db, venueID)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, analyticsdomain.ErrVenueNotFound
	}

	day := startOfDay(at)
	existing, err := s.repo.FindDaily(ctx, s.db, venueID, day)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	visits, err := s.repo.VisitsBetween(ctx, s.db, venueID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("%w: load visits: %v", analyticsdomain.ErrAggregation, err)
	}

	now := s.clock.Now()
	row := &analyticsdomain.VenueAnalytics{
		ID:        s.genID.Generate(),
		VenueID:   venueID,
		Date:      day,
		CreatedAt: now,
		UpdatedAt: now,
	}
	row.TotalCheckins = len(visits)
	row.UniqueVisitors = uniqueVisitors(visits)
	row.AvgDurationMinutes = avgDuration(visits)
	row.PeakHour = peakHour(visits)

	// A racing rollup may have inserted the bucket between the check and
	// here; the conflict-tolerant insert makes whoever won authoritative.
	if err := s.repo.InsertDaily(ctx, s.db, row); err != nil {
		return nil, err
	}

	stored, err := s.repo.FindDaily(ctx, s.db, venueID, day)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		return stored, nil
	}
	return row, nil
}

func (s *Service) DailyHistory(ctx context.Context, rawVenueID string, days int) ([]analyticsdomain.VenueAnalytics, error) {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok {
		return nil, identity.ErrUnauthenticated
	}

	venueID, err := snowflake.ParseString(strings.TrimSpace(rawVenueID))
	if err != nil {
		return nil, analyticsdomain.ErrVenueNotFound
	}

	venue, err := s.venues.FindByID(ctx, s.db, venueID)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, analyticsdomain.ErrVenueNotFound
	}
	if actor.Role != identity.RoleVenueManager || venue.ManagerID != actor.UserID {
		return nil, analyticsdomain.ErrForbidden
	}

	return s.repo.DailyHistory(ctx, s.db, venueID, days)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dailyCounts(visits []analyticsdomain.VisitSample, windowStart time.Time, days int) []analyticsdomain.DailyCount {
	byDay := make(map[string]int, days)
	for _, v := range visits {
		byDay[startOfDay(v.CheckedInAt).Format("2006-01-02")]++
	}

	counts := make([]analyticsdomain.DailyCount, 0, days)
	for i := 0; i < days; i++ {
		date := windowStart.AddDate(0, 0, i).Format("2006-01-02")
		counts = append(counts, analyticsdomain.DailyCount{
			Date:     date,
			Checkins: byDay[date],
		})
	}
	return counts
}

func hourProfile(visits []analyticsdomain.VisitSample) []analyticsdomain.HourCount {
	var byHour [24]int
	for _, v := range visits {
		byHour[v.CheckedInAt.UTC().Hour()]++
	}

	profile := make([]analyticsdomain.HourCount, 24)
	for hour := range byHour {
		profile[hour] = analyticsdomain.HourCount{Hour: hour, Checkins: byHour[hour]}
	}
	return profile
}

func uniqueVisitors(visits []analyticsdomain.VisitSample) int {
	seen := make(map[snowflake.ID]struct{}, len(visits))
	for _, v := range visits {
		seen[v.UserID] = struct{}{}
	}
	return len(seen)
}

// avgDuration averages closed visits only. Open visits have no duration yet.
func avgDuration(visits []analyticsdomain.VisitSample) float64 {
	var total int64
	var closed int
	for _, v := range visits {
		if v.DurationMinutes == nil {
			continue
		}
		total += *v.DurationMinutes
		closed++
	}
	if closed == 0 {
		return 0
	}
	return float64(total) / float64(closed)
}

func peakHour(visits []analyticsdomain.VisitSample) int {
	var byHour [24]int
	for _, v := range visits {
		byHour[v.CheckedInAt.UTC().Hour()]++
	}
	peak := 0
	for hour, count := range byHour {
		if count > byHour[peak] {
			peak = hour
		}
	}
	return peak
}
