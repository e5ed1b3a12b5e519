package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/sceneworks/scene/internal/analytics/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() analyticsdomain.Repository {
	return &repo{}
}

func (r *repo) VisitsBetween(ctx context.Context, db *gorm.DB, venueID snowflake.ID, from, to time.Time) ([]analyticsdomain.VisitSample, error) {
	var samples []analyticsdomain.VisitSample
	err := db.WithContext(ctx).Raw(
		`SELECT user_id, checked_in_at, duration_minutes
		 FROM checkins
		 WHERE venue_id = ? AND checked_in_at >= ? AND checked_in_at < ?
		 ORDER BY checked_in_at ASC`,
		venueID,
		from,
		to,
	).Scan(&samples).Error
	if err != nil {
		return nil, err
	}
	return samples, nil
}

func (r *repo) InsertDaily(ctx context.Context, db *gorm.DB, row *analyticsdomain.VenueAnalytics) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO venue_analytics (id, venue_id, date, total_checkins, unique_visitors, avg_duration_minutes, peak_hour, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (venue_id, date) DO NOTHING`,
		row.ID,
		row.VenueID,
		row.Date,
		row.TotalCheckins,
		row.UniqueVisitors,
		row.AvgDurationMinutes,
		row.PeakHour,
		row.CreatedAt,
		row.UpdatedAt,
	).Error
}

func (r *repo) FindDaily(ctx context.Context, db *gorm.DB, venueID snowflake.ID, date time.Time) (*analyticsdomain.VenueAnalytics, error) {
	var row analyticsdomain.VenueAnalytics
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM venue_analytics WHERE venue_id = ? AND date = ?`,
		venueID,
		date,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) DailyHistory(ctx context.Context, db *gorm.DB, venueID snowflake.ID, days int) ([]analyticsdomain.VenueAnalytics, error) {
	if days <= 0 {
		days = 30
	}
	var rows []analyticsdomain.VenueAnalytics
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM venue_analytics
		 WHERE venue_id = ?
		 ORDER BY date DESC
		 LIMIT ?`,
		venueID,
		days,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
