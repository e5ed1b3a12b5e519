package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	checkindomain "github.com/sceneworks/scene/internal/checkin/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() checkindomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *checkindomain.Checkin) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO checkins (id, user_id, venue_id, event_id, latitude, longitude, checked_in_at, checked_out_at, duration_minutes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.UserID,
		c.VenueID,
		c.EventID,
		c.Latitude,
		c.Longitude,
		c.CheckedInAt,
		c.CheckedOutAt,
		c.DurationMinutes,
		c.CreatedAt,
		c.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*checkindomain.Checkin, error) {
	var checkin checkindomain.Checkin
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM checkins WHERE id = ?`, id,
	).Scan(&checkin).Error
	if err != nil {
		return nil, err
	}
	if checkin.ID == 0 {
		return nil, nil
	}
	return &checkin, nil
}

func (r *repo) FindOpen(ctx context.Context, db *gorm.DB, userID, venueID snowflake.ID) (*checkindomain.Checkin, error) {
	var checkin checkindomain.Checkin
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM checkins
		 WHERE user_id = ? AND venue_id = ? AND checked_out_at IS NULL`,
		userID,
		venueID,
	).Scan(&checkin).Error
	if err != nil {
		return nil, err
	}
	if checkin.ID == 0 {
		return nil, nil
	}
	return &checkin, nil
}

func (r *repo) FindOpenByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]checkindomain.Checkin, error) {
	var checkins []checkindomain.Checkin
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM checkins
		 WHERE user_id = ? AND checked_out_at IS NULL
		 ORDER BY checked_in_at DESC`,
		userID,
	).Scan(&checkins).Error
	if err != nil {
		return nil, err
	}
	return checkins, nil
}

func (r *repo) Close(ctx context.Context, db *gorm.DB, id snowflake.ID, checkedOutAt time.Time, durationMinutes int64, rating *int, review *string) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE checkins
		 SET checked_out_at = ?, duration_minutes = ?, rating = ?, review = ?, updated_at = ?
		 WHERE id = ? AND checked_out_at IS NULL`,
		checkedOutAt,
		durationMinutes,
		rating,
		review,
		checkedOutAt,
		id,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) HistoryForVenue(ctx context.Context, db *gorm.DB, venueID snowflake.ID, limit int) ([]checkindomain.Checkin, error) {
	if limit <= 0 {
		limit = 50
	}
	var checkins []checkindomain.Checkin
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM checkins
		 WHERE venue_id = ?
		 ORDER BY checked_in_at DESC
		 LIMIT ?`,
		venueID,
		limit,
	).Scan(&checkins).Error
	if err != nil {
		return nil, err
	}
	return checkins, nil
}
