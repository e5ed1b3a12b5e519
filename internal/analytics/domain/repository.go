package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	VisitsBetween(ctx context.Context, db *gorm.DB, venueID snowflake.ID, from, to time.Time) ([]VisitSample, error)
	// InsertDaily stores a new rollup row. An existing (venue, date)
	// bucket is left untouched.
	InsertDaily(ctx context.Context, db *gorm.DB, row *VenueAnalytics) error
	FindDaily(ctx context.Context, db *gorm.DB, venueID snowflake.ID, date time.Time) (*VenueAnalytics, error)
	DailyHistory(ctx context.Context, db *gorm.DB, venueID snowflake.ID, days int) ([]VenueAnalytics, error)
}
