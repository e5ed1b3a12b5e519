package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, checkin *Checkin) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Checkin, error)
	FindOpen(ctx context.Context, db *gorm.DB, userID, venueID snowflake.ID) (*Checkin, error)
	FindOpenByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Checkin, error)
	// Close stamps the checkout on an open row. Returns false when the row
	// was already closed by a concurrent request.
	Close(ctx context.Context, db *gorm.DB, id snowflake.ID, checkedOutAt time.Time, durationMinutes int64, rating *int, review *string) (bool, error)
	HistoryForVenue(ctx context.Context, db *gorm.DB, venueID snowflake.ID, limit int) ([]Checkin, error)
}
