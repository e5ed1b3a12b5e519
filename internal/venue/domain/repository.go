package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows a venue listing. Empty fields match everything.
type ListFilter struct {
	NameQuery string
	Category  string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, venue *Venue) error
	Update(ctx context.Context, db *gorm.DB, venue *Venue) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Venue, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Venue, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, afterID snowflake.ID, limit int) ([]Venue, error)
	Nearby(ctx context.Context, db *gorm.DB, lat, lng, radiusKm float64, limit int) ([]Venue, error)
	// IDsAfter returns up to limit venue ids greater than after, in
	// ascending order. Page with the last returned id.
	IDsAfter(ctx context.Context, db *gorm.DB, after snowflake.ID, limit int) ([]snowflake.ID, error)
}
