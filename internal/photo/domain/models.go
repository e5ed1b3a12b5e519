// Package domain contains persistence models and contracts for venue photos.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Photo is an image a user posted to a venue. Storage lives elsewhere;
// only the URL is recorded here.
type Photo struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	VenueID   snowflake.ID `gorm:"not null;index" json:"venueId"`
	UserID    snowflake.ID `gorm:"not null" json:"userId"`
	URL       string       `gorm:"type:text;not null" json:"url"`
	Caption   string       `gorm:"type:text;not null;default:''" json:"caption"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName sets the database table name.
func (Photo) TableName() string { return "photos" }
