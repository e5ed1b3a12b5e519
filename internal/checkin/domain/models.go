// Package domain contains persistence models and contracts for check-ins.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Checkin records a user's presence at a venue. A row with a nil
// CheckedOutAt is an open visit; closing it stamps the checkout time
// and the computed duration.
type Checkin struct {
	ID              snowflake.ID  `gorm:"primaryKey" json:"id"`
	UserID          snowflake.ID  `gorm:"not null;index" json:"userId"`
	VenueID         snowflake.ID  `gorm:"not null;index" json:"venueId"`
	EventID         *snowflake.ID `gorm:"index" json:"eventId"`
	Latitude        *float64      `json:"lat"`
	Longitude       *float64      `json:"lng"`
	CheckedInAt     time.Time     `gorm:"not null" json:"checkedInAt"`
	CheckedOutAt    *time.Time    `json:"checkedOutAt"`
	DurationMinutes *int64        `json:"durationMinutes"`
	Rating          *int          `json:"rating"`
	Review          *string       `json:"review"`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Checkin) TableName() string { return "checkins" }

// Open reports whether the visit is still in progress.
func (c Checkin) Open() bool { return c.CheckedOutAt == nil }
