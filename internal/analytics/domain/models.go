// Package domain contains persistence models and contracts for venue analytics.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// VenueAnalytics is the persisted daily rollup for one venue and day.
// Re-running the rollup for the same day updates the row in place.
type VenueAnalytics struct {
	ID                 snowflake.ID `gorm:"primaryKey" json:"id"`
	VenueID            snowflake.ID `gorm:"not null;uniqueIndex:uq_venue_analytics_day,priority:1" json:"venueId"`
	Date               time.Time    `gorm:"type:date;not null;uniqueIndex:uq_venue_analytics_day,priority:2" json:"date"`
	TotalCheckins      int          `gorm:"not null;default:0" json:"totalCheckins"`
	UniqueVisitors     int          `gorm:"not null;default:0" json:"uniqueVisitors"`
	AvgDurationMinutes float64      `gorm:"not null;default:0" json:"avgDurationMinutes"`
	PeakHour           int          `gorm:"not null;default:0" json:"peakHour"`
	CreatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (VenueAnalytics) TableName() string { return "venue_analytics" }

// VisitSample is the slice of a check-in row the aggregator needs.
type VisitSample struct {
	UserID          snowflake.ID `json:"userId"`
	CheckedInAt     time.Time    `json:"checkedInAt"`
	DurationMinutes *int64       `json:"durationMinutes"`
}

// DailyCount is one day's check-in total inside a report window.
type DailyCount struct {
	Date     string `json:"date"`
	Checkins int    `json:"checkins"`
}

// HourCount is the check-in total for one hour of day, 0 through 23.
type HourCount struct {
	Hour     int `json:"hour"`
	Checkins int `json:"checkins"`
}
