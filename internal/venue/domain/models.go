// Package domain contains persistence models and contracts for venues.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Venue is a physical place users can check in to. The occupancy
// counters are maintained by the check-in write path and are read-only
// through this package.
type Venue struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	Name            string       `gorm:"type:text;not null" json:"name"`
	Slug            string       `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	Category        string       `gorm:"type:text;not null;default:''" json:"category"`
	Description     string       `gorm:"type:text;not null;default:''" json:"description"`
	Address         string       `gorm:"type:text;not null;default:''" json:"address"`
	Latitude        float64      `gorm:"not null;default:0" json:"latitude"`
	Longitude       float64      `gorm:"not null;default:0" json:"longitude"`
	Capacity        int          `gorm:"not null;default:0" json:"capacity"`
	CurrentCheckins int          `gorm:"not null;default:0" json:"currentCheckins"`
	TotalCheckins   int          `gorm:"not null;default:0" json:"totalCheckins"`
	PhotoCount      int          `gorm:"not null;default:0" json:"photoCount"`
	ManagerID       snowflake.ID `gorm:"index" json:"managerId"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Venue) TableName() string { return "venues" }
