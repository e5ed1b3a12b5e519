// Package domain contains persistence models and contracts for promotions.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Promotion is a venue offer users can redeem while it is active.
type Promotion struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	VenueID     snowflake.ID `gorm:"not null;index" json:"venueId"`
	Title       string       `gorm:"type:text;not null" json:"title"`
	Description string       `gorm:"type:text;not null;default:''" json:"description"`
	Active      bool         `gorm:"not null;default:true" json:"active"`
	StartsAt    *time.Time   `json:"startsAt"`
	EndsAt      *time.Time   `json:"endsAt"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Promotion) TableName() string { return "promotions" }

// ActiveAt reports whether the promotion can be redeemed at the given time.
func (p Promotion) ActiveAt(t time.Time) bool {
	if !p.Active {
		return false
	}
	if p.StartsAt != nil && t.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && t.After(*p.EndsAt) {
		return false
	}
	return true
}

// Redemption records a user redeeming a promotion. One per user.
type Redemption struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	PromotionID snowflake.ID `gorm:"not null;uniqueIndex:uq_promotion_redemptions_user,priority:1" json:"promotionId"`
	UserID      snowflake.ID `gorm:"not null;uniqueIndex:uq_promotion_redemptions_user,priority:2" json:"userId"`
	RedeemedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"redeemedAt"`
}

// TableName sets the database table name.
func (Redemption) TableName() string { return "promotion_redemptions" }
