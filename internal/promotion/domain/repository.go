package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, promotion *Promotion) error
	Update(ctx context.Context, db *gorm.DB, promotion *Promotion) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Promotion, error)
	ListForVenue(ctx context.Context, db *gorm.DB, venueID snowflake.ID, activeOnly bool) ([]Promotion, error)
	InsertRedemption(ctx context.Context, db *gorm.DB, redemption *Redemption) error
	RedemptionCounts(ctx context.Context, db *gorm.DB, venueID snowflake.ID, limit int) ([]RedemptionCount, error)
}

// RedemptionCount pairs a promotion with how many users redeemed it.
type RedemptionCount struct {
	PromotionID snowflake.ID `json:"promotionId"`
	Title       string       `json:"title"`
	Redemptions int          `json:"redemptions"`
}
