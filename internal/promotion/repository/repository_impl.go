package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	promotiondomain "github.com/sceneworks/scene/internal/promotion/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() promotiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *promotiondomain.Promotion) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO promotions (id, venue_id, title, description, active, starts_at, ends_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.VenueID,
		p.Title,
		p.Description,
		p.Active,
		p.StartsAt,
		p.EndsAt,
		p.CreatedAt,
		p.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, p *promotiondomain.Promotion) error {
	return db.WithContext(ctx).Exec(
		`UPDATE promotions
		 SET title = ?, description = ?, active = ?, starts_at = ?, ends_at = ?, updated_at = ?
		 WHERE id = ?`,
		p.Title,
		p.Description,
		p.Active,
		p.StartsAt,
		p.EndsAt,
		p.UpdatedAt,
		p.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*promotiondomain.Promotion, error) {
	var promotion promotiondomain.Promotion
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM promotions WHERE id = ?`, id,
	).Scan(&promotion).Error
	if err != nil {
		return nil, err
	}
	if promotion.ID == 0 {
		return nil, nil
	}
	return &promotion, nil
}

func (r *repo) ListForVenue(ctx context.Context, db *gorm.DB, venueID snowflake.ID, activeOnly bool) ([]promotiondomain.Promotion, error) {
	query := `SELECT * FROM promotions WHERE venue_id = ?`
	if activeOnly {
		query += ` AND active`
	}
	query += ` ORDER BY created_at DESC`

	var promotions []promotiondomain.Promotion
	err := db.WithContext(ctx).Raw(query, venueID).Scan(&promotions).Error
	if err != nil {
		return nil, err
	}
	return promotions, nil
}

func (r *repo) InsertRedemption(ctx context.Context, db *gorm.DB, redemption *promotiondomain.Redemption) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO promotion_redemptions (id, promotion_id, user_id, redeemed_at)
		 VALUES (?, ?, ?, ?)`,
		redemption.ID,
		redemption.PromotionID,
		redemption.UserID,
		redemption.RedeemedAt,
	).Error
}

func (r *repo) RedemptionCounts(ctx context.Context, db *gorm.DB, venueID snowflake.ID, limit int) ([]promotiondomain.RedemptionCount, error) {
	if limit <= 0 {
		limit = 5
	}
	var counts []promotiondomain.RedemptionCount
	err := db.WithContext(ctx).Raw(
		`SELECT p.id AS promotion_id, p.title, COUNT(r.id) AS redemptions
		 FROM promotions p
		 LEFT JOIN promotion_redemptions r ON r.promotion_id = p.id
		 WHERE p.venue_id = ?
		 GROUP BY p.id, p.title
		 ORDER BY redemptions DESC, p.id ASC
		 LIMIT ?`,
		venueID,
		limit,
	).Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
