package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	photodomain "github.com/sceneworks/scene/internal/photo/domain"
	"github.com/sceneworks/scene/pkg/db/option"
	pkgrepo "github.com/sceneworks/scene/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() photodomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *photodomain.Photo) error {
	return pkgrepo.ProvideStore[photodomain.Photo](db).Create(ctx, p)
}

func (r *repo) ListForVenue(ctx context.Context, db *gorm.DB, venueID snowflake.ID, limit int) ([]photodomain.Photo, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := pkgrepo.ProvideStore[photodomain.Photo](db).Find(ctx,
		&photodomain.Photo{VenueID: venueID},
		option.WithOrder("created_at DESC"),
		option.WithLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	photos := make([]photodomain.Photo, 0, len(rows))
	for _, row := range rows {
		photos = append(photos, *row)
	}
	return photos, nil
}
