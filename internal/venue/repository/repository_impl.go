package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	venuedomain "github.com/sceneworks/scene/internal/venue/domain"
	"gorm.io/gorm"
)

// Rough km per degree of latitude. Good enough for bounding-box prefilters.
const kmPerDegree = 111.0

type repo struct{}

func Provide() venuedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, v *venuedomain.Venue) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO venues (id, name, slug, category, description, address, latitude, longitude, capacity, current_checkins, total_checkins, photo_count, manager_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID,
		v.Name,
		v.Slug,
		v.Category,
		v.Description,
		v.Address,
		v.Latitude,
		v.Longitude,
		v.Capacity,
		v.CurrentCheckins,
		v.TotalCheckins,
		v.PhotoCount,
		v.ManagerID,
		v.CreatedAt,
		v.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, v *venuedomain.Venue) error {
	return db.WithContext(ctx).Exec(
		`UPDATE venues
		 SET name = ?, category = ?, description = ?, address = ?, latitude = ?, longitude = ?, capacity = ?, updated_at = ?
		 WHERE id = ?`,
		v.Name,
		v.Category,
		v.Description,
		v.Address,
		v.Latitude,
		v.Longitude,
		v.Capacity,
		v.UpdatedAt,
		v.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*venuedomain.Venue, error) {
	var venue venuedomain.Venue
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM venues WHERE id = ?`, id,
	).Scan(&venue).Error
	if err != nil {
		return nil, err
	}
	if venue.ID == 0 {
		return nil, nil
	}
	return &venue, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*venuedomain.Venue, error) {
	var venue venuedomain.Venue
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM venues WHERE slug = ?`, slug,
	).Scan(&venue).Error
	if err != nil {
		return nil, err
	}
	if venue.ID == 0 {
		return nil, nil
	}
	return &venue, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter venuedomain.ListFilter, afterID snowflake.ID, limit int) ([]venuedomain.Venue, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT * FROM venues WHERE id > ?`
	args := []interface{}{afterID}
	if q := strings.TrimSpace(filter.NameQuery); q != "" {
		query += ` AND LOWER(name) LIKE ?`
		args = append(args, "%"+strings.ToLower(q)+"%")
	}
	if cat := strings.TrimSpace(filter.Category); cat != "" {
		query += ` AND category = ?`
		args = append(args, cat)
	}
	query += ` ORDER BY id ASC LIMIT ?`
	args = append(args, limit)

	var venues []venuedomain.Venue
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&venues).Error; err != nil {
		return nil, err
	}
	return venues, nil
}

func (r *repo) Nearby(ctx context.Context, db *gorm.DB, lat, lng, radiusKm float64, limit int) ([]venuedomain.Venue, error) {
	if limit <= 0 {
		limit = 20
	}
	delta := radiusKm / kmPerDegree
	var venues []venuedomain.Venue
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM venues
		 WHERE latitude BETWEEN ? AND ?
		   AND longitude BETWEEN ? AND ?
		 ORDER BY (latitude - ?) * (latitude - ?) + (longitude - ?) * (longitude - ?) ASC
		 LIMIT ?`,
		lat-delta, lat+delta,
		lng-delta, lng+delta,
		lat, lat,
		lng, lng,
		limit,
	).Scan(&venues).Error
	if err != nil {
		return nil, err
	}
	return venues, nil
}

func (r *repo) IDsAfter(ctx context.Context, db *gorm.DB, after snowflake.ID, limit int) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT id FROM venues WHERE id > ? ORDER BY id ASC LIMIT ?`,
		after,
		limit,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
