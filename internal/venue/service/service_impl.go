package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/sceneworks/scene/internal/clock"
	"github.com/sceneworks/scene/internal/identity"
	venuedomain "github.com/sceneworks/scene/internal/venue/domain"
	pkgdb "github.com/sceneworks/scene/pkg/db"
	"github.com/sceneworks/scene/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageSize  = 20
	maxPageSize      = 100
	defaultRadiusKm  = 5
	maxNearbyResults = 100
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  venuedomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  venuedomain.Repository
}

func New(p Params) venuedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("venue.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req venuedomain.CreateVenueRequest) (*venuedomain.Venue, error) {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok {
		return nil, identity.ErrUnauthenticated
	}
	if actor.Role != identity.RoleVenueManager {
		return nil, venuedomain.ErrForbidden
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, venuedomain.ErrInvalidName
	}
	if req.Capacity < 0 {
		return nil, venuedomain.ErrInvalidCapacity
	}
	if !validCoordinates(req.Latitude, req.Longitude) {
		return nil, venuedomain.ErrInvalidLocation
	}

	id := s.genID.Generate()
	venueSlug, err := s.uniqueSlug(ctx, name, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	v := &venuedomain.Venue{
		ID:          id,
		Name:        name,
		Slug:        venueSlug,
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		Address:     strings.TrimSpace(req.Address),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Capacity:    req.Capacity,
		ManagerID:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, v); err != nil {
		// A concurrent create can claim the slug between the uniqueness
		// read and this insert.
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, venuedomain.ErrSlugTaken
		}
		return nil, err
	}

	s.log.Info("venue created",
		zap.String("venue_id", v.ID.String()),
		zap.String("slug", v.Slug),
	)

	return v, nil
}

func (s *Service) Update(ctx context.Context, req venuedomain.UpdateVenueRequest) (*venuedomain.Venue, error) {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok {
		return nil, identity.ErrUnauthenticated
	}

	venueID, err := snowflake.ParseString(strings.TrimSpace(req.VenueID))
	if err != nil {
		return nil, venuedomain.ErrVenueNotFound
	}

	v, err := s.repo.FindByID(ctx, s.db, venueID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, venuedomain.ErrVenueNotFound
	}
	if actor.Role != identity.RoleVenueManager || v.ManagerID != actor.UserID {
		return nil, venuedomain.ErrForbidden
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, venuedomain.ErrInvalidName
		}
		v.Name = name
	}
	if req.Category != nil {
		v.Category = strings.TrimSpace(*req.Category)
	}
	if req.Description != nil {
		v.Description = strings.TrimSpace(*req.Description)
	}
	if req.Address != nil {
		v.Address = strings.TrimSpace(*req.Address)
	}
	if req.Latitude != nil || req.Longitude != nil {
		lat := v.Latitude
		lng := v.Longitude
		if req.Latitude != nil {
			lat = *req.Latitude
		}
		if req.Longitude != nil {
			lng = *req.Longitude
		}
		if !validCoordinates(lat, lng) {
			return nil, venuedomain.ErrInvalidLocation
		}
		v.Latitude = lat
		v.Longitude = lng
	}
	if req.Capacity != nil {
		if *req.Capacity < 0 {
			return nil, venuedomain.ErrInvalidCapacity
		}
		v.Capacity = *req.Capacity
	}

	v.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, v); err != nil {
		return nil, err
	}

	return v, nil
}

func (s *Service) Get(ctx context.Context, id string) (*venuedomain.Venue, error) {
	venueID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, venuedomain.ErrVenueNotFound
	}

	v, err := s.repo.FindByID(ctx, s.db, venueID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, venuedomain.ErrVenueNotFound
	}
	return v, nil
}

func (s *Service) GetBySlug(ctx context.Context, raw string) (*venuedomain.Venue, error) {
	v, err := s.repo.FindBySlug(ctx, s.db, strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, venuedomain.ErrVenueNotFound
	}
	return v, nil
}

func (s *Service) List(ctx context.Context, req venuedomain.ListVenuesRequest) (venuedomain.ListVenuesResponse, error) {
	limit := int(req.PageSize)
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	var afterID snowflake.ID
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err == nil && cursor.ID != "" {
			if parsed, err := snowflake.ParseString(cursor.ID); err == nil {
				afterID = parsed
			}
		}
	}

	filter := venuedomain.ListFilter{
		NameQuery: req.Query,
		Category:  req.Category,
	}

	// Fetch one extra row to detect a next page.
	venues, err := s.repo.List(ctx, s.db, filter, afterID, limit+1)
	if err != nil {
		return venuedomain.ListVenuesResponse{}, err
	}

	resp := venuedomain.ListVenuesResponse{}
	resp.HasMore = len(venues) > limit
	if resp.HasMore {
		venues = venues[:limit]
	}
	if resp.HasMore && len(venues) > 0 {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: venues[len(venues)-1].ID.String()})
		if err == nil {
			resp.NextPageToken = token
		}
	}
	resp.Venues = venues
	return resp, nil
}

func (s *Service) Nearby(ctx context.Context, req venuedomain.NearbyVenuesRequest) ([]venuedomain.Venue, error) {
	if !validCoordinates(req.Latitude, req.Longitude) {
		return nil, venuedomain.ErrInvalidLocation
	}
	radius := req.RadiusKm
	if radius <= 0 {
		radius = defaultRadiusKm
	}
	limit := req.Limit
	if limit <= 0 || limit > maxNearbyResults {
		limit = defaultPageSize
	}

	return s.repo.Nearby(ctx, s.db, req.Latitude, req.Longitude, radius, limit)
}

func (s *Service) uniqueSlug(ctx context.Context, name string, id snowflake.ID) (string, error) {
	base := slug.Make(name)
	existing, err := s.repo.FindBySlug(ctx, s.db, base)
	if err != nil {
		return "", err
	}
	if existing == nil {
		return base, nil
	}
	return fmt.Sprintf("%s-%s", base, id), nil
}

func validCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
