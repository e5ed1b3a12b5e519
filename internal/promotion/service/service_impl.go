package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/sceneworks/scene/internal/clock"
	"github.com/sceneworks/scene/internal/events"
	"github.com/sceneworks/scene/internal/identity"
	promotiondomain "github.com/sceneworks/scene/internal/promotion/domain"
	venuedomain "github.com/sceneworks/scene/internal/venue/domain"
	pkgdb "github.com/sceneworks/scene/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    promotiondomain.Repository
	Venues  venuedomain.Repository
	Emitter *events.Emitter `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    promotiondomain.Repository
	venues  venuedomain.Repository
	emitter *events.Emitter
}

func New(p Params) promotiondomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("promotion.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		venues:  p.Venues,
		emitter: p.Emitter,
	}
}

func (s *Service) Create(ctx context.Context, req promotiondomain.CreatePromotionRequest) (*promotiondomain.Promotion, error) {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok {
		return nil, identity.ErrUnauthenticated
	}

	venueID, err := snowflake.ParseString(strings.TrimSpace(req.VenueID))
	if err != nil {
		return nil, promotiondomain.ErrVenueNotFound
	}

	venue, err := s.venues.FindByID(ctx, s.db, venueID)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, promotiondomain.ErrVenueNotFound
	}
	if actor.Role != identity.RoleVenueManager || venue.ManagerID != actor.UserID {
		return nil, promotiondomain.ErrForbidden
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, promotiondomain.ErrInvalidTitle
	}
	if req.StartsAt != nil && req.EndsAt != nil && req.EndsAt.Before(*req.StartsAt) {
		return nil, promotiondomain.ErrInvalidWindow
	}

	now := s.clock.Now()
	p := &promotiondomain.Promotion{
		ID:          s.genID.Generate(),
		VenueID:     venueID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Active:      true,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, p); err != nil {
		return nil, err
	}

	s.emitUpdated(ctx, p)
	return p, nil
}

func (s *Service) Update(ctx context.Context, req promotiondomain.UpdatePromotionRequest) (*promotiondomain.Promotion, error) {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok {
		return nil, identity.ErrUnauthenticated
	}

	promotionID, err := snowflake.ParseString(strings.TrimSpace(req.PromotionID))
	if err != nil {
		return nil, promotiondomain.ErrPromotionNotFound
	}

	p, err := s.repo.FindByID(ctx, s.db, promotionID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, promotiondomain.ErrPromotionNotFound
	}

	venue, err := s.venues.FindByID(ctx, s.db, p.VenueID)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, promotiondomain.ErrVenueNotFound
	}
	if actor.Role != identity.RoleVenueManager || venue.ManagerID != actor.UserID {
		return nil, promotiondomain.ErrForbidden
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, promotiondomain.ErrInvalidTitle
		}
		p.Title = title
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if req.StartsAt != nil {
		p.StartsAt = req.StartsAt
	}
	if req.EndsAt != nil {
		p.EndsAt = req.EndsAt
	}
	if p.StartsAt != nil && p.EndsAt != nil && p.EndsAt.Before(*p.StartsAt) {
		return nil, promotiondomain.ErrInvalidWindow
	}

	p.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, p); err != nil {
		return nil, err
	}

	s.emitUpdated(ctx, p)
	return p, nil
}

func (s *Service) ListForVenue(ctx context.Context, venueID string, activeOnly bool) ([]promotiondomain.Promotion, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(venueID))
	if err != nil {
		return nil, promotiondomain.ErrVenueNotFound
	}
	return s.repo.ListForVenue(ctx, s.db, id, activeOnly)
}

// Redeem marks the promotion as used by the caller. The unique index on
// (promotion_id, user_id) makes a second redemption fail regardless of
// request interleaving.
func (s *Service) Redeem(ctx context.Context, promotionID string) (*promotiondomain.Redemption, error) {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok {
		return nil, identity.ErrUnauthenticated
	}

	id, err := snowflake.ParseString(strings.TrimSpace(promotionID))
	if err != nil {
		return nil, promotiondomain.ErrPromotionNotFound
	}

	p, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, promotiondomain.ErrPromotionNotFound
	}

	now := s.clock.Now()
	if !p.ActiveAt(now) {
		return nil, promotiondomain.ErrNotActive
	}

	redemption := &promotiondomain.Redemption{
		ID:          s.genID.Generate(),
		PromotionID: id,
		UserID:      actor.UserID,
		RedeemedAt:  now,
	}
	if err := s.repo.InsertRedemption(ctx, s.db, redemption); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, promotiondomain.ErrAlreadyRedeemed
		}
		return nil, err
	}

	s.log.Info("promotion redeemed",
		zap.String("promotion_id", id.String()),
		zap.String("user_id", actor.UserID.String()),
	)

	return redemption, nil
}

func (s *Service) emitUpdated(ctx context.Context, p *promotiondomain.Promotion) {
	if s.emitter == nil {
		return
	}
	s.emitter.EmitPromotionUpdated(ctx, p.VenueID, events.PromotionUpdatedEvent{
		PromotionID: p.ID.String(),
		VenueID:     p.VenueID.String(),
		Title:       p.Title,
		Active:      p.Active,
		UpdatedAt:   p.UpdatedAt,
	})
}
