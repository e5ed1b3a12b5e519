package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/sceneworks/scene/internal/clock"
	"github.com/sceneworks/scene/internal/events"
	"github.com/sceneworks/scene/internal/identity"
	"github.com/sceneworks/scene/internal/occupancy"
	photodomain "github.com/sceneworks/scene/internal/photo/domain"
	venuedomain "github.com/sceneworks/scene/internal/venue/domain"
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
	Repo    photodomain.Repository
	Venues  venuedomain.Repository
	Ledger  *occupancy.Ledger
	Emitter *events.Emitter `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    photodomain.Repository
	venues  venuedomain.Repository
	ledger  *occupancy.Ledger
	emitter *events.Emitter
}

func New(p Params) photodomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("photo.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		venues:  p.Venues,
		ledger:  p.Ledger,
		emitter: p.Emitter,
	}
}

// Add records a photo and bumps the venue's photo counter in the same
// transaction. The newPhoto event goes out after the commit.
func (s *Service) Add(ctx context.Context, req photodomain.AddPhotoRequest) (*photodomain.AddPhotoResponse, error) {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok {
		return nil, identity.ErrUnauthenticated
	}

	venueID, err := snowflake.ParseString(strings.TrimSpace(req.VenueID))
	if err != nil {
		return nil, photodomain.ErrVenueNotFound
	}

	rawURL := strings.TrimSpace(req.URL)
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, photodomain.ErrInvalidURL
	}

	now := s.clock.Now()
	photo := &photodomain.Photo{
		ID:        s.genID.Generate(),
		VenueID:   venueID,
		UserID:    actor.UserID,
		URL:       rawURL,
		Caption:   strings.TrimSpace(req.Caption),
		CreatedAt: now,
	}

	var photoCount int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		venue, err := s.venues.FindByID(ctx, tx, venueID)
		if err != nil {
			return err
		}
		if venue == nil {
			return photodomain.ErrVenueNotFound
		}

		if err := s.repo.Insert(ctx, tx, photo); err != nil {
			return err
		}

		photoCount, err = s.ledger.IncrementPhotoCount(ctx, tx, venueID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("photo added",
		zap.String("photo_id", photo.ID.String()),
		zap.String("venue_id", venueID.String()),
	)
	if s.emitter != nil {
		s.emitter.EmitNewPhoto(ctx, venueID, events.NewPhotoEvent{
			PhotoID:   photo.ID.String(),
			VenueID:   venueID.String(),
			UserID:    actor.UserID.String(),
			URL:       photo.URL,
			CreatedAt: photo.CreatedAt,
		})
	}

	return &photodomain.AddPhotoResponse{
		Photo:      *photo,
		PhotoCount: photoCount,
	}, nil
}

func (s *Service) ListForVenue(ctx context.Context, venueID string, limit int) ([]photodomain.Photo, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(venueID))
	if err != nil {
		return nil, photodomain.ErrVenueNotFound
	}
	return s.repo.ListForVenue(ctx, s.db, id, limit)
}
