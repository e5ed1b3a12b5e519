package service

import (
	"context"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	checkindomain "github.com/sceneworks/scene/internal/checkin/domain"
	"github.com/sceneworks/scene/internal/clock"
	"github.com/sceneworks/scene/internal/events"
	"github.com/sceneworks/scene/internal/identity"
	obsmetrics "github.com/sceneworks/scene/internal/observability/metrics"
	"github.com/sceneworks/scene/internal/occupancy"
	venuedomain "github.com/sceneworks/scene/internal/venue/domain"
	pkgdb "github.com/sceneworks/scene/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// checkinProximityKm bounds how far a self-reported position may be
// from the venue before the check-in is refused.
const checkinProximityKm = 1.0

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    checkindomain.Repository
	Venues  venuedomain.Repository
	Ledger  *occupancy.Ledger
	Emitter *events.Emitter     `optional:"true"`
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    checkindomain.Repository
	venues  venuedomain.Repository
	ledger  *occupancy.Ledger
	emitter *events.Emitter
	metrics *obsmetrics.Metrics
}

func New(p Params) checkindomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("checkin.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		venues:  p.Venues,
		ledger:  p.Ledger,
		emitter: p.Emitter,
		metrics: p.Metrics,
	}
}

// CheckIn opens a visit. The check-in row and the occupancy counter
// change inside one transaction, so a reader never sees one without the
// other. Live events go out only after the commit.
func (s *Service) CheckIn(ctx context.Context, req checkindomain.CheckInRequest) (*checkindomain.CheckInResponse, error) {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok {
		return nil, identity.ErrUnauthenticated
	}

	venueID, err := snowflake.ParseString(strings.TrimSpace(req.VenueID))
	if err != nil {
		return nil, checkindomain.ErrVenueNotFound
	}

	// Event check-ins carry an opaque reference to the event; the row is
	// tied to the venue either way.
	var eventID *snowflake.ID
	if raw := strings.TrimSpace(req.EventID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, checkindomain.ErrInvalidEvent
		}
		eventID = &id
	}

	now := s.clock.Now()
	checkin := &checkindomain.Checkin{
		ID:          s.genID.Generate(),
		UserID:      actor.UserID,
		VenueID:     venueID,
		EventID:     eventID,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		CheckedInAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var currentCheckins, totalCheckins int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		venue, err := s.venues.FindByID(ctx, tx, venueID)
		if err != nil {
			return err
		}
		if venue == nil {
			return checkindomain.ErrVenueNotFound
		}

		// Clients that report a position must actually be near the venue.
		if req.Latitude != nil && req.Longitude != nil {
			if distanceKm(*req.Latitude, *req.Longitude, venue.Latitude, venue.Longitude) > checkinProximityKm {
				return checkindomain.ErrTooFarAway
			}
		}

		open, err := s.repo.FindOpen(ctx, tx, actor.UserID, venueID)
		if err != nil {
			return err
		}
		if open != nil {
			return checkindomain.ErrAlreadyCheckedIn
		}

		if err := s.repo.Insert(ctx, tx, checkin); err != nil {
			// The partial unique index catches races the read above missed.
			if pkgdb.IsDuplicateKeyErr(err) {
				return checkindomain.ErrAlreadyCheckedIn
			}
			return err
		}

		currentCheckins, totalCheckins, err = s.ledger.IncrementCheckins(ctx, tx, venueID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user checked in",
		zap.String("checkin_id", checkin.ID.String()),
		zap.String("venue_id", venueID.String()),
		zap.Int("current_checkins", currentCheckins),
	)
	s.metrics.RecordCheckin(ctx, venueID.String())
	if s.emitter != nil {
		s.emitter.EmitCheckin(ctx, venueID, actor.UserID, events.CheckinEvent{
			VenueID:         venueID.String(),
			UserID:          actor.UserID.String(),
			CurrentCheckins: currentCheckins,
			TotalCheckins:   totalCheckins,
		})
	}

	return &checkindomain.CheckInResponse{
		Checkin:         *checkin,
		CurrentCheckins: currentCheckins,
		TotalCheckins:   totalCheckins,
	}, nil
}

// CheckOut closes a visit. Closing is a conditional update guarded by
// checked_out_at IS NULL, so concurrent checkouts of the same visit
// decrement the counter exactly once.
func (s *Service) CheckOut(ctx context.Context, req checkindomain.CheckOutRequest) (*checkindomain.CheckOutResponse, error) {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok {
		return nil, identity.ErrUnauthenticated
	}

	checkinID, err := snowflake.ParseString(strings.TrimSpace(req.CheckinID))
	if err != nil {
		return nil, checkindomain.ErrCheckinNotFound
	}

	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return nil, checkindomain.ErrInvalidRating
	}
	var review *string
	if trimmed := strings.TrimSpace(req.Review); trimmed != "" {
		review = &trimmed
	}

	now := s.clock.Now()
	var (
		closed          checkindomain.Checkin
		currentCheckins int
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		checkin, err := s.repo.FindByID(ctx, tx, checkinID)
		if err != nil {
			return err
		}
		if checkin == nil {
			return checkindomain.ErrCheckinNotFound
		}
		if checkin.UserID != actor.UserID {
			return checkindomain.ErrNotOwner
		}

		duration := int64(now.Sub(checkin.CheckedInAt).Minutes())
		if duration < 0 {
			duration = 0
		}

		ok, err := s.repo.Close(ctx, tx, checkinID, now, duration, req.Rating, review)
		if err != nil {
			return err
		}
		if !ok {
			return checkindomain.ErrAlreadyCheckedOut
		}

		currentCheckins, err = s.ledger.DecrementCheckins(ctx, tx, checkin.VenueID)
		if err != nil {
			return err
		}

		closed = *checkin
		closed.CheckedOutAt = &now
		closed.DurationMinutes = &duration
		closed.Rating = req.Rating
		closed.Review = review
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user checked out",
		zap.String("checkin_id", closed.ID.String()),
		zap.String("venue_id", closed.VenueID.String()),
		zap.Int64("duration_minutes", *closed.DurationMinutes),
		zap.Int("current_checkins", currentCheckins),
	)
	s.metrics.RecordCheckout(ctx, closed.VenueID.String(), *closed.DurationMinutes)
	if s.emitter != nil {
		s.emitter.EmitCheckout(ctx, closed.VenueID, actor.UserID, events.CheckoutEvent{
			VenueID:         closed.VenueID.String(),
			UserID:          actor.UserID.String(),
			CurrentCheckins: currentCheckins,
			DurationMinutes: *closed.DurationMinutes,
		})
	}

	return &checkindomain.CheckOutResponse{
		Checkin:         closed,
		CurrentCheckins: currentCheckins,
	}, nil
}

// Current returns the caller's open visits.
func (s *Service) Current(ctx context.Context) ([]checkindomain.Checkin, error) {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok {
		return nil, identity.ErrUnauthenticated
	}
	return s.repo.FindOpenByUser(ctx, s.db, actor.UserID)
}

// HistoryForVenue returns recent visits to a venue, newest first. Only
// the venue's manager may read it.
func (s *Service) HistoryForVenue(ctx context.Context, venueID string, limit int) ([]checkindomain.Checkin, error) {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok {
		return nil, identity.ErrUnauthenticated
	}

	id, err := snowflake.ParseString(strings.TrimSpace(venueID))
	if err != nil {
		return nil, checkindomain.ErrVenueNotFound
	}

	venue, err := s.venues.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, checkindomain.ErrVenueNotFound
	}
	if actor.Role != identity.RoleVenueManager || venue.ManagerID != actor.UserID {
		return nil, venuedomain.ErrForbidden
	}

	return s.repo.HistoryForVenue(ctx, s.db, id, limit)
}

// distanceKm is the haversine great-circle distance between two points.
func distanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0

	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
