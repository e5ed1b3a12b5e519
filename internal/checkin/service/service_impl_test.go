package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	checkindomain "github.com/sceneworks/scene/internal/checkin/domain"
	checkinrepo "github.com/sceneworks/scene/internal/checkin/repository"
	"github.com/sceneworks/scene/internal/clock"
	"github.com/sceneworks/scene/internal/identity"
	"github.com/sceneworks/scene/internal/occupancy"
	venuedomain "github.com/sceneworks/scene/internal/venue/domain"
	venuerepo "github.com/sceneworks/scene/internal/venue/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestCheckInHappyPath(t *testing.T) {
	node := mustNode(t)
	venueID := node.Generate()
	userID := node.Generate()

	svc, db, _ := setupCheckinService(t, node, time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	seedVenue(t, db, venueID, node.Generate(), 100)
	ctx := customerContext(userID)

	resp, err := svc.CheckIn(ctx, checkindomain.CheckInRequest{VenueID: venueID.String()})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if resp.CurrentCheckins != 1 {
		t.Fatalf("expected occupancy 1, got %d", resp.CurrentCheckins)
	}
	if !resp.Checkin.Open() {
		t.Fatalf("expected an open visit")
	}
	if got := venueOccupancy(t, db, venueID); got != 1 {
		t.Fatalf("expected stored occupancy 1, got %d", got)
	}
}

func TestCheckInTwiceSameVenueRejected(t *testing.T) {
	node := mustNode(t)
	venueID := node.Generate()
	userID := node.Generate()

	svc, db, _ := setupCheckinService(t, node, time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	seedVenue(t, db, venueID, node.Generate(), 100)
	ctx := customerContext(userID)

	if _, err := svc.CheckIn(ctx, checkindomain.CheckInRequest{VenueID: venueID.String()}); err != nil {
		t.Fatalf("first check in: %v", err)
	}

	_, err := svc.CheckIn(ctx, checkindomain.CheckInRequest{VenueID: venueID.String()})
	if !errors.Is(err, checkindomain.ErrAlreadyCheckedIn) {
		t.Fatalf("expected ErrAlreadyCheckedIn, got %v", err)
	}
	if got := venueOccupancy(t, db, venueID); got != 1 {
		t.Fatalf("expected occupancy unchanged at 1, got %d", got)
	}
}

func TestCheckInDifferentVenuesAllowed(t *testing.T) {
	node := mustNode(t)
	venueA := node.Generate()
	venueB := node.Generate()
	userID := node.Generate()

	svc, db, _ := setupCheckinService(t, node, time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	seedVenue(t, db, venueA, node.Generate(), 100)
	seedVenue(t, db, venueB, node.Generate(), 100)
	ctx := customerContext(userID)

	if _, err := svc.CheckIn(ctx, checkindomain.CheckInRequest{VenueID: venueA.String()}); err != nil {
		t.Fatalf("check in venue A: %v", err)
	}
	if _, err := svc.CheckIn(ctx, checkindomain.CheckInRequest{VenueID: venueB.String()}); err != nil {
		t.Fatalf("check in venue B: %v", err)
	}

	open, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("expected 2 open visits, got %d", len(open))
	}
}

func TestCheckInUnknownVenue(t *testing.T) {
	node := mustNode(t)
	userID := node.Generate()

	svc, _, _ := setupCheckinService(t, node, time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	ctx := customerContext(userID)

	_, err := svc.CheckIn(ctx, checkindomain.CheckInRequest{VenueID: node.Generate().String()})
	if !errors.Is(err, checkindomain.ErrVenueNotFound) {
		t.Fatalf("expected ErrVenueNotFound, got %v", err)
	}
}

func TestCheckOutStampsDuration(t *testing.T) {
	node := mustNode(t)
	venueID := node.Generate()
	userID := node.Generate()

	svc, db, clk := setupCheckinService(t, node, time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	seedVenue(t, db, venueID, node.Generate(), 100)
	ctx := customerContext(userID)

	checkedIn, err := svc.CheckIn(ctx, checkindomain.CheckInRequest{VenueID: venueID.String()})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}

	clk.Advance(95 * time.Minute)

	resp, err := svc.CheckOut(ctx, checkindomain.CheckOutRequest{CheckinID: checkedIn.Checkin.ID.String()})
	if err != nil {
		t.Fatalf("check out: %v", err)
	}
	if resp.Checkin.DurationMinutes == nil || *resp.Checkin.DurationMinutes != 95 {
		t.Fatalf("expected 95 minute visit, got %v", resp.Checkin.DurationMinutes)
	}
	if resp.CurrentCheckins != 0 {
		t.Fatalf("expected occupancy back to 0, got %d", resp.CurrentCheckins)
	}
	if got := venueOccupancy(t, db, venueID); got != 0 {
		t.Fatalf("expected stored occupancy 0, got %d", got)
	}
}

func TestCheckInProximityGuard(t *testing.T) {
	node := mustNode(t)
	venueID := node.Generate()
	userID := node.Generate()

	svc, db, _ := setupCheckinService(t, node, time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	seedVenue(t, db, venueID, node.Generate(), 100)
	// Alexanderplatz.
	if err := db.Exec(`UPDATE venues SET latitude = 52.5219, longitude = 13.4132 WHERE id = ?`, venueID).Error; err != nil {
		t.Fatalf("set venue position: %v", err)
	}
	ctx := customerContext(userID)

	farLat, farLng := 48.8566, 2.3522
	_, err := svc.CheckIn(ctx, checkindomain.CheckInRequest{
		VenueID:   venueID.String(),
		Latitude:  &farLat,
		Longitude: &farLng,
	})
	if !errors.Is(err, checkindomain.ErrTooFarAway) {
		t.Fatalf("expected ErrTooFarAway, got %v", err)
	}

	nearLat, nearLng := 52.5225, 13.4110
	if _, err := svc.CheckIn(ctx, checkindomain.CheckInRequest{
		VenueID:   venueID.String(),
		Latitude:  &nearLat,
		Longitude: &nearLng,
	}); err != nil {
		t.Fatalf("nearby check in: %v", err)
	}
}

func TestCheckOutStoresRatingAndReview(t *testing.T) {
	node := mustNode(t)
	venueID := node.Generate()
	userID := node.Generate()

	svc, db, clk := setupCheckinService(t, node, time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	seedVenue(t, db, venueID, node.Generate(), 100)
	ctx := customerContext(userID)

	checkedIn, err := svc.CheckIn(ctx, checkindomain.CheckInRequest{VenueID: venueID.String()})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}

	clk.Advance(30 * time.Minute)

	rating := 4
	resp, err := svc.CheckOut(ctx, checkindomain.CheckOutRequest{
		CheckinID: checkedIn.Checkin.ID.String(),
		Rating:    &rating,
		Review:    "  great crowd  ",
	})
	if err != nil {
		t.Fatalf("check out: %v", err)
	}
	if resp.Checkin.Rating == nil || *resp.Checkin.Rating != 4 {
		t.Fatalf("expected rating 4, got %v", resp.Checkin.Rating)
	}
	if resp.Checkin.Review == nil || *resp.Checkin.Review != "great crowd" {
		t.Fatalf("expected trimmed review, got %v", resp.Checkin.Review)
	}

	var stored struct {
		Rating *int
		Review *string
	}
	if err := db.Raw(`SELECT rating, review FROM checkins WHERE id = ?`, checkedIn.Checkin.ID).Scan(&stored).Error; err != nil {
		t.Fatalf("read row: %v", err)
	}
	if stored.Rating == nil || *stored.Rating != 4 || stored.Review == nil || *stored.Review != "great crowd" {
		t.Fatalf("row not updated: %+v", stored)
	}
}

func TestCheckOutRejectsOutOfRangeRating(t *testing.T) {
	node := mustNode(t)
	venueID := node.Generate()
	userID := node.Generate()

	svc, db, _ := setupCheckinService(t, node, time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	seedVenue(t, db, venueID, node.Generate(), 100)
	ctx := customerContext(userID)

	checkedIn, err := svc.CheckIn(ctx, checkindomain.CheckInRequest{VenueID: venueID.String()})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}

	for _, bad := range []int{0, 6, -1} {
		rating := bad
		_, err := svc.CheckOut(ctx, checkindomain.CheckOutRequest{
			CheckinID: checkedIn.Checkin.ID.String(),
			Rating:    &rating,
		})
		if !errors.Is(err, checkindomain.ErrInvalidRating) {
			t.Fatalf("rating %d: expected ErrInvalidRating, got %v", bad, err)
		}
	}
}

func TestCheckOutTwiceRejected(t *testing.T) {
	node := mustNode(t)
	venueID := node.Generate()
	userID := node.Generate()

	svc, db, clk := setupCheckinService(t, node, time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	seedVenue(t, db, venueID, node.Generate(), 100)
	ctx := customerContext(userID)

	checkedIn, err := svc.CheckIn(ctx, checkindomain.CheckInRequest{VenueID: venueID.String()})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}

	clk.Advance(10 * time.Minute)
	if _, err := svc.CheckOut(ctx, checkindomain.CheckOutRequest{CheckinID: checkedIn.Checkin.ID.String()}); err != nil {
		t.Fatalf("first check out: %v", err)
	}

	_, err = svc.CheckOut(ctx, checkindomain.CheckOutRequest{CheckinID: checkedIn.Checkin.ID.String()})
	if !errors.Is(err, checkindomain.ErrAlreadyCheckedOut) {
		t.Fatalf("expected ErrAlreadyCheckedOut, got %v", err)
	}
	if got := venueOccupancy(t, db, venueID); got != 0 {
		t.Fatalf("expected occupancy to stay at 0, got %d", got)
	}
}

func TestCheckOutOtherUsersVisitRejected(t *testing.T) {
	node := mustNode(t)
	venueID := node.Generate()
	owner := node.Generate()
	intruder := node.Generate()

	svc, db, _ := setupCheckinService(t, node, time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	seedVenue(t, db, venueID, node.Generate(), 100)

	checkedIn, err := svc.CheckIn(customerContext(owner), checkindomain.CheckInRequest{VenueID: venueID.String()})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}

	_, err = svc.CheckOut(customerContext(intruder), checkindomain.CheckOutRequest{CheckinID: checkedIn.Checkin.ID.String()})
	if !errors.Is(err, checkindomain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestCheckOutDurationNeverNegative(t *testing.T) {
	node := mustNode(t)
	venueID := node.Generate()
	userID := node.Generate()

	svc, db, clk := setupCheckinService(t, node, time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	seedVenue(t, db, venueID, node.Generate(), 100)
	ctx := customerContext(userID)

	checkedIn, err := svc.CheckIn(ctx, checkindomain.CheckInRequest{VenueID: venueID.String()})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}

	// Clock skew can put checkout before checkin.
	clk.Advance(-5 * time.Minute)

	resp, err := svc.CheckOut(ctx, checkindomain.CheckOutRequest{CheckinID: checkedIn.Checkin.ID.String()})
	if err != nil {
		t.Fatalf("check out: %v", err)
	}
	if resp.Checkin.DurationMinutes == nil || *resp.Checkin.DurationMinutes != 0 {
		t.Fatalf("expected duration clamped to 0, got %v", resp.Checkin.DurationMinutes)
	}
}

func TestHistoryForVenueManagerOnly(t *testing.T) {
	node := mustNode(t)
	venueID := node.Generate()
	managerID := node.Generate()
	userID := node.Generate()

	svc, db, _ := setupCheckinService(t, node, time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	seedVenue(t, db, venueID, managerID, 100)

	if _, err := svc.CheckIn(customerContext(userID), checkindomain.CheckInRequest{VenueID: venueID.String()}); err != nil {
		t.Fatalf("check in: %v", err)
	}

	managerCtx := identity.WithActor(context.Background(), identity.Actor{
		UserID:  managerID,
		Role:    identity.RoleVenueManager,
		VenueID: venueID,
	})
	history, err := svc.HistoryForVenue(managerCtx, venueID.String(), 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 visit in history, got %d", len(history))
	}

	_, err = svc.HistoryForVenue(customerContext(userID), venueID.String(), 10)
	if !errors.Is(err, venuedomain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-manager, got %v", err)
	}
}

func TestCheckInRequiresActor(t *testing.T) {
	node := mustNode(t)
	svc, _, _ := setupCheckinService(t, node, time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))

	_, err := svc.CheckIn(context.Background(), checkindomain.CheckInRequest{VenueID: node.Generate().String()})
	if !errors.Is(err, identity.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestCheckInCheckOutKeepsLifetimeTotal(t *testing.T) {
	node := mustNode(t)
	venueID := node.Generate()
	userID := node.Generate()

	svc, db, clk := setupCheckinService(t, node, time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	seedVenue(t, db, venueID, node.Generate(), 100)
	ctx := customerContext(userID)

	checkedIn, err := svc.CheckIn(ctx, checkindomain.CheckInRequest{VenueID: venueID.String()})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if checkedIn.TotalCheckins != 1 {
		t.Fatalf("expected lifetime total 1, got %d", checkedIn.TotalCheckins)
	}

	clk.Advance(30 * time.Minute)
	if _, err := svc.CheckOut(ctx, checkindomain.CheckOutRequest{CheckinID: checkedIn.Checkin.ID.String()}); err != nil {
		t.Fatalf("check out: %v", err)
	}

	// The visit round-trips the live counter but the lifetime total keeps
	// the check-in.
	if got := venueOccupancy(t, db, venueID); got != 0 {
		t.Fatalf("expected occupancy back to 0, got %d", got)
	}
	if got := venueLifetimeTotal(t, db, venueID); got != 1 {
		t.Fatalf("expected lifetime total 1 after checkout, got %d", got)
	}
}

func TestConcurrentCheckInsSameUserOneWins(t *testing.T) {
	node := mustNode(t)
	venueID := node.Generate()
	userID := node.Generate()

	svc, db, _ := setupCheckinService(t, node, time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	seedVenue(t, db, venueID, node.Generate(), 100)
	ctx := customerContext(userID)

	const attempts = 10
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CheckIn(ctx, checkindomain.CheckInRequest{VenueID: venueID.String()})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, checkindomain.ErrAlreadyCheckedIn):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one winner, got %d", succeeded)
	}
	if got := venueOccupancy(t, db, venueID); got != 1 {
		t.Fatalf("expected occupancy 1, got %d", got)
	}
}

func TestConcurrentCheckInsLoseNoCounts(t *testing.T) {
	node := mustNode(t)
	venueID := node.Generate()

	svc, db, _ := setupCheckinService(t, node, time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	seedVenue(t, db, venueID, node.Generate(), 200)

	const visitors = 50
	errs := make([]error, visitors)
	var wg sync.WaitGroup
	for i := 0; i < visitors; i++ {
		wg.Add(1)
		go func(i int, ctx context.Context) {
			defer wg.Done()
			_, errs[i] = svc.CheckIn(ctx, checkindomain.CheckInRequest{VenueID: venueID.String()})
		}(i, customerContext(node.Generate()))
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("check in %d: %v", i, err)
		}
	}
	if got := venueOccupancy(t, db, venueID); got != visitors {
		t.Fatalf("expected occupancy %d, got %d", visitors, got)
	}
	if got := venueLifetimeTotal(t, db, venueID); got != visitors {
		t.Fatalf("expected lifetime total %d, got %d", visitors, got)
	}
}

func TestCheckInStoresEventAndLocation(t *testing.T) {
	node := mustNode(t)
	venueID := node.Generate()
	userID := node.Generate()
	eventID := node.Generate()

	svc, db, _ := setupCheckinService(t, node, time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	seedVenue(t, db, venueID, node.Generate(), 100)
	ctx := customerContext(userID)

	lat, lng := 0.0012, -0.0034
	resp, err := svc.CheckIn(ctx, checkindomain.CheckInRequest{
		VenueID:   venueID.String(),
		EventID:   eventID.String(),
		Latitude:  &lat,
		Longitude: &lng,
	})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}

	var row struct {
		EventID   *snowflake.ID
		Latitude  *float64
		Longitude *float64
	}
	if err := db.Raw(
		`SELECT event_id, latitude, longitude FROM checkins WHERE id = ?`,
		resp.Checkin.ID,
	).Scan(&row).Error; err != nil {
		t.Fatalf("read row: %v", err)
	}
	if row.EventID == nil || *row.EventID != eventID {
		t.Fatalf("expected event %s on the row, got %v", eventID, row.EventID)
	}
	if row.Latitude == nil || *row.Latitude != lat {
		t.Fatalf("expected latitude %v, got %v", lat, row.Latitude)
	}
	if row.Longitude == nil || *row.Longitude != lng {
		t.Fatalf("expected longitude %v, got %v", lng, row.Longitude)
	}
}

func TestCheckInMalformedEventRejected(t *testing.T) {
	node := mustNode(t)
	venueID := node.Generate()

	svc, db, _ := setupCheckinService(t, node, time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	seedVenue(t, db, venueID, node.Generate(), 100)

	_, err := svc.CheckIn(customerContext(node.Generate()), checkindomain.CheckInRequest{
		VenueID: venueID.String(),
		EventID: "not-a-snowflake",
	})
	if !errors.Is(err, checkindomain.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func setupCheckinService(t *testing.T, node *snowflake.Node, start time.Time) (checkindomain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	db := openTestDB(t)
	prepareCheckinSchema(t, db)

	clk := clock.NewFakeClock(start)
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clk,
		Repo:   checkinrepo.Provide(),
		Venues: venuerepo.Provide(),
		Ledger: occupancy.NewLedger(zap.NewNop()),
	})

	return svc, db, clk
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	_ = db.Exec("PRAGMA busy_timeout = 5000").Error

	return db
}

func prepareCheckinSchema(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := db.Exec(`CREATE TABLE venues (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
		longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
		capacity INTEGER NOT NULL DEFAULT 0,
		current_checkins INTEGER NOT NULL DEFAULT 0,
		total_checkins INTEGER NOT NULL DEFAULT 0,
		photo_count INTEGER NOT NULL DEFAULT 0,
		manager_id BIGINT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`).Error; err != nil {
		t.Fatalf("create venues: %v", err)
	}
	if err := db.Exec(`CREATE TABLE checkins (
		id BIGINT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		venue_id BIGINT NOT NULL,
		event_id BIGINT,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		checked_in_at DATETIME NOT NULL,
		checked_out_at DATETIME,
		duration_minutes BIGINT,
		rating SMALLINT,
		review TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`).Error; err != nil {
		t.Fatalf("create checkins: %v", err)
	}
	if err := db.Exec(`CREATE UNIQUE INDEX uq_checkins_open
		ON checkins (user_id, venue_id) WHERE checked_out_at IS NULL`).Error; err != nil {
		t.Fatalf("create open checkin index: %v", err)
	}
}

func seedVenue(t *testing.T, db *gorm.DB, venueID, managerID snowflake.ID, capacity int) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO venues (id, name, slug, capacity, manager_id) VALUES (?, ?, ?, ?, ?)`,
		venueID,
		"Test Venue "+venueID.String(),
		"test-venue-"+venueID.String(),
		capacity,
		managerID,
	).Error; err != nil {
		t.Fatalf("seed venue: %v", err)
	}
}

func venueOccupancy(t *testing.T, db *gorm.DB, venueID snowflake.ID) int {
	t.Helper()
	var count int
	if err := db.Raw(`SELECT current_checkins FROM venues WHERE id = ?`, venueID).Scan(&count).Error; err != nil {
		t.Fatalf("read occupancy: %v", err)
	}
	return count
}

func venueLifetimeTotal(t *testing.T, db *gorm.DB, venueID snowflake.ID) int {
	t.Helper()
	var total int
	if err := db.Raw(`SELECT total_checkins FROM venues WHERE id = ?`, venueID).Scan(&total).Error; err != nil {
		t.Fatalf("read lifetime total: %v", err)
	}
	return total
}

func customerContext(userID snowflake.ID) context.Context {
	return identity.WithActor(context.Background(), identity.Actor{
		UserID: userID,
		Role:   identity.RoleCustomer,
	})
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}
