package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/sceneworks/scene/internal/clock"
	"github.com/sceneworks/scene/internal/identity"
	promotiondomain "github.com/sceneworks/scene/internal/promotion/domain"
	promotionrepo "github.com/sceneworks/scene/internal/promotion/repository"
	venuerepo "github.com/sceneworks/scene/internal/venue/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestCreatePromotionManagerOnly(t *testing.T) {
	node := mustNode(t)
	managerID := node.Generate()
	venueID := node.Generate()

	svc, db, _ := setupPromotionService(t, node, time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	seedPromoVenue(t, db, venueID, managerID)

	p, err := svc.Create(managerCtx(managerID, venueID), promotiondomain.CreatePromotionRequest{
		VenueID: venueID.String(),
		Title:   "Happy Hour",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !p.Active {
		t.Fatalf("expected new promotion active")
	}

	_, err = svc.Create(customerCtx(node.Generate()), promotiondomain.CreatePromotionRequest{
		VenueID: venueID.String(),
		Title:   "Nope",
	})
	if !errors.Is(err, promotiondomain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCreatePromotionRejectsInvertedWindow(t *testing.T) {
	node := mustNode(t)
	managerID := node.Generate()
	venueID := node.Generate()

	svc, db, _ := setupPromotionService(t, node, time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	seedPromoVenue(t, db, venueID, managerID)

	start := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err := svc.Create(managerCtx(managerID, venueID), promotiondomain.CreatePromotionRequest{
		VenueID:  venueID.String(),
		Title:    "Backwards",
		StartsAt: &start,
		EndsAt:   &end,
	})
	if !errors.Is(err, promotiondomain.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestRedeemOncePerUser(t *testing.T) {
	node := mustNode(t)
	managerID := node.Generate()
	venueID := node.Generate()
	userID := node.Generate()

	svc, db, _ := setupPromotionService(t, node, time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	seedPromoVenue(t, db, venueID, managerID)

	p, err := svc.Create(managerCtx(managerID, venueID), promotiondomain.CreatePromotionRequest{
		VenueID: venueID.String(),
		Title:   "Free Drink",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Redeem(customerCtx(userID), p.ID.String()); err != nil {
		t.Fatalf("first redeem: %v", err)
	}

	_, err = svc.Redeem(customerCtx(userID), p.ID.String())
	if !errors.Is(err, promotiondomain.ErrAlreadyRedeemed) {
		t.Fatalf("expected ErrAlreadyRedeemed, got %v", err)
	}

	// A different user still redeems fine.
	if _, err := svc.Redeem(customerCtx(node.Generate()), p.ID.String()); err != nil {
		t.Fatalf("other user redeem: %v", err)
	}
}

func TestRedeemOutsideWindowRejected(t *testing.T) {
	node := mustNode(t)
	managerID := node.Generate()
	venueID := node.Generate()

	svc, db, clk := setupPromotionService(t, node, time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	seedPromoVenue(t, db, venueID, managerID)

	start := time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 6, 0, 0, 0, 0, time.UTC)
	p, err := svc.Create(managerCtx(managerID, venueID), promotiondomain.CreatePromotionRequest{
		VenueID:  venueID.String(),
		Title:    "Window Deal",
		StartsAt: &start,
		EndsAt:   &end,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	userID := node.Generate()
	if _, err := svc.Redeem(customerCtx(userID), p.ID.String()); !errors.Is(err, promotiondomain.ErrNotActive) {
		t.Fatalf("expected ErrNotActive before window, got %v", err)
	}

	clk.Advance(4 * 24 * time.Hour) // into the window
	if _, err := svc.Redeem(customerCtx(userID), p.ID.String()); err != nil {
		t.Fatalf("redeem inside window: %v", err)
	}

	clk.Advance(3 * 24 * time.Hour) // past the window
	if _, err := svc.Redeem(customerCtx(node.Generate()), p.ID.String()); !errors.Is(err, promotiondomain.ErrNotActive) {
		t.Fatalf("expected ErrNotActive after window, got %v", err)
	}
}

func TestRedeemDeactivatedPromotionRejected(t *testing.T) {
	node := mustNode(t)
	managerID := node.Generate()
	venueID := node.Generate()

	svc, db, _ := setupPromotionService(t, node, time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	seedPromoVenue(t, db, venueID, managerID)

	p, err := svc.Create(managerCtx(managerID, venueID), promotiondomain.CreatePromotionRequest{
		VenueID: venueID.String(),
		Title:   "Short Lived",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	inactive := false
	if _, err := svc.Update(managerCtx(managerID, venueID), promotiondomain.UpdatePromotionRequest{
		PromotionID: p.ID.String(),
		Active:      &inactive,
	}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err = svc.Redeem(customerCtx(node.Generate()), p.ID.String())
	if !errors.Is(err, promotiondomain.ErrNotActive) {
		t.Fatalf("expected ErrNotActive, got %v", err)
	}
}

func TestListForVenueActiveOnly(t *testing.T) {
	node := mustNode(t)
	managerID := node.Generate()
	venueID := node.Generate()

	svc, db, _ := setupPromotionService(t, node, time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	seedPromoVenue(t, db, venueID, managerID)

	active, err := svc.Create(managerCtx(managerID, venueID), promotiondomain.CreatePromotionRequest{
		VenueID: venueID.String(),
		Title:   "Active",
	})
	if err != nil {
		t.Fatalf("create active: %v", err)
	}
	retired, err := svc.Create(managerCtx(managerID, venueID), promotiondomain.CreatePromotionRequest{
		VenueID: venueID.String(),
		Title:   "Retired",
	})
	if err != nil {
		t.Fatalf("create retired: %v", err)
	}
	inactive := false
	if _, err := svc.Update(managerCtx(managerID, venueID), promotiondomain.UpdatePromotionRequest{
		PromotionID: retired.ID.String(),
		Active:      &inactive,
	}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	all, err := svc.ListForVenue(context.Background(), venueID.String(), false)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 promotions, got %d", len(all))
	}

	onlyActive, err := svc.ListForVenue(context.Background(), venueID.String(), true)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(onlyActive) != 1 || onlyActive[0].ID != active.ID {
		t.Fatalf("expected only the active promotion, got %d", len(onlyActive))
	}
}

func setupPromotionService(t *testing.T, node *snowflake.Node, start time.Time) (promotiondomain.Service, *gorm.DB, *clock.FakeClock) {
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
	if err := db.Exec(`CREATE TABLE promotions (
		id BIGINT PRIMARY KEY,
		venue_id BIGINT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		starts_at DATETIME,
		ends_at DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`).Error; err != nil {
		t.Fatalf("create promotions: %v", err)
	}
	if err := db.Exec(`CREATE TABLE promotion_redemptions (
		id BIGINT PRIMARY KEY,
		promotion_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		redeemed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`).Error; err != nil {
		t.Fatalf("create redemptions: %v", err)
	}
	if err := db.Exec(`CREATE UNIQUE INDEX uq_promotion_redemptions_user
		ON promotion_redemptions (promotion_id, user_id)`).Error; err != nil {
		t.Fatalf("create redemption index: %v", err)
	}

	clk := clock.NewFakeClock(start)
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clk,
		Repo:   promotionrepo.Provide(),
		Venues: venuerepo.Provide(),
	})

	return svc, db, clk
}

func seedPromoVenue(t *testing.T, db *gorm.DB, venueID, managerID snowflake.ID) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO venues (id, name, slug, manager_id) VALUES (?, ?, ?, ?)`,
		venueID,
		"Promo Venue "+venueID.String(),
		"promo-venue-"+venueID.String(),
		managerID,
	).Error; err != nil {
		t.Fatalf("seed venue: %v", err)
	}
}

func managerCtx(userID, venueID snowflake.ID) context.Context {
	return identity.WithActor(context.Background(), identity.Actor{
		UserID:  userID,
		Role:    identity.RoleVenueManager,
		VenueID: venueID,
	})
}

func customerCtx(userID snowflake.ID) context.Context {
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
