package domain

import (
	"context"
	"errors"
	"time"
)

type CreatePromotionRequest struct {
	VenueID     string     `json:"venueId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
}

type UpdatePromotionRequest struct {
	PromotionID string     `json:"-"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Active      *bool      `json:"active"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
}

type Service interface {
	Create(context.Context, CreatePromotionRequest) (*Promotion, error)
	Update(context.Context, UpdatePromotionRequest) (*Promotion, error)
	ListForVenue(context.Context, string, bool) ([]Promotion, error)
	Redeem(context.Context, string) (*Redemption, error)
}

var (
	ErrPromotionNotFound = errors.New("promotion_not_found")
	ErrVenueNotFound     = errors.New("venue_not_found")
	ErrInvalidTitle      = errors.New("invalid_title")
	ErrInvalidWindow     = errors.New("invalid_window")
	ErrNotActive         = errors.New("promotion_not_active")
	ErrAlreadyRedeemed   = errors.New("already_redeemed")
	ErrForbidden         = errors.New("forbidden")
)
