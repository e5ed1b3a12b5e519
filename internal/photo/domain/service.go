package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type AddPhotoRequest struct {
	VenueID string `json:"venueId"`
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

type AddPhotoResponse struct {
	Photo      Photo `json:"photo"`
	PhotoCount int   `json:"photoCount"`
}

type Service interface {
	Add(context.Context, AddPhotoRequest) (*AddPhotoResponse, error)
	ListForVenue(context.Context, string, int) ([]Photo, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, photo *Photo) error
	ListForVenue(ctx context.Context, db *gorm.DB, venueID snowflake.ID, limit int) ([]Photo, error)
}

var (
	ErrVenueNotFound = errors.New("venue_not_found")
	ErrInvalidURL    = errors.New("invalid_url")
)
