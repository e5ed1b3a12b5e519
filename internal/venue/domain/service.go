package domain

import (
	"context"
	"errors"

	"github.com/sceneworks/scene/pkg/db/pagination"
)

type CreateVenueRequest struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Capacity    int     `json:"capacity"`
}

type UpdateVenueRequest struct {
	VenueID     string   `json:"-"`
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Address     *string  `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Capacity    *int     `json:"capacity"`
}

type ListVenuesRequest struct {
	Query     string `form:"q"`
	Category  string `form:"category"`
	PageToken string `form:"page_token"`
	PageSize  int32  `form:"page_size"`
}

type ListVenuesResponse struct {
	pagination.PageInfo
	Venues []Venue `json:"venues"`
}

type NearbyVenuesRequest struct {
	Latitude  float64 `form:"lat"`
	Longitude float64 `form:"lng"`
	RadiusKm  float64 `form:"radius_km"`
	Limit     int     `form:"limit"`
}

type Service interface {
	Create(context.Context, CreateVenueRequest) (*Venue, error)
	Update(context.Context, UpdateVenueRequest) (*Venue, error)
	Get(context.Context, string) (*Venue, error)
	GetBySlug(context.Context, string) (*Venue, error)
	List(context.Context, ListVenuesRequest) (ListVenuesResponse, error)
	Nearby(context.Context, NearbyVenuesRequest) ([]Venue, error)
}

var (
	ErrVenueNotFound   = errors.New("venue_not_found")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidCapacity = errors.New("invalid_capacity")
	ErrInvalidLocation = errors.New("invalid_location")
	ErrSlugTaken       = errors.New("slug_taken")
	ErrForbidden       = errors.New("forbidden")
)
