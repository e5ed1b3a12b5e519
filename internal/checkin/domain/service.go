package domain

import (
	"context"
	"errors"
)

type CheckInRequest struct {
	VenueID   string   `json:"venueId"`
	EventID   string   `json:"eventId"`
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lng"`
}

type CheckInResponse struct {
	Checkin         Checkin `json:"checkin"`
	CurrentCheckins int     `json:"currentCheckins"`
	TotalCheckins   int     `json:"totalCheckins"`
}

type CheckOutRequest struct {
	CheckinID string `json:"-"`
	Rating    *int   `json:"rating"`
	Review    string `json:"review"`
}

type CheckOutResponse struct {
	Checkin         Checkin `json:"checkin"`
	CurrentCheckins int     `json:"currentCheckins"`
}

type Service interface {
	CheckIn(context.Context, CheckInRequest) (*CheckInResponse, error)
	CheckOut(context.Context, CheckOutRequest) (*CheckOutResponse, error)
	Current(context.Context) ([]Checkin, error)
	HistoryForVenue(context.Context, string, int) ([]Checkin, error)
}

var (
	ErrVenueNotFound     = errors.New("venue_not_found")
	ErrCheckinNotFound   = errors.New("checkin_not_found")
	ErrAlreadyCheckedIn  = errors.New("already_checked_in")
	ErrAlreadyCheckedOut = errors.New("already_checked_out")
	ErrNotOwner          = errors.New("not_owner")
	ErrInvalidRating     = errors.New("invalid_rating")
	ErrInvalidEvent      = errors.New("invalid_event")
	ErrTooFarAway        = errors.New("too_far_from_venue")
)
