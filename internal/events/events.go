// Package events defines the live event payloads fanned out to
// connected clients and the emitter that publishes them.
package events

import "time"

const (
	TypeCheckin          = "checkin"
	TypeCheckout         = "checkout"
	TypePromotionUpdated = "promotionUpdated"
	TypeNewPhoto         = "newPhoto"
)

// CheckinEvent announces a new check-in and the resulting occupancy.
type CheckinEvent struct {
	VenueID         string `json:"venueId"`
	UserID          string `json:"userId"`
	CurrentCheckins int    `json:"currentCheckins"`
	TotalCheckins   int    `json:"totalCheckins"`
}

// CheckoutEvent announces a check-out and the resulting occupancy.
type CheckoutEvent struct {
	VenueID         string `json:"venueId"`
	UserID          string `json:"userId"`
	CurrentCheckins int    `json:"currentCheckins"`
	DurationMinutes int64  `json:"durationMinutes"`
}

// PromotionUpdatedEvent announces a created or changed promotion.
type PromotionUpdatedEvent struct {
	PromotionID string    `json:"promotionId"`
	VenueID     string    `json:"venueId"`
	Title       string    `json:"title"`
	Active      bool      `json:"active"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewPhotoEvent announces a photo posted to a venue.
type NewPhotoEvent struct {
	PhotoID   string    `json:"photoId"`
	VenueID   string    `json:"venueId"`
	UserID    string    `json:"userId"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}
