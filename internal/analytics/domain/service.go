package domain

import (
	"context"
	"errors"
	"time"

	promotiondomain "github.com/sceneworks/scene/internal/promotion/domain"
)

// Report is the live analytics view a venue manager sees.
type Report struct {
	VenueID         string                            `json:"venueId"`
	CurrentCheckins int                               `json:"currentCheckins"`
	TotalCheckins   int                               `json:"totalCheckins"`
	Capacity        int                               `json:"capacity"`
	Daily           []DailyCount                      `json:"daily"`
	Hours           []HourCount                       `json:"hours"`
	TopPromotions   []promotiondomain.RedemptionCount `json:"topPromotions"`
}

type Service interface {
	GetVenueAnalytics(context.Context, string) (*Report, error)
	// RecordDailyMetrics aggregates and stores the rollup row for the
	// venue and UTC day containing the given time. If the bucket already
	// exists it is returned unchanged.
	RecordDailyMetrics(context.Context, string, time.Time) (*VenueAnalytics, error)
	DailyHistory(context.Context, string, int) ([]VenueAnalytics, error)
}

var (
	ErrVenueNotFound = errors.New("venue_not_found")
	ErrForbidden     = errors.New("forbidden")
	// ErrAggregation wraps storage failures during report building so
	// callers can distinguish them from bad input.
	ErrAggregation = errors.New("aggregation_failed")
)
