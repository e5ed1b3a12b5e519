package server

import (
	"errors"
	"net/http"
	"testing"

	analyticsdomain "github.com/sceneworks/scene/internal/analytics/domain"
	checkindomain "github.com/sceneworks/scene/internal/checkin/domain"
	"github.com/sceneworks/scene/internal/identity"
	photodomain "github.com/sceneworks/scene/internal/photo/domain"
	promotiondomain "github.com/sceneworks/scene/internal/promotion/domain"
	venuedomain "github.com/sceneworks/scene/internal/venue/domain"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"unauthenticated", identity.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized"},
		{"invalid role", identity.ErrInvalidRole, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", venuedomain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"not owner", checkindomain.ErrNotOwner, http.StatusForbidden, "forbidden"},
		{"already checked in", checkindomain.ErrAlreadyCheckedIn, http.StatusConflict, "conflict"},
		{"already checked out", checkindomain.ErrAlreadyCheckedOut, http.StatusConflict, "conflict"},
		{"already redeemed", promotiondomain.ErrAlreadyRedeemed, http.StatusConflict, "conflict"},
		{"slug taken", venuedomain.ErrSlugTaken, http.StatusConflict, "conflict"},
		{"rate limited", ErrTooManyRequests, http.StatusTooManyRequests, "too_many_requests"},
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound, "not_found"},
		{"venue not found", venuedomain.ErrVenueNotFound, http.StatusNotFound, "not_found"},
		{"checkin not found", checkindomain.ErrCheckinNotFound, http.StatusNotFound, "not_found"},
		{"promotion not active", promotiondomain.ErrNotActive, http.StatusUnprocessableEntity, "promotion_not_active"},
		{"aggregation failed", analyticsdomain.ErrAggregation, http.StatusServiceUnavailable, "service_unavailable"},
		{"unavailable", ErrServiceUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		{"nil", nil, http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			if status != tc.status {
				t.Fatalf("status: got %d, want %d", status, tc.status)
			}
			if payload.Type != tc.kind {
				t.Fatalf("type: got %q, want %q", payload.Type, tc.kind)
			}
		})
	}
}

func TestMapErrorValidation(t *testing.T) {
	status, payload := mapError(newValidationError("venueId", "invalid_venue_id", "venueId must be a valid id"))
	if status != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", status, http.StatusBadRequest)
	}
	if payload.Type != "validation_error" {
		t.Fatalf("type: got %q", payload.Type)
	}
	if len(payload.Errors) != 1 || payload.Errors[0].Field != "venueId" || payload.Errors[0].Code != "invalid_venue_id" {
		t.Fatalf("unexpected validation details: %+v", payload.Errors)
	}

	status, payload = mapError(photodomain.ErrInvalidURL)
	if status != http.StatusBadRequest {
		t.Fatalf("sentinel status: got %d", status)
	}
	if len(payload.Errors) != 1 || payload.Errors[0].Code != "invalid_url" {
		t.Fatalf("sentinel details: %+v", payload.Errors)
	}

	status, _ = mapError(checkindomain.ErrInvalidEvent)
	if status != http.StatusBadRequest {
		t.Fatalf("invalid event status: got %d", status)
	}
}

func TestClassifyErrorForLog(t *testing.T) {
	errorType, code := classifyErrorForLog(venuedomain.ErrVenueNotFound)
	if errorType != "client_error" || code != "not_found" {
		t.Fatalf("got %q/%q", errorType, code)
	}

	errorType, code = classifyErrorForLog(errors.New("boom"))
	if errorType != "server_error" || code != "internal_error" {
		t.Fatalf("got %q/%q", errorType, code)
	}
}
