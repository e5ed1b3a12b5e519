package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sceneworks/scene/internal/identity"
)

func (s *Server) GetVenueAnalytics(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.analyticsSvc.GetVenueAnalytics(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// RollupVenueAnalytics upserts the daily bucket on demand. The background
// worker covers the steady state; this exists for backfills and support.
func (s *Server) RollupVenueAnalytics(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	actor, ok := identity.ActorFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, identity.ErrUnauthenticated)
		return
	}

	venue, err := s.venueSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if actor.Role != identity.RoleVenueManager || venue.ManagerID != actor.UserID {
		AbortWithError(c, ErrForbidden)
		return
	}

	day := s.clock.Now().UTC()
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			AbortWithError(c, newValidationError("date", "invalid_date", "date must be YYYY-MM-DD"))
			return
		}
		day = parsed
	}

	resp, err := s.analyticsSvc.RecordDailyMetrics(c.Request.Context(), id, day)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) VenueDailyHistory(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	days := parseOptionalInt(c.Query("days"), 30)

	resp, err := s.analyticsSvc.DailyHistory(c.Request.Context(), id, days)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
