package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/sceneworks/scene/internal/identity"
	obscontext "github.com/sceneworks/scene/internal/observability/context"
	"go.uber.org/zap"
)

const (
	headerUserID   = "X-User-Id"
	headerUserRole = "X-User-Role"
	headerVenueID  = "X-Venue-Id"
)

// IdentityMiddleware resolves the actor from the gateway identity
// headers. Requests without a valid identity are rejected before any
// handler runs.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := snowflake.ParseString(strings.TrimSpace(c.GetHeader(headerUserID)))
		if err != nil || userID == 0 {
			AbortWithError(c, identity.ErrUnauthenticated)
			return
		}

		role, err := identity.ParseRole(strings.TrimSpace(c.GetHeader(headerUserRole)))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		actor := identity.Actor{UserID: userID, Role: role}
		if role == identity.RoleVenueManager {
			if raw := strings.TrimSpace(c.GetHeader(headerVenueID)); raw != "" {
				if venueID, err := snowflake.ParseString(raw); err == nil {
					actor.VenueID = venueID
				}
			}
		}

		ctx := identity.WithActor(c.Request.Context(), actor)
		ctx = obscontext.WithActor(ctx, string(actor.Role), actor.UserID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// CheckinRateLimitMiddleware throttles check-in attempts per user.
// A limiter that cannot reach Redis fails open with a warning.
func (s *Server) CheckinRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.checkinLimiter.Enabled() {
			c.Next()
			return
		}

		actor, ok := identity.ActorFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, identity.ErrUnauthenticated)
			return
		}

		result, err := s.checkinLimiter.Allow(c.Request.Context(), actor.UserID.String())
		if err != nil {
			s.log.Warn("check-in rate limit unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !result.Allowed {
			s.metrics.RecordRateLimitDenied(c.Request.Context(), "checkin", "rate_exceeded")
			if result.RetryAfter > 0 {
				c.Header("Retry-After", result.RetryAfter.Truncate(1e9).String())
			}
			AbortWithError(c, ErrTooManyRequests)
			return
		}

		s.metrics.RecordRateLimitAllowed(c.Request.Context(), "checkin")
		c.Next()
	}
}
