package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sceneworks/scene/internal/identity"
	"github.com/sceneworks/scene/internal/topics"
)

const streamHeartbeatInterval = 15 * time.Second

// StreamVenueEvents streams check-in activity, promotion changes and new
// photos for a venue over SSE.
func (s *Server) StreamVenueEvents(c *gin.Context) {
	venueID := strings.TrimSpace(c.Param("id"))
	if venueID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	venue, err := s.venueSvc.Get(c.Request.Context(), venueID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Clients get the venue's current state once on connect; everything
	// after that is deltas only.
	payload, err := json.Marshal(venue)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	snapshot := topics.Event{
		Type:      "venueSnapshot",
		Topic:     topics.Venue(venue.ID),
		Payload:   payload,
		Timestamp: s.clock.Now().UTC(),
	}

	s.streamTopic(c, topics.Venue(venue.ID), snapshot)
}

// StreamVenueAnalyticsEvents streams the same activity on the analytics
// channel. Restricted to the venue's manager.
func (s *Server) StreamVenueAnalyticsEvents(c *gin.Context) {
	venueID := strings.TrimSpace(c.Param("id"))
	if venueID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	actor, ok := identity.ActorFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, identity.ErrUnauthenticated)
		return
	}

	venue, err := s.venueSvc.Get(c.Request.Context(), venueID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if actor.Role != identity.RoleVenueManager || venue.ManagerID != actor.UserID {
		AbortWithError(c, ErrForbidden)
		return
	}

	// Managers get the current report up front so the stream is useful
	// before the next activity arrives.
	report, err := s.analyticsSvc.GetVenueAnalytics(c.Request.Context(), venueID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	snapshot := topics.Event{
		Type:      "analyticsSnapshot",
		Topic:     topics.Analytics(venue.ID),
		Payload:   payload,
		Timestamp: s.clock.Now().UTC(),
	}

	s.streamTopic(c, topics.Analytics(venue.ID), snapshot)
}

// StreamUserEvents streams events addressed to the calling user.
func (s *Server) StreamUserEvents(c *gin.Context) {
	actor, ok := identity.ActorFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, identity.ErrUnauthenticated)
		return
	}

	s.streamTopic(c, topics.User(actor.UserID))
}

func (s *Server) streamTopic(c *gin.Context, topic string, initial ...topics.Event) {
	if s.hub == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	subscription, err := s.hub.Subscribe(topic)
	if err != nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	defer subscription.Close()

	if s.metrics != nil {
		s.metrics.SubscriberConnected(c.Request.Context(), topics.Kind(topic))
		defer s.metrics.SubscriberDisconnected(c.Request.Context(), topics.Kind(topic))
	}

	writer := c.Writer
	headers := writer.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	flusher, ok := writer.(http.Flusher)
	if !ok {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	if _, err := io.WriteString(writer, "retry: 2000\n\n"); err != nil {
		return
	}

	for _, event := range initial {
		if err := writeStreamEvent(writer, event); err != nil {
			return
		}
	}
	flusher.Flush()

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(streamHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-subscription.Events():
			if err := writeStreamEvent(writer, event); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := io.WriteString(writer, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeStreamEvent(w io.Writer, event topics.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
	return err
}
