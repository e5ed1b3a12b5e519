package events

import (
	"context"
	"encoding/json"

	"github.com/bwmarrin/snowflake"
	"github.com/sceneworks/scene/internal/clock"
	obsmetrics "github.com/sceneworks/scene/internal/observability/metrics"
	"github.com/sceneworks/scene/internal/topics"
	"go.uber.org/zap"
)

// Emitter publishes live events after the owning transaction commits.
// Delivery is fire and forget: a failed or dropped event never fails
// the operation that produced it.
type Emitter struct {
	hub     *topics.Hub
	log     *zap.Logger
	metrics *obsmetrics.Metrics
	clock   clock.Clock
}

func NewEmitter(hub *topics.Hub, log *zap.Logger, metrics *obsmetrics.Metrics, clk clock.Clock) *Emitter {
	return &Emitter{
		hub:     hub,
		log:     log.Named("events.emitter"),
		metrics: metrics,
		clock:   clk,
	}
}

// EmitCheckin fans a check-in out to the venue, analytics and user topics.
func (e *Emitter) EmitCheckin(ctx context.Context, venueID, userID snowflake.ID, event CheckinEvent) {
	e.publish(ctx, TypeCheckin, event,
		topics.Venue(venueID),
		topics.Analytics(venueID),
		topics.User(userID),
	)
}

// EmitCheckout fans a check-out out to the venue, analytics and user topics.
func (e *Emitter) EmitCheckout(ctx context.Context, venueID, userID snowflake.ID, event CheckoutEvent) {
	e.publish(ctx, TypeCheckout, event,
		topics.Venue(venueID),
		topics.Analytics(venueID),
		topics.User(userID),
	)
}

// EmitPromotionUpdated announces a promotion change on the venue topic.
func (e *Emitter) EmitPromotionUpdated(ctx context.Context, venueID snowflake.ID, event PromotionUpdatedEvent) {
	e.publish(ctx, TypePromotionUpdated, event, topics.Venue(venueID))
}

// EmitNewPhoto announces a posted photo on the venue topic.
func (e *Emitter) EmitNewPhoto(ctx context.Context, venueID snowflake.ID, event NewPhotoEvent) {
	e.publish(ctx, TypeNewPhoto, event, topics.Venue(venueID))
}

func (e *Emitter) publish(ctx context.Context, eventType string, payload any, topicNames ...string) {
	if e == nil || e.hub == nil {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		e.log.Warn("drop unmarshalable live event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	event := topics.Event{
		Type:      eventType,
		Payload:   raw,
		Timestamp: e.clock.Now(),
	}
	for _, name := range topicNames {
		e.hub.Publish(name, event)
		e.metrics.RecordEventPublished(ctx, topics.Kind(name), eventType)
	}
}
