package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	checkins         metric.Int64Counter
	checkouts        metric.Int64Counter
	visitDuration    metric.Float64Histogram
	eventsPublished  metric.Int64Counter
	eventsDropped    metric.Int64Counter
	subscribers      metric.Int64UpDownCounter
	rateLimitAllowed metric.Int64Counter
	rateLimitDenied  metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "scene"
	}
	meter := provider.Meter(name)

	checkins, err := meter.Int64Counter("scene_checkins_total")
	if err != nil {
		return nil, err
	}
	checkouts, err := meter.Int64Counter("scene_checkouts_total")
	if err != nil {
		return nil, err
	}
	visitDuration, err := meter.Float64Histogram("scene_visit_duration_minutes")
	if err != nil {
		return nil, err
	}
	eventsPublished, err := meter.Int64Counter("scene_events_published_total")
	if err != nil {
		return nil, err
	}
	eventsDropped, err := meter.Int64Counter("scene_events_dropped_total")
	if err != nil {
		return nil, err
	}
	subscribers, err := meter.Int64UpDownCounter("scene_stream_subscribers")
	if err != nil {
		return nil, err
	}
	rateLimitAllowed, err := meter.Int64Counter("scene_rate_limit_allowed_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("scene_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		checkins:         checkins,
		checkouts:        checkouts,
		visitDuration:    visitDuration,
		eventsPublished:  eventsPublished,
		eventsDropped:    eventsDropped,
		subscribers:      subscribers,
		rateLimitAllowed: rateLimitAllowed,
		rateLimitDenied:  rateLimitDenied,
	}, nil
}

// RecordCheckin increments check-in counts.
func (m *Metrics) RecordCheckin(ctx context.Context, venueID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("venue_id", strings.TrimSpace(venueID)))
	m.checkins.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCheckout increments check-out counts and records the visit length.
func (m *Metrics) RecordCheckout(ctx context.Context, venueID string, durationMinutes int64) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("venue_id", strings.TrimSpace(venueID)))
	m.checkouts.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.visitDuration.Record(ctx, float64(durationMinutes), metric.WithAttributes(attrs...))
}

// RecordEventPublished increments published event counts per topic kind.
func (m *Metrics) RecordEventPublished(ctx context.Context, topicKind, eventType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("topic_kind", strings.TrimSpace(topicKind)),
		attribute.String("event_type", strings.TrimSpace(eventType)),
	)
	m.eventsPublished.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordEventDropped increments counts of events dropped on full subscriber buffers.
func (m *Metrics) RecordEventDropped(ctx context.Context, topicKind string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("topic_kind", strings.TrimSpace(topicKind)))
	m.eventsDropped.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// SubscriberConnected adjusts the live subscriber gauge upward.
func (m *Metrics) SubscriberConnected(ctx context.Context, topicKind string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("topic_kind", strings.TrimSpace(topicKind)))
	m.subscribers.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// SubscriberDisconnected adjusts the live subscriber gauge downward.
func (m *Metrics) SubscriberDisconnected(ctx context.Context, topicKind string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("topic_kind", strings.TrimSpace(topicKind)))
	m.subscribers.Add(ctx, -1, metric.WithAttributes(attrs...))
}

// RecordRateLimitAllowed increments rate limit allow counts.
func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimitAllowed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"venue_id":    {},
	"endpoint":    {},
	"status_code": {},
	"topic_kind":  {},
	"event_type":  {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
