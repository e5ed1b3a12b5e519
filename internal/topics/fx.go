package topics

import (
	"context"

	obsmetrics "github.com/sceneworks/scene/internal/observability/metrics"
	"go.uber.org/fx"
)

type hubParam struct {
	fx.In

	Metrics *obsmetrics.Metrics `optional:"true"`
}

func newHub(p hubParam) *Hub {
	return NewHub(WithDropCallback(func(topic string) {
		p.Metrics.RecordEventDropped(context.Background(), Kind(topic))
	}))
}

var Module = fx.Module("topics",
	fx.Provide(newHub),
)
