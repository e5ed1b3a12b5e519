package analytics

import (
	"github.com/sceneworks/scene/internal/analytics/repository"
	"github.com/sceneworks/scene/internal/analytics/service"
	"go.uber.org/fx"
)

var Module = fx.Module("analytics.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
