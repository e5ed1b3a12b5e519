package promotion

import (
	"github.com/sceneworks/scene/internal/promotion/repository"
	"github.com/sceneworks/scene/internal/promotion/service"
	"go.uber.org/fx"
)

var Module = fx.Module("promotion.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
