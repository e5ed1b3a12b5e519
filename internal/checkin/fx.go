package checkin

import (
	"github.com/sceneworks/scene/internal/checkin/repository"
	"github.com/sceneworks/scene/internal/checkin/service"
	"go.uber.org/fx"
)

var Module = fx.Module("checkin.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
