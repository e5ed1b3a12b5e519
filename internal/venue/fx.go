package venue

import (
	"github.com/sceneworks/scene/internal/venue/repository"
	"github.com/sceneworks/scene/internal/venue/service"
	"go.uber.org/fx"
)

var Module = fx.Module("venue.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
