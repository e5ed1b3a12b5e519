package photo

import (
	"github.com/sceneworks/scene/internal/photo/repository"
	"github.com/sceneworks/scene/internal/photo/service"
	"go.uber.org/fx"
)

var Module = fx.Module("photo.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
