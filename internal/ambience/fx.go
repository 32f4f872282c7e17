package ambience

import (
	"github.com/smallbiznis/streetsignal/internal/ambience/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ambience.service",
	fx.Provide(service.NewService),
)
