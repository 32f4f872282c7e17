package venue

import (
	"github.com/smallbiznis/streetsignal/internal/venue/demo"
	"github.com/smallbiznis/streetsignal/internal/venue/service"
	"go.uber.org/fx"
)

var Module = fx.Module("venue.service",
	fx.Provide(
		demo.NewProvider,
		service.NewRegistry,
	),
)
