package signal

import (
	"github.com/smallbiznis/streetsignal/internal/signal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("signal.service",
	fx.Provide(service.NewService),
)
