package engine

import (
	"context"

	enginedomain "github.com/smallbiznis/streetsignal/internal/engine/domain"
	"github.com/smallbiznis/streetsignal/internal/engine/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("engine",
	fx.Provide(service.NewEngine),
	fx.Invoke(registerStart),
)

// registerStart bootstraps venue state once the app starts. The server
// process has no device location of its own, so it begins in demo mode until
// a client posts one.
func registerStart(lc fx.Lifecycle, engine enginedomain.Service, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			state, err := engine.Start(ctx, nil)
			if err != nil {
				return err
			}
			log.Info("engine started",
				zap.String("city", state.City),
				zap.Bool("demo_mode", state.DemoMode),
				zap.Int("venues", state.Venues),
			)
			return nil
		},
	})
}
