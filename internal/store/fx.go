package store

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/streetsignal/internal/config"
	"github.com/smallbiznis/streetsignal/internal/store/database"
	storedomain "github.com/smallbiznis/streetsignal/internal/store/domain"
	"github.com/smallbiznis/streetsignal/internal/store/memory"
	storeredis "github.com/smallbiznis/streetsignal/internal/store/redis"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrRedisAddrRequired = errors.New("redis_addr_required")

type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config config.Config
	Log    *zap.Logger
	DB     *gorm.DB `optional:"true"`
}

var Module = fx.Module("store",
	fx.Provide(New),
)

// New selects the persisted store backend from configuration.
func New(p Params) (storedomain.Store, error) {
	cfg := p.Config.Store
	switch cfg.Backend {
	case config.StoreBackendMemory:
		return memory.New(p.Log), nil
	case config.StoreBackendRedis:
		if cfg.RedisAddr == "" {
			return nil, ErrRedisAddrRequired
		}
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		p.Lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		return storeredis.New(client, cfg.RedisPrefix, p.Log), nil
	default:
		if p.DB == nil {
			p.Log.Warn("database store requested without a database, using memory store")
			return memory.New(p.Log), nil
		}
		return database.New(p.DB, p.Log), nil
	}
}
