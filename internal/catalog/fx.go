package catalog

import (
	"time"

	catalogdomain "github.com/smallbiznis/streetsignal/internal/catalog/domain"
	"github.com/smallbiznis/streetsignal/internal/catalog/repository"
	"github.com/smallbiznis/streetsignal/internal/clock"
	"github.com/smallbiznis/streetsignal/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	Clock  clock.Clock
	DB     *gorm.DB `optional:"true"`
}

var Module = fx.Module("catalog",
	fx.Provide(NewSource),
)

// NewSource returns the breaker-guarded courts source, or an unconfigured
// source when the catalog is disabled.
func NewSource(p Params) catalogdomain.Source {
	log := p.Log.Named("catalog")
	if !p.Config.Catalog.Enabled || p.DB == nil {
		log.Info("catalog not configured, demo data will be used")
		return catalogdomain.Unconfigured{}
	}
	return repository.NewBreakerSource(
		repository.NewSource(p.DB),
		repository.BreakerConfig{
			MaxFailures:  p.Config.Catalog.BreakerFailures,
			ResetTimeout: time.Duration(p.Config.Catalog.BreakerResetSecs) * time.Second,
		},
		p.Clock,
		log,
	)
}
