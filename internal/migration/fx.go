package migration

import (
	"github.com/smallbiznis/streetsignal/internal/config"
	"github.com/smallbiznis/streetsignal/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(Apply),
)

// Apply brings the schema up to date for the configured dialect.
func Apply(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
	if cfg.DBType != db.TypePostgres {
		log.Info("auto migrating schema", zap.String("type", cfg.DBType))
		return AutoMigrate(conn)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	log.Info("applying postgres migrations")
	return RunMigrations(sqlDB)
}
