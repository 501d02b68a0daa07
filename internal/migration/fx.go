package migration

import (
	"github.com/smallbiznis/gestao/internal/config"
	"github.com/smallbiznis/gestao/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		log = log.Named("migration")

		if cfg.DBType == db.TypeSQLite {
			log.Info("applying schema with gorm automigrate", zap.String("dialect", cfg.DBType))
			return AutoMigrate(conn)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
		log.Info("migrations applied", zap.String("dialect", cfg.DBType))
		return nil
	}),
)
