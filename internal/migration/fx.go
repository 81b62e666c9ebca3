package migration

import (
	"github.com/Thapthai/app-microservice-sub000/internal/audit/domain"
	catalogdomain "github.com/Thapthai/app-microservice-sub000/internal/catalog/domain"
	"github.com/Thapthai/app-microservice-sub000/internal/config"
	dispensedomain "github.com/Thapthai/app-microservice-sub000/internal/dispense/domain"
	episodedomain "github.com/Thapthai/app-microservice-sub000/internal/episode/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// Non-postgres targets (sqlite dev databases) use gorm's schema sync.
			return conn.AutoMigrate(
				&episodedomain.UsageEpisode{},
				&episodedomain.LineItem{},
				&episodedomain.ReturnRecord{},
				&dispensedomain.DispensedEvent{},
				&catalogdomain.ItemCatalogEntry{},
				&domain.OperationLog{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
