package main

import (
	"github.com/Thapthai/app-microservice-sub000/internal/audit"
	"github.com/Thapthai/app-microservice-sub000/internal/catalog"
	"github.com/Thapthai/app-microservice-sub000/internal/config"
	"github.com/Thapthai/app-microservice-sub000/internal/dispense"
	"github.com/Thapthai/app-microservice-sub000/internal/lifecycle"
	"github.com/Thapthai/app-microservice-sub000/internal/metrics"
	"github.com/Thapthai/app-microservice-sub000/internal/migration"
	"github.com/Thapthai/app-microservice-sub000/internal/reconcile"
	"github.com/Thapthai/app-microservice-sub000/internal/server"
	"github.com/Thapthai/app-microservice-sub000/pkg/db"
	"github.com/Thapthai/app-microservice-sub000/pkg/log"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		metrics.Module,
		migration.Module,

		audit.Module,
		catalog.Module,
		dispense.Module,
		lifecycle.Module,
		reconcile.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
