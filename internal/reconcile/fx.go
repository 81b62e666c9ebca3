package reconcile

import (
	"github.com/Thapthai/app-microservice-sub000/internal/reconcile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reconcile.service",
	fx.Provide(service.NewService),
)
