package lifecycle

import (
	"github.com/Thapthai/app-microservice-sub000/internal/lifecycle/repository"
	"github.com/Thapthai/app-microservice-sub000/internal/lifecycle/service"
	"go.uber.org/fx"
)

var Module = fx.Module("lifecycle.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
