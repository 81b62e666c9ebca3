package catalog

import (
	"github.com/Thapthai/app-microservice-sub000/internal/catalog/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog",
	fx.Provide(repository.Provide),
)
