package dispense

import (
	"github.com/Thapthai/app-microservice-sub000/internal/dispense/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("dispense.source",
	fx.Provide(repository.Provide),
)
