package audit

import (
	"github.com/Thapthai/app-microservice-sub000/internal/audit/repository"
	"github.com/Thapthai/app-microservice-sub000/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.recorder",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewRecorder),
)
