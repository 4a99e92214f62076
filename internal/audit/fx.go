package audit

import (
	"github.com/gridbase/gridbase/internal/audit/repository"
	"github.com/gridbase/gridbase/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
