package workspace

import (
	"github.com/gridbase/gridbase/internal/workspace/repository"
	"github.com/gridbase/gridbase/internal/workspace/service"
	"go.uber.org/fx"
)

var Module = fx.Module("workspace.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
