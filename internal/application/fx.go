package application

import (
	"github.com/bwmarrin/snowflake"
	applicationdomain "github.com/gridbase/gridbase/internal/application/domain"
	"github.com/gridbase/gridbase/internal/application/repository"
	"github.com/gridbase/gridbase/internal/application/serializer"
	"github.com/gridbase/gridbase/internal/application/service"
	"go.uber.org/fx"
)

var Module = fx.Module("application.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(func(genID *snowflake.Node) *applicationdomain.Registry {
		return applicationdomain.NewRegistry(serializer.NewGridType(genID))
	}),
)
