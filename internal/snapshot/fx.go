package snapshot

import (
	"github.com/gridbase/gridbase/internal/job/runner"
	snapshotdomain "github.com/gridbase/gridbase/internal/snapshot/domain"
	"github.com/gridbase/gridbase/internal/snapshot/repository"
	"github.com/gridbase/gridbase/internal/snapshot/service"
	"go.uber.org/fx"
)

var Module = fx.Module("snapshot.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Invoke(func(r *runner.Runner, svc snapshotdomain.Service) {
		service.RegisterJobTypes(r, svc)
	}),
)
