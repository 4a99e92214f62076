package job

import (
	"context"

	"github.com/gridbase/gridbase/internal/config"
	"github.com/gridbase/gridbase/internal/job/repository"
	"github.com/gridbase/gridbase/internal/job/runner"
	"go.uber.org/fx"
)

var Module = fx.Module("job.runner",
	fx.Provide(repository.Provide),
	fx.Provide(func(cfg config.Config) runner.Config {
		return runner.Config{
			Workers:      cfg.Job.Workers,
			PollInterval: cfg.Job.PollInterval,
		}
	}),
	fx.Provide(runner.NewRunner),
	fx.Invoke(runWorkers),
)

func runWorkers(lc fx.Lifecycle, r *runner.Runner) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go r.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
