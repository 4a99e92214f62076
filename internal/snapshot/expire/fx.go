package expire

import (
	"context"

	"github.com/gridbase/gridbase/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("snapshot.expire",
	fx.Provide(func(cfg config.Config) Config {
		return Config{SweepInterval: cfg.Snapshot.SweepInterval}
	}),
	fx.Provide(NewWorker),
	fx.Invoke(runWorker),
)

func runWorker(lc fx.Lifecycle, worker *Worker) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go worker.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
