// Package expire flags snapshots that outlived the retention window.
// The flagged snapshots are torn down by their scheduled jobs; the
// sweeper itself never touches data.
package expire

import (
	"context"

	snapshotdomain "github.com/gridbase/gridbase/internal/snapshot/domain"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clockwork.Clock
	Service snapshotdomain.Service
	Config  Config `optional:"true"`
}

type Worker struct {
	log     *zap.Logger
	clock   clockwork.Clock
	service snapshotdomain.Service
	cfg     Config
}

func NewWorker(p Params) *Worker {
	return &Worker{
		log:     p.Log.Named("snapshot.expire"),
		clock:   p.Clock,
		service: p.Service,
		cfg:     p.Config.withDefaults(),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := w.clock.NewTicker(w.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("expiration sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}
	}
}

func (w *Worker) RunOnce(ctx context.Context) error {
	flagged, err := w.service.DeleteExpired(ctx)
	if err != nil {
		return err
	}
	if flagged > 0 {
		w.log.Info("flagged expired snapshots", zap.Int("count", flagged))
	}
	return nil
}
