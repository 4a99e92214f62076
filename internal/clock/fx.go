package clock

import (
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
)

var Module = fx.Module("clock",
	fx.Provide(func() clockwork.Clock {
		return clockwork.NewRealClock()
	}),
)
