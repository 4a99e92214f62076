package tracing

import (
	"github.com/gridbase/gridbase/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("observability.tracing",
	fx.Provide(func(cfg config.Config) Config {
		return Config{
			Enabled:          cfg.Tracing.Enabled,
			ServiceName:      cfg.Tracing.ServiceName,
			ServiceVersion:   cfg.Tracing.ServiceVersion,
			Environment:      cfg.Environment,
			ExporterEndpoint: cfg.Tracing.ExporterEndpoint,
			ExporterProtocol: cfg.Tracing.ExporterProtocol,
			SamplingRatio:    cfg.Tracing.SamplingRatio,
		}
	}),
	fx.Invoke(NewProvider),
)
