package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gridbase/gridbase/internal/config"
	jobdomain "github.com/gridbase/gridbase/internal/job/domain"
	"github.com/gridbase/gridbase/internal/observability/logger"
	"github.com/gridbase/gridbase/internal/observability/tracing"
	snapshotdomain "github.com/gridbase/gridbase/internal/snapshot/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	DB          *gorm.DB
	SnapshotSvc snapshotdomain.Service
	JobRepo     jobdomain.Repository
}

type Server struct {
	cfg         config.Config
	log         *zap.Logger
	db          *gorm.DB
	snapshotSvc snapshotdomain.Service
	jobRepo     jobdomain.Repository

	createLimiter *rateLimiter
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:           p.Cfg,
		log:           p.Log.Named("server"),
		db:            p.DB,
		snapshotSvc:   p.SnapshotSvc,
		jobRepo:       p.JobRepo,
		createLimiter: newRateLimiter(p.Cfg.HTTP.CreateRateLimit, p.Cfg.HTTP.CreateRateWindow),
	}
}

// Engine builds the gin engine with middleware and routes attached.
func (s *Server) Engine() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(tracing.GinMiddleware())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	engine.GET("/healthz", s.Healthz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	api.Use(s.requireIdentity())
	{
		api.GET("/applications/:id/snapshots", s.ListSnapshots)
		api.POST("/applications/:id/snapshots", s.CreateSnapshot)
		api.POST("/snapshots/:id/restore", s.RestoreSnapshot)
		api.DELETE("/snapshots/:id", s.DeleteSnapshot)
		api.GET("/jobs/:id", s.GetJob)
	}

	return engine
}

func (s *Server) Healthz(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(runServer),
)

func runServer(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:              s.cfg.HTTP.Addr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			s.log.Info("http server listening", zap.String("addr", srv.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
