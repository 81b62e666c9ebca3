package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	auditdomain "github.com/Thapthai/app-microservice-sub000/internal/audit/domain"
	"github.com/Thapthai/app-microservice-sub000/internal/config"
	lifecycledomain "github.com/Thapthai/app-microservice-sub000/internal/lifecycle/domain"
	reconciledomain "github.com/Thapthai/app-microservice-sub000/internal/reconcile/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(RunHTTP),
)

type ServerParam struct {
	fx.In

	Log       *zap.Logger
	Config    config.Config
	Lifecycle lifecycledomain.Service
	Reconcile reconciledomain.Service
	Audit     auditdomain.Recorder
	Registry  *prometheus.Registry
}

type Server struct {
	log          *zap.Logger
	cfg          config.Config
	lifecyclesvc lifecycledomain.Service
	reconcilesvc reconciledomain.Service
	auditsvc     auditdomain.Recorder
	registry     *prometheus.Registry
}

func NewEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(ErrorHandlingMiddleware())
	return engine
}

func NewServer(p ServerParam) *Server {
	return &Server{
		log:          p.Log.Named("server"),
		cfg:          p.Config,
		lifecyclesvc: p.Lifecycle,
		reconcilesvc: p.Reconcile,
		auditsvc:     p.Audit,
		registry:     p.Registry,
	}
}

func RegisterRoutes(engine *gin.Engine, s *Server) {
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.cfg.AppVersion})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := engine.Group("/api/v1")
	{
		api.POST("/episodes", s.CreateEpisode)
		api.GET("/episodes/:id", s.GetEpisode)
		api.DELETE("/episodes/:id", s.DeleteEpisode)

		api.POST("/items/:id/usage", s.RecordUsage)
		api.POST("/items/:id/returns", s.RecordReturn)
		api.GET("/items/pending", s.ListPendingItems)

		api.GET("/returns", s.ListReturnHistory)
		api.GET("/statistics", s.QuantityStatistics)
		api.GET("/reconciliation", s.CompareDispensedVsUsage)
		api.GET("/operation-logs", s.ListOperationLogs)
	}
}

func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, s *Server) {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				s.log.Info("http server listening", zap.String("addr", s.cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
