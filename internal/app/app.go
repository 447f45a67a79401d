package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emberwell/pulsecheck-backend/internal/data/db"
	"github.com/emberwell/pulsecheck-backend/internal/observability"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
)

const shutdownTimeout = 15 * time.Second

// App owns every long-lived component of the service and the order they
// come up and go down in.
type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *gorm.DB
	Clients  Clients
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics
	Router   *gin.Engine

	httpServer   *http.Server
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	cfg := LoadConfig()
	if cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log, err := logger.New(cfg.Mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Starting", "service", serviceName, "version", Version, "mode", cfg.Mode)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	clients, err := wireClients(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	metrics := observability.Init(log)

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, reposet, clients)
	if err != nil {
		clients.Close()
		log.Sync()
		return nil, err
	}
	handlerset := wireHandlers(theDB, serviceset, clients)
	router := wireRouter(log, metrics, handlerset)

	return &App{
		Log:      log,
		Cfg:      cfg,
		DB:       theDB,
		Clients:  clients,
		Repos:    reposet,
		Services: serviceset,
		Metrics:  metrics,
		Router:   router,
	}, nil
}

// Start brings up tracing, the metrics endpoint and collectors, the job
// worker, and finally the HTTP listener. It does not block.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.otelShutdown = observability.InitOTel(ctx, a.Log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: a.Cfg.Mode,
		Version:     Version,
	})

	if a.Metrics != nil {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
		a.Metrics.StartPostgresCollector(ctx, a.Log, a.DB)
		a.Metrics.StartJobQueueCollector(ctx, a.Log, a.DB)
		a.Metrics.StartSLOEvaluator(ctx, a.Log)
		if a.Cfg.RedisAddr != "" {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Cfg.RedisAddr)
		}
	}

	if a.Services.JobWorker != nil {
		a.Services.JobWorker.Start(ctx)
	}

	a.httpServer = &http.Server{
		Addr:              ":" + a.Cfg.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		a.Log.Info("HTTP server listening", "addr", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Error("HTTP server failed", "error", err)
		}
	}()
	return nil
}

// Close drains the HTTP server, stops the worker and collectors, flushes
// traces, and closes the clients. Safe to call once after Start.
func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.Log.Warn("HTTP shutdown incomplete", "error", err)
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("OTel shutdown incomplete", "error", err)
		}
	}
	a.Clients.Close()
	if a.Log != nil {
		a.Log.Sync()
	}
}
