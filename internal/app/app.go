// Package app assembles stores, services, handlers and the router from
// configuration. The binaries under cmd/ and the HTTP tests share it.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/apptqueue/internal/config"
	activityh "github.com/jwalitptl/apptqueue/internal/handler/activity"
	appointmenth "github.com/jwalitptl/apptqueue/internal/handler/appointment"
	authh "github.com/jwalitptl/apptqueue/internal/handler/auth"
	dashboardh "github.com/jwalitptl/apptqueue/internal/handler/dashboard"
	"github.com/jwalitptl/apptqueue/internal/handler/health"
	queueh "github.com/jwalitptl/apptqueue/internal/handler/queue"
	serviceh "github.com/jwalitptl/apptqueue/internal/handler/service"
	staffh "github.com/jwalitptl/apptqueue/internal/handler/staff"
	"github.com/jwalitptl/apptqueue/internal/middleware"
	"github.com/jwalitptl/apptqueue/internal/repository"
	"github.com/jwalitptl/apptqueue/internal/repository/memory"
	"github.com/jwalitptl/apptqueue/internal/repository/postgres"
	"github.com/jwalitptl/apptqueue/internal/router"
	"github.com/jwalitptl/apptqueue/internal/service/activity"
	"github.com/jwalitptl/apptqueue/internal/service/appointment"
	authsvc "github.com/jwalitptl/apptqueue/internal/service/auth"
	"github.com/jwalitptl/apptqueue/internal/service/catalog"
	"github.com/jwalitptl/apptqueue/internal/service/dashboard"
	"github.com/jwalitptl/apptqueue/internal/service/queue"
	"github.com/jwalitptl/apptqueue/internal/service/staff"
	"github.com/jwalitptl/apptqueue/pkg/auth"
	"github.com/jwalitptl/apptqueue/pkg/logger"
	"github.com/jwalitptl/apptqueue/pkg/messaging"
	"github.com/jwalitptl/apptqueue/pkg/messaging/kafka"
	"github.com/jwalitptl/apptqueue/pkg/messaging/redis"
	"github.com/jwalitptl/apptqueue/pkg/metrics"
	"github.com/jwalitptl/apptqueue/pkg/security"
)

type App struct {
	Store        repository.Store
	Activity     *activity.Service
	Queue        *queue.Manager
	Appointments *appointment.Service
	Staff        *staff.Service
	Catalog      *catalog.Service
	Dashboard    *dashboard.Service
	Auth         *authsvc.Service
	Router       *router.Router
}

// New wires every service over store. gatherer backs /health/metrics.
func New(cfg *config.Config, store repository.Store, log *logger.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer) *App {
	repos := store.Repositories()

	activitySvc := activity.NewService(repos.Activity, log)
	queueMgr := queue.NewManager(store, activitySvc,
		queue.WithConflictCheck(cfg.Assignment.QueueConflictCheck),
		queue.WithMetrics(m),
		queue.WithLogger(log),
	)
	a := &App{
		Store:        store,
		Activity:     activitySvc,
		Queue:        queueMgr,
		Appointments: appointment.NewService(store, queueMgr, activitySvc, m, log),
		Staff:        staff.NewService(store, activitySvc),
		Catalog:      catalog.NewService(repos.Services, activitySvc),
		Dashboard:    dashboard.NewService(store),
		Auth: authsvc.NewService(
			repos.Users,
			auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour),
			security.NewBcryptHasher(bcrypt.DefaultCost),
		),
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	}

	a.Router = router.NewRouter(
		middleware.NewAuthMiddleware(a.Auth),
		router.Handlers{
			Auth:   authh.NewHandler(a.Auth),
			Health: health.NewHandler(store, gatherer),
			Domain: []router.Handler{
				staffh.NewHandler(a.Staff),
				serviceh.NewHandler(a.Catalog),
				appointmenth.NewHandler(a.Appointments),
				queueh.NewHandler(a.Queue),
				dashboardh.NewHandler(a.Dashboard),
				activityh.NewHandler(a.Activity),
			},
		},
		router.RouterConfig{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			RateClientTTL:    cfg.RateLimit.ClientTTL,
			CORSConfig:       corsConfig,
			Metrics:          m,
		},
	)
	a.Router.Setup()
	return a
}

// NewLogger builds the service logger and installs it as the global one.
func NewLogger(cfg config.LogConfig) *logger.Logger {
	l := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		JSON:       cfg.JSON,
	})
	l.SetGlobal()
	return l
}

// OpenStore connects the configured store. The returned func releases it.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (repository.Store, func() error, error) {
	if cfg.Driver == "memory" {
		log.Warn("using in-memory store; data is lost on exit")
		return memory.NewStore(), func() error { return nil }, nil
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	return postgres.NewStore(db), db.Close, nil
}

// OpenBroker returns the broker selected by messaging.driver.
func OpenBroker(cfg *config.Config, zl *zerolog.Logger) (messaging.Broker, error) {
	switch cfg.Messaging.Driver {
	case "none":
		return messaging.NopBroker{}, nil
	case "redis":
		return redis.NewRedisBroker(redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, zl)
	case "kafka":
		return kafka.NewKafkaBroker(kafka.Config{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.GroupID,
		}, zl)
	}
	return nil, fmt.Errorf("unknown messaging driver %q", cfg.Messaging.Driver)
}
