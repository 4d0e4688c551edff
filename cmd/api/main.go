package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iacastillo90/petcare-booking/internal/audit"
	"github.com/iacastillo90/petcare-booking/internal/cache"
	"github.com/iacastillo90/petcare-booking/internal/clock"
	"github.com/iacastillo90/petcare-booking/internal/config"
	dbpkg "github.com/iacastillo90/petcare-booking/internal/db"
	domain "github.com/iacastillo90/petcare-booking/internal/domain/booking"
	"github.com/iacastillo90/petcare-booking/internal/domain/pricing"
	"github.com/iacastillo90/petcare-booking/internal/handlers"
	"github.com/iacastillo90/petcare-booking/internal/infra/access"
	"github.com/iacastillo90/petcare-booking/internal/infra/memory"
	infraRepo "github.com/iacastillo90/petcare-booking/internal/infra/repository"
	"github.com/iacastillo90/petcare-booking/internal/logger"
	"github.com/iacastillo90/petcare-booking/internal/obs"
	"github.com/iacastillo90/petcare-booking/internal/queue"
	"github.com/iacastillo90/petcare-booking/internal/routes"
	usecase "github.com/iacastillo90/petcare-booking/internal/usecase/booking"
	"github.com/iacastillo90/petcare-booking/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// roster is the lookup side both directories implement.
type roster interface {
	domain.Directory
	access.Roster
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, "petcare-booking", cfg.OTLPEndpoint, cfg.AppEnv)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	// ======================================================
	// 🔧 INFRA
	// ======================================================
	var (
		store     domain.Store
		directory roster
		sinks     []audit.Sink
		reader    handlers.AuditReader
		health    = map[string]handlers.Pinger{}
	)

	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := dbpkg.NewDB(cfg.DBUrl, !cfg.Production())
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		store = infraRepo.NewBookingGormStore(db)
		directory = infraRepo.NewDirectoryGorm(db)

		auditLogger := audit.New(db)
		sinks = append(sinks, auditLogger)
		reader = auditLogger
		health["database"] = sqlDB
	default:
		log.Warn("running on the in-memory store; data is lost on exit")
		store = memory.NewStore()
		directory = memory.NewDirectory()
		sinks = append(sinks, audit.NewZapSink(log.Named("audit")))
	}

	var scheduleCache usecase.ScheduleCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn("redis unavailable, schedule cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			scheduleCache = cache.NewScheduleCache(rdb, cfg.ScheduleCacheTTL)
			health["redis"] = redisPinger{client: rdb}
		}
	}

	if cfg.RabbitMQURL != "" {
		pub, err := queue.NewPublisher(cfg.RabbitMQURL, cfg.BookingExchange)
		if err != nil {
			log.Warn("rabbitmq unavailable, booking events not published", zap.Error(err))
		} else {
			defer pub.Close()
			sinks = append(sinks, pub)
		}
	}

	dispatcher := audit.NewDispatcher(log.Named("events"), 256, sinks...)
	permissions := access.NewRolePermissions(directory)
	clk := clock.System{}

	// ======================================================
	// 🧠 USE CASES
	// ======================================================
	lifecycle := usecase.NewLifecycle(usecase.Deps{
		Store:         store,
		Directory:     directory,
		Permissions:   permissions,
		Checker:       domain.NewAvailabilityChecker(cfg.HoldPolicy),
		Pricing:       pricing.NewEngine(),
		Clock:         clk,
		FeePercentage: cfg.PlatformFeePercentage,
		Events:        dispatcher,
		Cache:         scheduleCache,
		Log:           log.Named("booking"),
	})

	expiry := worker.NewPendingExpiry(lifecycle.Expire, cfg.PendingExpiryInterval, log.Named("expiry"))

	// ======================================================
	// 🌐 HTTP
	// ======================================================
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	routes.RegisterRoutes(r, routes.Dependencies{
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		Lifecycle:   lifecycle,
		Permissions: permissions,
		Clock:       clk,
		Log:         log.Named("http"),
		AuditReader: reader,
		Health:      health,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Events outlive the HTTP server so requests in flight during shutdown
	// are still recorded.
	eventsCtx, stopEvents := context.WithCancel(context.Background())
	defer stopEvents()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server running", zap.String("addr", cfg.Addr()), zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		stopEvents()
		return err
	})

	g.Go(func() error {
		return dispatcher.Run(eventsCtx)
	})

	g.Go(func() error {
		return expiry.Run(gctx)
	})

	return g.Wait()
}
