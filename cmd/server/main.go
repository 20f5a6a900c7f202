package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"tokengate/internal/audit"
	compliancehandler "tokengate/internal/compliance/handler"
	complianceservice "tokengate/internal/compliance/service"
	compliancestore "tokengate/internal/compliance/store"
	jwttoken "tokengate/internal/jwt_token"
	ledgerhandler "tokengate/internal/ledger/handler"
	ledgerservice "tokengate/internal/ledger/service"
	ledgerstore "tokengate/internal/ledger/store"
	"tokengate/internal/platform/config"
	"tokengate/internal/platform/database"
	"tokengate/internal/platform/health"
	"tokengate/internal/platform/httpserver"
	"tokengate/internal/platform/kafka"
	"tokengate/internal/platform/kafka/producer"
	"tokengate/internal/platform/logger"
	"tokengate/internal/platform/metrics"
	platformredis "tokengate/internal/platform/redis"
	"tokengate/internal/platform/tracer"
	roleshandler "tokengate/internal/roles/handler"
	rolesservice "tokengate/internal/roles/service"
	rolesstore "tokengate/internal/roles/store"
	"tokengate/internal/seeder"
	httptransport "tokengate/internal/transport/http"
	"tokengate/pkg/domain"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service
// packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	log.Info("initializing tokengate",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"token", cfg.TokenSymbol,
	)

	m := metrics.New()
	healthHandler := health.New(cfg.Environment)

	// Storage: PostgreSQL when configured, in-memory otherwise.
	var (
		rolesStore      rolesservice.Store
		complianceStore complianceservice.Store
		ledgerStore     ledgerservice.Store
		auditSink       audit.Store
	)
	pool, err := database.New(databaseConfig(cfg))
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close() //nolint:errcheck // shutting down anyway
		rolesStore = rolesstore.NewPostgres(pool.DB())
		complianceStore = compliancestore.NewPostgres(pool.DB())
		ledgerStore = ledgerstore.NewPostgres(pool.DB())
		auditSink = audit.NewPostgres(pool.DB())
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
		log.Info("using postgres storage")
	} else {
		rolesStore = rolesstore.New()
		complianceStore = compliancestore.New()
		ledgerStore = ledgerstore.New()
		auditSink = audit.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	// Optional Redis read-through cache for compliance flags.
	redisClient, err := platformredis.New(config.DefaultRedisConfig(cfg.RedisURL))
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck // shutting down anyway
		complianceStore = compliancestore.NewCached(complianceStore, redisClient.Client)
		healthHandler.RegisterCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(ctx)
		})
		log.Info("compliance flag cache enabled")
	}

	// Optional Kafka side-channel for notification records.
	if cfg.KafkaBrokers != "" {
		kafkaProducer, err := producer.New(producer.Config{
			Brokers:         cfg.KafkaBrokers,
			Retries:         3,
			DeliveryTimeout: 10 * time.Second,
		}, log)
		if err != nil {
			return err
		}
		defer kafkaProducer.Close() //nolint:errcheck // shutting down anyway
		auditSink = audit.NewTee(auditSink, audit.NewKafkaSink(kafkaProducer, cfg.KafkaTopic))
		checker := kafka.NewHealthChecker(cfg.KafkaBrokers)
		healthHandler.RegisterCheck(checker.Name(), func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return checker.Check(ctx)
		})
		log.Info("kafka notification sink enabled", "topic", cfg.KafkaTopic)
	}

	publisher := audit.NewPublisher(auditSink,
		audit.WithAsyncBuffer(1024),
		audit.WithPublisherLogger(log),
	)
	defer publisher.Close()

	rolesSvc := rolesservice.NewService(rolesStore, publisher, log,
		rolesservice.WithMetrics(m),
	)
	complianceSvc := complianceservice.NewService(complianceStore, rolesSvc, publisher, log,
		complianceservice.WithMetrics(m),
	)
	ledgerSvc := ledgerservice.NewService(ledgerStore, complianceSvc, rolesSvc, publisher, log,
		ledgerservice.WithMetrics(m),
		ledgerservice.WithTracer(tracer.NewOTel()),
	)

	if cfg.OwnerAddress != "" {
		owner, err := domain.ParseAddress(cfg.OwnerAddress)
		if err != nil {
			return err
		}
		sdr := seeder.New(rolesStore, complianceStore, ledgerSvc, publisher, log)
		if err := sdr.Seed(context.Background(), owner, cfg.InitialSupply); err != nil {
			return err
		}
	} else {
		log.Warn("TOKENGATE_OWNER_ADDRESS not set, admin operations are unavailable until seeded")
	}

	tokenManager, err := jwttoken.NewManager(cfg.JWTSigningKey, cfg.TokenTTL)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.Config{
		RequestTimeout: 30 * time.Second,
		RatePerSecond:  cfg.RatePerSecond,
		RateBurst:      cfg.RateBurst,
	}, httptransport.Handlers{
		Ledger:     ledgerhandler.New(ledgerSvc, log),
		Compliance: compliancehandler.New(complianceSvc, log),
		Roles:      roleshandler.New(rolesSvc, log),
		Health:     healthHandler,
	}, tokenManager, log)

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

func databaseConfig(cfg config.Server) database.Config {
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	return dbCfg
}
