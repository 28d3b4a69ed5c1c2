// Server entrypoint. Wires configuration, stores, services and the HTTP
// router; business logic lives in the internal packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"carelink/internal/audit"
	"carelink/internal/auth"
	httpapi "carelink/internal/http"
	"carelink/internal/platform/config"
	"carelink/internal/platform/httpserver"
	"carelink/internal/platform/logger"
	"carelink/internal/platform/metrics"
	"carelink/internal/platform/postgres"
	platformredis "carelink/internal/platform/redis"
	"carelink/internal/presence"
	"carelink/internal/registry"
	"carelink/internal/snapshot"
	"carelink/internal/vitals"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Stores: Postgres when configured, in-memory otherwise (dev and test).
	var (
		accountStore   registry.AccountStore
		adultStore     registry.AdultStore
		eventStore     presence.EventStore
		excursionStore presence.ExcursionStore
		vitalsStore    vitals.Store
	)
	if cfg.PostgresURL != "" {
		db, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
		accountStore = registry.NewPostgresAccountStore(db)
		adultStore = registry.NewPostgresAdultStore(db)
		eventStore = presence.NewPostgresEventStore(db)
		excursionStore = presence.NewPostgresExcursionStore(db)
		vitalsStore = vitals.NewPostgresStore(db)
	} else {
		log.Warn("no postgres URL configured, using in-memory stores")
		accountStore = registry.NewMemoryAccountStore()
		adultStore = registry.NewMemoryAdultStore()
		eventStore = presence.NewMemoryEventStore()
		excursionStore = presence.NewMemoryExcursionStore()
		vitalsStore = vitals.NewMemoryStore()
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	var rememberedIndex auth.RememberedIndex
	if redisClient != nil {
		defer redisClient.Close()
		rememberedIndex = auth.NewRedisIndex(redisClient.Client, cfg.RememberedTokenTTL)
	}

	// Audit: Kafka when brokers are configured, in-process store otherwise.
	var sink audit.Sink = audit.NewPublisher(audit.NewMemoryStore())
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("kafka publisher setup failed", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close(context.Background())
		sink = kafkaSink
	}

	tokens := auth.NewTokenService(
		cfg.AccessTokenSecret, cfg.RememberedTokenSecret,
		cfg.AccessTokenTTL, cfg.RememberedTokenTTL,
	)

	registrySvc := registry.NewService(accountStore, adultStore, log)
	authSvc := auth.NewService(accountStore, adultStore, tokens, rememberedIndex, sink, m, log, cfg.RememberedDeviceCap)
	presenceSvc := presence.NewService(eventStore, excursionStore, adultStore, sink, m, log)
	vitalsSvc := vitals.NewService(vitalsStore, adultStore, m, log)
	snapshotSvc := snapshot.NewService(registrySvc, presenceSvc, vitalsSvc, m, log)

	router := httpapi.NewRouter(httpapi.Deps{
		Registry:  registrySvc,
		Auth:      authSvc,
		Presence:  presenceSvc,
		Vitals:    vitalsSvc,
		Snapshots: snapshotSvc,
		Validator: auth.NewValidator(tokens),
		Metrics:   m,
		Logger:    log,
		Health: func() map[string]string {
			checks := map[string]string{"server": "ok"}
			if redisClient != nil {
				checks["redis"] = "ok"
				if err := redisClient.Health(context.Background()); err != nil {
					checks["redis"] = err.Error()
				}
			}
			return checks
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
