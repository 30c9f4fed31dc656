package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/sercha-hubspot/internal/adapters/driven/auth"
	"github.com/custodia-labs/sercha-hubspot/internal/adapters/driven/connectors/hubspot"
	"github.com/custodia-labs/sercha-hubspot/internal/adapters/driven/crypto"
	"github.com/custodia-labs/sercha-hubspot/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/sercha-hubspot/internal/adapters/driven/redis"
	"github.com/custodia-labs/sercha-hubspot/internal/adapters/driving/http"
	"github.com/custodia-labs/sercha-hubspot/internal/config"
	"github.com/custodia-labs/sercha-hubspot/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-hubspot/internal/core/services"
	"github.com/custodia-labs/sercha-hubspot/internal/worker"
)

var version = "dev"

func main() {
	// Run mode from RUN_MODE or the first argument
	mode := os.Getenv("RUN_MODE")
	var args []string
	if len(os.Args) > 1 {
		mode = os.Args[1]
		args = os.Args[2:]
	}
	if mode == "" {
		mode = "api"
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	switch mode {
	case "api":
		if err := runAPI(cfg, logger); err != nil {
			logger.Error("server exited", "error", err)
			os.Exit(1)
		}
	case "token":
		if err := runToken(cfg, args); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	default:
		log.Fatalf("Unknown mode: %s (use: api or token)", mode)
	}
}

func runAPI(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("sercha-hubspot starting", "version", version, "store", cfg.StoreBackend())

	// Cancel on SIGINT/SIGTERM for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ===== Store (Redis if configured, otherwise PostgreSQL) =====
	var (
		store   driven.EphemeralStore
		janitor *worker.Worker
	)
	switch cfg.StoreBackend() {
	case "redis":
		client, err := redisadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		store = redisadapter.NewStore(client)
		logger.Info("using redis store")

	case "postgres":
		db, err := postgres.Connect(ctx, postgres.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			return err
		}
		defer db.Close()

		// Initialize schema (idempotent)
		if err := db.InitSchema(ctx); err != nil {
			return err
		}
		pgStore := postgres.NewStore(db.DB)
		store = pgStore
		logger.Info("using postgresql store")

		// Rows do not expire on their own
		janitor = worker.NewWorker(worker.WorkerConfig{
			Store:    pgStore,
			Logger:   logger,
			Interval: cfg.JanitorInterval,
		})
		if err := janitor.Start(ctx); err != nil {
			return fmt.Errorf("start janitor: %w", err)
		}
		defer janitor.Stop()
	}

	// ===== Encryption at rest (optional) =====
	if cfg.MasterKey != "" {
		enc, err := crypto.NewSecretEncryptorFromMaster(cfg.MasterKey)
		if err != nil {
			return fmt.Errorf("init encryptor: %w", err)
		}
		store = crypto.NewEncryptingStore(store, enc)
		logger.Info("stored values are encrypted")
	} else {
		logger.Warn("SERCHA_MASTER_KEY not set, stored values are kept in plaintext")
	}

	// ===== Caller authentication (optional) =====
	var authAdapter driven.AuthAdapter
	if cfg.JWTSecret != "" {
		authAdapter = auth.NewAdapter(cfg.JWTSecret)
	} else {
		logger.Warn("SERCHA_JWT_SECRET not set, caller authentication is disabled")
	}

	// ===== HubSpot connector =====
	hsConfig := cfg.Connector()
	integrationService := services.NewIntegrationService(services.IntegrationServiceConfig{
		Store:    store,
		Provider: hubspot.NewOAuthHandler(hsConfig),
		Contacts: hubspot.NewClient(hsConfig),
		Logger:   logger,
	})

	server := http.NewServer(http.Config{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        version,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, integrationService, store, authAdapter, logger)
	if janitor != nil {
		server.SetJanitor(janitor)
	}

	return server.Start(ctx)
}

// runToken prints a caller token for local testing.
func runToken(cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: sercha-hubspot token <user_id> <org_id>")
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("SERCHA_JWT_SECRET is required to issue tokens")
	}

	token, err := auth.NewAdapter(cfg.JWTSecret).IssueToken(args[0], args[1], auth.DefaultTokenTTL)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	fmt.Println(token)
	return nil
}
