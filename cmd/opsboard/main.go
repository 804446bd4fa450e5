package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/opsboard/opsboard/internal/action"
	"github.com/opsboard/opsboard/internal/billing"
	"github.com/opsboard/opsboard/internal/billing/payments"
	"github.com/opsboard/opsboard/internal/config"
	"github.com/opsboard/opsboard/internal/feed"
	"github.com/opsboard/opsboard/internal/feedback"
	"github.com/opsboard/opsboard/internal/httpx"
	"github.com/opsboard/opsboard/internal/i18n"
	"github.com/opsboard/opsboard/internal/invite"
	"github.com/opsboard/opsboard/internal/server"
	"github.com/opsboard/opsboard/internal/session"
	"github.com/opsboard/opsboard/internal/storage"
	"github.com/opsboard/opsboard/internal/store/sqlite"
	"github.com/opsboard/opsboard/internal/telemetry"
	"github.com/opsboard/opsboard/internal/tenant"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	shutdownTracer, err := telemetry.InitTracer("opsboard", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	manager, err := session.NewManager(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		log.Fatalf("Failed to build session manager: %v", err)
	}

	apiKeys := make([]session.APIKey, 0, len(cfg.API.Keys))
	for _, k := range cfg.API.Keys {
		apiKeys = append(apiKeys, session.APIKey{
			KeyHash:     k.Hash,
			TenantID:    k.TenantID,
			Description: k.Description,
		})
	}
	keychain := session.NewKeychain(apiKeys)

	files, err := storage.NewFS(cfg.Files.Root)
	if err != nil {
		log.Fatalf("Failed to open file storage: %v", err)
	}

	locales, err := i18n.Load(cfg.Locale.Default)
	if err != nil {
		log.Fatalf("Failed to load locale dictionaries: %v", err)
	}

	tenants := tenant.NewService(db)
	invites := invite.NewService(db, cfg.Invite.TTL)
	notifier := feedback.NewNotifier(cfg.Notify.Endpoint, cfg.Notify.Token)

	var paymentOpts []payments.ClientOption
	if cfg.Billing.BaseURL != "" {
		paymentOpts = append(paymentOpts, payments.WithBaseURL(cfg.Billing.BaseURL))
	}
	syncer := billing.NewSyncer(
		payments.NewClient(cfg.Billing.APIKey, paymentOpts...),
		db, logger, cfg.Billing.SyncTimeout,
	)

	// Every execution lands in the request log via the lifecycle callback.
	actions := action.New(logger, action.WithOnExecute(func(e action.ExecutionEvent) {
		if e.Err != nil {
			return // Execute already logged the failure
		}
		logger.Info("audit",
			slog.String("action", e.Action),
			slog.String("kind", string(e.Kind)),
			slog.String("user_id", e.UserID),
			slog.String("tenant_id", e.TenantID),
		)
	}))
	tenant.RegisterActions(actions, tenants)
	invite.RegisterActions(actions, invites)
	billing.RegisterActions(actions, db)
	feedback.RegisterActions(actions, notifier)

	reg := httpx.NewRegistry(logger)
	action.RegisterRoutes(reg, actions, session.RequireSession())
	storage.RegisterRoutes(reg, files, session.RequireSession())
	billing.RegisterRoutes(reg, syncer, session.RequireSession())
	feed.RegisterRoutes(reg, feed.NewRenderer(db, cfg.Site.BaseURL, cfg.Site.Title, logger))
	i18n.RegisterRoutes(reg, locales)

	srv := server.New(cfg.Server.Port, cfg.Server.RequestTimeout, logger,
		session.Middleware(manager, keychain, db, db))
	reg.Mount(srv.Router)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
