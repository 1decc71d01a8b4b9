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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"frontdesk.app/call-server/core/config"
	"frontdesk.app/call-server/core/db"
	"frontdesk.app/call-server/core/telemetry"
	"frontdesk.app/call-server/internal/http/handler"
	"frontdesk.app/call-server/internal/http/handler/webhook"
	"frontdesk.app/call-server/internal/http/router"
	"frontdesk.app/call-server/internal/notify"
	"frontdesk.app/call-server/internal/service"
	"frontdesk.app/call-server/internal/session"
	"frontdesk.app/call-server/internal/store"
	"frontdesk.app/call-server/internal/telnyx"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	stores := store.New(pool)
	sessions := buildSessionStore(ctx, cfg)

	issuer := telnyx.NewClient(cfg.Telnyx.APIKey, cfg.Telnyx.BaseURL)

	var alerts *notify.AlertClient
	if cfg.AlertWebhookURL != "" {
		alerts = notify.NewAlertClient(cfg.AlertWebhookURL)
	}
	notifier := notify.NewDispatcher(alerts, stores.Handoffs())

	callEvents := service.NewCallEventService(sessions, issuer, stores.Businesses(), cfg.MediaStreamURL)
	handoffs := service.NewHandoffService(
		stores.Businesses(),
		stores.Handoffs(),
		stores.CallRecords(),
		stores.Conversations(),
		issuer,
		notifier,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware("call-server"))

	engine.GET("/healthz", handler.Health)
	router.CallWebhookRouter(engine.Group("/webhooks/calls"),
		webhook.NewCallControlHandler(callEvents),
		webhook.NewMediaStreamHandler(),
	)
	handoffHandler := handler.NewHandoffHandler(handoffs)
	router.HandoffRouter(engine.Group("/handoffs"), handoffHandler)
	router.BusinessRouter(engine.Group("/businesses"), handoffHandler)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "call server listening", "addr", cfg.ListenAddr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildSessionStore picks the registry backing: redis when configured (so
// multiple processes share call state), otherwise the in-process map with
// its TTL sweeper.
func buildSessionStore(ctx context.Context, cfg *config.Config) session.Store {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Warn("invalid redis url, using in-memory session store", "error", err)
		} else {
			return session.NewRedisStore(redis.NewClient(opts), cfg.SessionTTL)
		}
	}

	memory := session.NewMemoryStore(cfg.SessionTTL)
	memory.StartSweeper(ctx, cfg.SweepInterval)
	return memory
}
