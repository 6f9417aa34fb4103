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

	"github.com/jcmexdev/restaurant-checkout/internal/backend"
	"github.com/jcmexdev/restaurant-checkout/internal/checkout"
	"github.com/jcmexdev/restaurant-checkout/internal/checkout/journal"
	"github.com/jcmexdev/restaurant-checkout/internal/checkout/journal/sqlite"
	"github.com/jcmexdev/restaurant-checkout/internal/checkout/submission"
	"github.com/jcmexdev/restaurant-checkout/internal/checkout/token"
	"github.com/jcmexdev/restaurant-checkout/internal/config"
	"github.com/jcmexdev/restaurant-checkout/internal/gatekeeper"
	"github.com/jcmexdev/restaurant-checkout/internal/gateway/httpx"
	"github.com/jcmexdev/restaurant-checkout/internal/menu"
	"github.com/jcmexdev/restaurant-checkout/internal/pkg/cache"
	"github.com/jcmexdev/restaurant-checkout/internal/pkg/clock"
	"github.com/jcmexdev/restaurant-checkout/internal/pkg/telemetry"
)

const serviceName = "checkout-gateway"

func main() {
	cfg, err := config.Load()
	if err != nil {
		telemetry.InitLogger("info")
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, telemetry.TracerConfig{
		ServiceName: serviceName,
		Endpoint:    cfg.OTLPEndpoint,
		Environment: cfg.Environment,
		SampleRatio: cfg.SampleRatio,
	})
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	clk := clock.Real{}
	api := backend.New(cfg.BackendURL, cfg.BackendTimeout)

	var menuCache cache.Cache
	if cfg.RedisAddr != "" {
		menuCache = cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, serviceName)
		if err := cache.Ping(ctx, menuCache); err != nil {
			slog.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
	} else {
		menuCache = cache.NewMemoryCache(clk, serviceName)
	}

	var j journal.Repository = journal.NewMemory()
	if cfg.JournalPath != "" {
		repo, err := sqlite.Open(cfg.JournalPath)
		if err != nil {
			slog.Error("failed to open checkout journal", "path", cfg.JournalPath, "error", err)
			os.Exit(1)
		}
		defer repo.Close()
		j = repo
	}

	catalog := menu.NewCatalog(api, menuCache, cfg.MenuTTL)
	gate := gatekeeper.New(api, catalog, gatekeeper.Policy{FailOpenOnTransientError: cfg.FailOpenOnTableCheckError})
	submitter := submission.NewClient(api, token.NewBroker(api, clk), clk)
	sessions := checkout.NewRegistry(submitter, clk, j, cfg.SessionIdleTTL)
	go sessions.Run(ctx, time.Minute)

	handler := httpx.NewHandler(sessions, gate, catalog, submitter, j)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("checkout gateway running", "addr", cfg.HTTPAddr, "backend", cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}
}
