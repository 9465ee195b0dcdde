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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/app"
	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/config"
	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/httpx"
	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/pkg/cache"
	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/pkg/metrics"
	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/pkg/telemetry"
	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/store/sqlite"
	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/xendit"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.XenditSecretKey == "" {
		slog.Warn("XENDIT_SECRET_KEY not set; checkout will answer with a configuration error")
	}
	if cfg.CallbackToken == "" {
		slog.Warn("XENDIT_CALLBACK_TOKEN not set; webhooks will answer with a configuration error")
	}

	shutdown, err := telemetry.SetupTracer(ctx, "storefront")
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

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var catalogCache cache.Cache
	if cfg.RedisAddr != "" {
		catalogCache = cache.NewRedisCache(cfg.RedisAddr, "storefront")
	}

	provider := xendit.NewClient(cfg.XenditSecretKey, cfg.ProviderTimeout)

	checkoutSvc := app.NewCheckoutService(store, provider, cfg.ShippingCost, cfg.InvoiceExpiry, cfg.RedirectBaseURL)
	webhookSvc := app.NewWebhookService(store)
	statusSvc := app.NewStatusService(store)
	catalogSvc := app.NewCatalogService(store, catalogCache)

	srvMetrics := metrics.NewServerMetrics("api")
	handler := httpx.NewHandler(checkoutSvc, webhookSvc, statusSvc, catalogSvc, store, cfg.CallbackToken, srvMetrics)
	router := httpx.NewRouter(handler)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           otelhttp.NewHandler(router, "storefront"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("storefront listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
}
