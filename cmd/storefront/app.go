package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	adminapp "github.com/TheRipper284/frontend/internal/application/admin"
	cartapp "github.com/TheRipper284/frontend/internal/application/cart"
	catalogapp "github.com/TheRipper284/frontend/internal/application/catalog"
	"github.com/TheRipper284/frontend/internal/application/checkout"
	identityapp "github.com/TheRipper284/frontend/internal/application/identity"
	messagingapp "github.com/TheRipper284/frontend/internal/application/messaging"
	tradeapp "github.com/TheRipper284/frontend/internal/application/trade"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
	"github.com/TheRipper284/frontend/internal/infrastructure/config"
	"github.com/TheRipper284/frontend/internal/infrastructure/logger"
	"github.com/TheRipper284/frontend/internal/infrastructure/marketapi"
	"github.com/TheRipper284/frontend/internal/infrastructure/navigation"
	"github.com/TheRipper284/frontend/internal/infrastructure/notify"
	"github.com/TheRipper284/frontend/internal/infrastructure/storage"
	"github.com/TheRipper284/frontend/internal/infrastructure/telemetry"
)

// app is the explicit application object every command runs against.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    storage.Store
	metrics  *telemetry.Metrics
	tracer   *telemetry.TracerProvider
	api      *marketapi.API
	notifier notify.Notifier

	auth      *identityapp.Service
	cart      *cartapp.Store
	checkout  *checkout.Service
	orders    *tradeapp.OrderService
	dashboard *tradeapp.DashboardService
	catalog   *catalogapp.Service
	messages  *messagingapp.Service
	admin     *adminapp.Service

	out *renderer
}

func newApp(ctx context.Context, cfg *config.Config, g globalFlags, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	logCfg := logger.ProfileFor(cfg.App.Env).Resolve(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, g.verbose)
	log, err := logger.New(&logCfg)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	log = log.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))

	store, err := storage.Open(ctx, storage.Config{
		Driver:    cfg.Storage.Driver,
		Path:      cfg.Storage.Path,
		KeyPrefix: cfg.Storage.KeyPrefix,
		Redis: storage.RedisConfig{
			Host:     cfg.Storage.Redis.Host,
			Port:     cfg.Storage.Redis.Port,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		},
		FallbackToMemory: cfg.Storage.FallbackToMemory,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("opening local storage: %w", err)
	}

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  log,
		store:   store,
		metrics: telemetry.NewMetrics(),
		tracer:  tracer,
		out:     newRenderer(stdout, g.output),
	}

	var confirmer notify.Confirmer = notify.NewConsoleConfirmer(stdin, stderr, cfg.UI.Locale)
	if g.yes {
		confirmer = notify.AutoConfirm(true)
	}
	a.notifier = notify.NewConsoleNotifier(stderr, cfg.UI.Locale)
	if cfg.IsProduction() {
		a.notifier = notify.NewLogNotifier(log, cfg.UI.Locale)
	}
	nav := navigation.NewHintNavigator(stderr)

	sessions := identityapp.NewSessionStore(store)
	opts := []apiclient.Option{
		apiclient.WithLogger(log),
		apiclient.WithObserver(a.metrics),
		// a.auth is assigned below, before any request can be sent.
		apiclient.WithUnauthorizedHandler(func(ctx context.Context) { a.auth.HandleUnauthorized(ctx) }),
	}
	if tracer.IsEnabled() {
		opts = append(opts, apiclient.WithTracerProvider(tracer.Provider()))
	}
	client, err := apiclient.New(apiclient.Config{
		BaseURL:    cfg.API.URL,
		Timeout:    cfg.API.Timeout,
		UserAgent:  cfg.API.UserAgent,
		RateLimit:  cfg.API.RateLimit,
		RateBurst:  cfg.API.RateBurst,
		MaxRetries: cfg.API.MaxRetries,
	}, sessions, opts...)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("creating API client: %w", err)
	}
	a.api = marketapi.New(client)

	a.auth = identityapp.NewService(identityapp.Deps{
		API:       a.api.Auth,
		Sessions:  sessions,
		Notifier:  a.notifier,
		Navigator: nav,
		Logger:    log,
	})
	a.cart = cartapp.NewStore(ctx, cartapp.Deps{
		Storage:  store,
		Tokens:   sessions,
		Mirror:   a.api.Cart,
		Notifier: a.notifier,
		Logger:   log,
		Metrics:  a.metrics,
	})
	a.checkout = checkout.NewService(a.api.Orders, a.cart, a.auth, a.notifier, nav, log)
	a.orders = tradeapp.NewOrderService(a.api.Orders, a.auth, confirmer, a.notifier, log)
	a.dashboard = tradeapp.NewDashboardService(a.api.Orders, a.api.Catalog, a.auth, a.notifier, log)
	a.catalog = catalogapp.NewService(catalogapp.Deps{
		Products:  a.api.Catalog,
		Reviews:   a.api.Reviews,
		Session:   a.auth,
		Confirmer: confirmer,
		Notifier:  a.notifier,
		Logger:    log,
	})
	a.messages = messagingapp.NewService(a.api.Messages, a.auth, a.notifier, nav, log)
	a.admin = adminapp.NewService(a.api.Admin, a.auth, confirmer, a.notifier, log)

	log.Debug("Storefront ready",
		zap.String("api_url", client.BaseURL()),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("telemetry", tracer.IsEnabled()),
	)
	return a, nil
}

// close flushes metrics and traces and releases local storage.
func (a *app) close() {
	if path := a.cfg.Telemetry.MetricsFile; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			a.logger.Warn("Failed to write metrics file", zap.String("path", path), zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("Failed to shut down tracer", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Failed to close local storage", zap.Error(err))
	}
	_ = logger.Sync(a.logger)
}
