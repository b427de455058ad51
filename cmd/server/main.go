package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/storefront/internal/application/backoffice"
	"github.com/erp/storefront/internal/application/session"
	"github.com/erp/storefront/internal/application/storefront"
	"github.com/erp/storefront/internal/domain/account"
	"github.com/erp/storefront/internal/domain/cart"
	"github.com/erp/storefront/internal/infrastructure/auth"
	"github.com/erp/storefront/internal/infrastructure/backend"
	"github.com/erp/storefront/internal/infrastructure/cache"
	"github.com/erp/storefront/internal/infrastructure/config"
	"github.com/erp/storefront/internal/infrastructure/logger"
	"github.com/erp/storefront/internal/infrastructure/metrics"
	"github.com/erp/storefront/internal/infrastructure/telemetry"
	"github.com/erp/storefront/internal/interfaces/http/handler"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
	"github.com/erp/storefront/internal/interfaces/http/proxy"
	"github.com/erp/storefront/internal/interfaces/http/router"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront gateway",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("version", version),
	)

	ctx := context.Background()

	logsProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = logger.Tee(log, logsProvider.Core(log.Level()))

	profiler, err := telemetry.NewProfiler(cfg.Profiling, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, cfg.Metrics, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	store, err := cache.NewStoreFactory(cfg,
		cache.WithLogger(log),
		cache.WithTracing(cfg.Telemetry.Enabled),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to open key-value store", zap.Error(err))
	}

	registry := metrics.New()

	client, err := backend.NewClient(backend.Config{
		BaseURL:    cfg.Backend.BaseURL,
		Timeout:    cfg.Backend.Timeout,
		RetryCount: cfg.Backend.RetryCount,
		RetryDelay: cfg.Backend.RetryDelay,
		UserAgent:  cfg.Backend.UserAgent,
	}, backend.WithMetrics(registry))
	if err != nil {
		log.Fatal("Invalid backend configuration", zap.Error(err))
	}

	// Sessions
	allowedRoles := account.NewRoleSet(cfg.Guard.AllowedRoles...)
	hasher := auth.NewTokenHasher(cfg.Guard.MeCacheKeySecret)
	sessions := session.NewService(
		client,
		auth.NewInspector(cfg.Guard.JWTSecret, cfg.Guard.RefreshSkew),
		hasher,
		auth.NewRevocationList(store, hasher),
		cache.NewReadThrough(store, "me", cfg.Cache.MeTTL, registry),
		session.Config{RevokeTTL: cfg.Session.MaxAge, AllowedRoles: allowedRoles},
		log,
	)

	// Storefront
	carts := storefront.NewCartService(store, client, storefront.CartConfig{
		Limits:   cart.Limits{MaxLineQuantity: cfg.Cart.MaxLineQuantity, MaxLines: cfg.Cart.MaxLines},
		TTL:      cfg.Cart.TTL,
		Currency: cfg.Cart.Currency,
	})
	catalog := storefront.NewCatalogService(client, cache.NewReadThrough(store, "catalog", cfg.Cache.CatalogTTL, registry))
	prefs := storefront.NewPreferencesService(store, storefront.PreferencesConfig{
		Locales:       cfg.Guard.Locales,
		DefaultLocale: cfg.Guard.DefaultLocale,
		Currency:      cfg.Cart.Currency,
		TTL:           cfg.Cart.TTL,
	})
	checkout := storefront.NewCheckoutService(client, carts)
	accounts := storefront.NewAccountService(client)

	// HTTP
	cookies := middleware.NewCookies(cfg.Session)
	locales := middleware.NewLocaleResolver(cfg.Guard.Locales, cfg.Guard.DefaultLocale)

	pages, err := handler.NewPagesHandler(locales, cfg.App.Name)
	if err != nil {
		log.Fatal("Failed to parse page templates", zap.Error(err))
	}

	guard := middleware.NewRoleGuard(sessions, cookies, locales, middleware.GuardConfig{
		AllowedRoles:  allowedRoles,
		LoginPath:     cfg.Guard.LoginPath,
		ForbiddenPath: cfg.Guard.ForbiddenPath,
		ErrorPage:     pages.ErrorPage,
	}, registry)

	target, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil {
		log.Fatal("Invalid backend URL", zap.Error(err))
	}
	apiProxy, err := proxy.New(proxy.Config{
		Target:                target,
		Exclude:               []string{"/api/v1/"},
		ResponseHeaderTimeout: cfg.Backend.Timeout,
	}, cookies, registry)
	if err != nil {
		log.Fatal("Failed to create backend proxy", zap.Error(err))
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	// Request ID must come first so every later middleware can log it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.SpanAttributes(), middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(meterProvider))
	engine.Use(middleware.Secure(middleware.DefaultSecurityConfig(cfg.App.IsProduction())))
	engine.Use(middleware.CORS(middleware.CORSConfigFrom(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, cfg.HTTP.RateLimitBurst)
		engine.Use(middleware.RateLimit(limiter))
	}
	engine.Use(locales.Middleware())

	gateway := &router.Gateway{
		Handlers: router.Handlers{
			Auth:        handler.NewAuthHandler(sessions, carts, cookies),
			Account:     handler.NewAccountHandler(sessions, accounts),
			Catalog:     handler.NewCatalogHandler(catalog),
			Cart:        handler.NewCartHandler(carts, cookies),
			Preferences: handler.NewPreferencesHandler(prefs, cookies),
			Checkout:    handler.NewCheckoutHandler(checkout, cookies),
			Backoffice:  handler.NewBackofficeHandler(backoffice.NewService(client)),
			System:      handler.NewSystemHandler(cfg.App.Name, version, store, client),
			Pages:       pages,
		},
		Locales:  locales,
		Customer: middleware.CustomerSession(sessions, cookies),
		Guard:    guard.Handler(),
		Proxy:    apiProxy,
	}
	if cfg.Metrics.PrometheusPath != "" {
		gateway.Metrics = registry.Handler()
		gateway.MetricsPath = cfg.Metrics.PrometheusPath
	}
	gateway.Mount(engine, router.NewRouter(engine, router.WithAPIVersion("v1")))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if limiter != nil {
		limiter.Close()
	}
	if err := store.Close(); err != nil {
		log.Error("Error closing key-value store", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	if err := logsProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
}
