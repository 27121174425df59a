package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toolhausapp/toolhaus/internal/cache"
	"github.com/toolhausapp/toolhaus/internal/catalog"
	"github.com/toolhausapp/toolhaus/internal/config"
	"github.com/toolhausapp/toolhaus/internal/db"
	"github.com/toolhausapp/toolhaus/internal/email"
	"github.com/toolhausapp/toolhaus/internal/handlers"
	"github.com/toolhausapp/toolhaus/internal/services"
	"github.com/toolhausapp/toolhaus/internal/stripe"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	DB            *pgxpool.Pool
	CacheProvider cache.Provider
	Handlers      *handlers.Handlers
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	database, err := db.Connect(startupCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	cacheProvider, err := cache.NewProvider(cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	parser := catalog.NewParser()
	cat, err := parser.ParseFile(cfg.CatalogPath)
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if err := catalog.NewValidator().Validate(cat); err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	var emailSender services.OrderEmailSender
	if cfg.EmailEnabled() {
		provider, err := email.NewProvider(email.Config{
			Provider: cfg.EmailProvider,
			APIKey:   cfg.EmailAPIKey,
			From:     cfg.EmailFrom,
			Domain:   cfg.MailgunDomain,
			ReplyTo:  cat.Store.SupportEmail,
		})
		if err != nil {
			closeCacheProvider(logger, cacheProvider)
			database.Close()
			return nil, fmt.Errorf("failed to initialize email provider: %w", err)
		}
		emailSender = services.NewStoreOrderEmailSender(provider, cat.Store.Name, cfg.BaseURL)
	}

	orderStore := db.NewOrderStore(database)
	stripeClient := stripe.NewClient(cfg.StripeSecretKey)

	checkoutService := services.NewCheckoutService(
		orderStore,
		stripeClient,
		cat,
		catalog.NewPricer(),
		cfg.BaseURL,
		logger.With("component", "checkout_service"),
	)
	reconciler := services.NewPaymentReconciler(orderStore, emailSender, logger.With("component", "payment_reconciler"))
	fulfillmentService := services.NewFulfillmentService(orderStore, emailSender, logger.With("component", "fulfillment_service"))
	trackingService := services.NewTrackingService(orderStore, emailSender, logger.With("component", "tracking_service"))
	stripeRouter := handlers.NewStripeEventRouter(reconciler, logger.With("component", "stripe_router"))

	h, err := handlers.New(handlers.Dependencies{
		Config:             cfg,
		DB:                 database,
		OrderStore:         orderStore,
		CacheProvider:      cacheProvider,
		StripeRouter:       stripeRouter,
		CheckoutService:    checkoutService,
		FulfillmentService: fulfillmentService,
		TrackingService:    trackingService,
		Logger:             logger,
	})
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		DB:            database,
		CacheProvider: cacheProvider,
		Handlers:      h,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	format := strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	case "text", "":
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level: cfg.LogLevel,
		}))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: cfg.LogLevel}))
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}
