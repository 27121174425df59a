package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toolhausapp/toolhaus/internal/cache"
	"github.com/toolhausapp/toolhaus/internal/config"
	"github.com/toolhausapp/toolhaus/internal/db"
	"github.com/toolhausapp/toolhaus/internal/logging"
	"github.com/toolhausapp/toolhaus/internal/services"
)

const maxWebhookBodyBytes = 1 << 20 // 1 MB

// Handlers provides HTTP request handlers for the Toolhaus storefront API.
type Handlers struct {
	config             *config.Config
	db                 *pgxpool.Pool
	orderStore         *db.OrderStore
	cacheProvider      cache.Provider
	stripeRouter       *StripeEventRouter
	checkoutService    *services.CheckoutService
	fulfillmentService *services.FulfillmentService
	trackingService    *services.TrackingService
	logger             *slog.Logger
}

type Dependencies struct {
	Config             *config.Config
	DB                 *pgxpool.Pool
	OrderStore         *db.OrderStore
	CacheProvider      cache.Provider
	StripeRouter       *StripeEventRouter
	CheckoutService    *services.CheckoutService
	FulfillmentService *services.FulfillmentService
	TrackingService    *services.TrackingService
	Logger             *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("handlers dependencies: db is required")
	}
	if deps.OrderStore == nil {
		return nil, fmt.Errorf("handlers dependencies: orderStore is required")
	}
	if deps.CacheProvider == nil {
		return nil, fmt.Errorf("handlers dependencies: cacheProvider is required")
	}
	if deps.StripeRouter == nil {
		return nil, fmt.Errorf("handlers dependencies: stripeRouter is required")
	}
	if deps.CheckoutService == nil {
		return nil, fmt.Errorf("handlers dependencies: checkoutService is required")
	}
	if deps.FulfillmentService == nil {
		return nil, fmt.Errorf("handlers dependencies: fulfillmentService is required")
	}
	if deps.TrackingService == nil {
		return nil, fmt.Errorf("handlers dependencies: trackingService is required")
	}

	return &Handlers{
		config:             deps.Config,
		db:                 deps.DB,
		orderStore:         deps.OrderStore,
		cacheProvider:      deps.CacheProvider,
		stripeRouter:       deps.StripeRouter,
		checkoutService:    deps.CheckoutService,
		fulfillmentService: deps.FulfillmentService,
		trackingService:    deps.TrackingService,
		logger:             logger.With("component", "handlers"),
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	// Test database connection
	if err := h.db.Ping(ctx); err != nil {
		logger.Error("database health check failed", "error", err)
		http.Error(w, "Database unhealthy", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		logger.Error("failed to encode health response", "error", err)
	}
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
