package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/toolhausapp/toolhaus/internal/cache"
	"github.com/toolhausapp/toolhaus/internal/carrier"
	"github.com/toolhausapp/toolhaus/internal/services"
)

type trackingEventPayload struct {
	DeliveryID     string   `json:"deliveryId"`
	TrackingNumber string   `json:"trackingNumber"`
	Status         string   `json:"status"`
	Timestamp      *float64 `json:"timestamp"`
	Location       string   `json:"location"`
}

// TrackingWebhook receives carrier scan events and applies them to orders.
func (h *Handlers) TrackingWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)

	payload, err := carrier.ReadWebhookPayload(r, h.config.TrackingWebhookSecret)
	if err != nil {
		logger.Error("failed to read tracking webhook payload", "error", err)
		http.Error(w, "Invalid webhook", http.StatusBadRequest)
		return
	}

	var event trackingEventPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		logger.Error("invalid tracking webhook body", "error", err)
		http.Error(w, "Invalid webhook body", http.StatusBadRequest)
		return
	}

	cacheKey := ""
	if event.DeliveryID != "" {
		cacheKey = cache.WebhookKey("tracking", event.DeliveryID)
		if _, err := h.cacheProvider.Get(ctx, cacheKey); err == nil {
			logger.Info("webhook already processed", "delivery_id", event.DeliveryID)
			w.WriteHeader(http.StatusOK)
			return
		}
	}

	processErr := h.trackingService.HandleUpdate(ctx, services.TrackingUpdate{
		TrackingNumber: event.TrackingNumber,
		Status:         event.Status,
		Timestamp:      event.Timestamp,
		Location:       event.Location,
	})
	if processErr != nil {
		if errors.Is(processErr, services.ErrUnknownTrackingNumber) {
			logger.Warn("dropping tracking event for unknown shipment", "tracking_number", event.TrackingNumber)
			http.Error(w, "Unknown tracking number", http.StatusNotFound)
			return
		}
		logger.Error("failed to process tracking webhook", "error", processErr)
		http.Error(w, "Processing failed", http.StatusInternalServerError)
		return
	}

	if cacheKey != "" {
		if err := h.cacheProvider.Set(ctx, cacheKey, "processed", 24*time.Hour); err != nil {
			logger.Error("failed to mark webhook as processed in cache", "error", err)
		}
	}

	w.WriteHeader(http.StatusOK)

}
