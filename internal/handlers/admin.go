package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/toolhausapp/toolhaus/internal/orders"
	"github.com/toolhausapp/toolhaus/internal/services"
)

type adminOrderResponse struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	PaymentStatus  string    `json:"paymentStatus,omitempty"`
	Total          string    `json:"total"`
	CustomerEmail  string    `json:"customerEmail,omitempty"`
	TrackingNumber string    `json:"trackingNumber,omitempty"`
	Carrier        string    `json:"carrier,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// AdminListOrders returns recent orders for fulfillment.
func (h *Handlers) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	list, err := h.fulfillmentService.ListOrders(ctx, limit)
	if err != nil {
		logger.Error("failed to list orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	resp := make([]adminOrderResponse, 0, len(list))
	for _, order := range list {
		resolved := orders.Resolve(order)
		summary := orders.Summarize(order)
		resp = append(resp, adminOrderResponse{
			ID:             order.ID.String(),
			Status:         resolved.Status,
			PaymentStatus:  order.PaymentStatus,
			Total:          orders.FormatMoney(summary.Total),
			CustomerEmail:  order.CustomerEmail,
			TrackingNumber: order.TrackingNumber,
			Carrier:        order.Carrier,
			CreatedAt:      order.CreatedAt,
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"orders": resp})
}

type shipOrderRequest struct {
	TrackingNumber string `json:"trackingNumber"`
	Carrier        string `json:"carrier"`
}

// AdminShipOrder records tracking details on an order and triggers the
// shipping notification.
func (h *Handlers) AdminShipOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)
	r.Body = http.MaxBytesReader(w, r.Body, maxCheckoutBodyBytes)

	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req shipOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	shipErr := h.fulfillmentService.ShipOrder(ctx, services.ShipOrderInput{
		OrderID:        orderID,
		TrackingNumber: req.TrackingNumber,
		Carrier:        req.Carrier,
	})
	if shipErr != nil {
		switch {
		case errors.Is(shipErr, services.ErrInvalidShipmentInput):
			h.writeError(w, http.StatusBadRequest, shipErr.Error())
		case errors.Is(shipErr, services.ErrOrderNotFound):
			h.writeError(w, http.StatusNotFound, "order not found")
		default:
			logger.Error("failed to ship order", "error", shipErr, "order_id", orderID)
			h.writeError(w, http.StatusInternalServerError, "failed to ship order")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "shipped"})
}
