package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/toolhausapp/toolhaus/internal/orders"
	"github.com/toolhausapp/toolhaus/internal/services"
)

type orderItemResponse struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

type orderResponse struct {
	ID               string              `json:"id"`
	Status           string              `json:"status"`
	LastUpdated      *time.Time          `json:"lastUpdated,omitempty"`
	LastUpdatedLabel string              `json:"lastUpdatedLabel"`
	Items            []orderItemResponse `json:"items"`
	Subtotal         string              `json:"subtotal"`
	Tax              string              `json:"tax"`
	Shipping         string              `json:"shipping"`
	Total            string              `json:"total"`
	TrackingNumber   string              `json:"trackingNumber,omitempty"`
	Carrier          string              `json:"carrier,omitempty"`
	TrackingURL      string              `json:"trackingUrl,omitempty"`
}

// GetOrder returns the customer-facing view of an order with its resolved
// lifecycle status and price summary.
func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.orderStore.GetByID(ctx, orderID)
	if err != nil {
		logger.Info("order not found", "order_id", orderID, "error", err)
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	resolved := orders.Resolve(order)
	summary := orders.Summarize(order)

	items := make([]orderItemResponse, 0, len(summary.Items))
	for _, item := range summary.Items {
		items = append(items, orderItemResponse{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	resp := orderResponse{
		ID:               order.ID.String(),
		Status:           resolved.Status,
		LastUpdatedLabel: orders.LastUpdatedLabel(resolved.LastUpdated),
		Items:            items,
		Subtotal:         orders.FormatMoney(summary.Subtotal),
		Tax:              orders.FormatMoney(summary.Tax),
		Shipping:         orders.FormatMoney(summary.Shipping),
		Total:            orders.FormatMoney(summary.Total),
		TrackingNumber:   order.TrackingNumber,
		Carrier:          order.Carrier,
		TrackingURL:      services.BuildTrackingURL(order.Carrier, order.TrackingNumber),
	}
	if !resolved.LastUpdated.IsZero() {
		ts := resolved.LastUpdated
		resp.LastUpdated = &ts
	}

	h.writeJSON(w, http.StatusOK, resp)
}
