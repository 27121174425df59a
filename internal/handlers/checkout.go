package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/toolhausapp/toolhaus/internal/services"
)

const maxCheckoutBodyBytes = 64 << 10 // 64 KB

// Checkout prices a cart and returns the Stripe checkout URL.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)
	r.Body = http.MaxBytesReader(w, r.Body, maxCheckoutBodyBytes)

	var input services.CheckoutInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(input.Items) == 0 {
		h.writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	result, err := h.checkoutService.Checkout(ctx, input)
	if err != nil {
		logger.Error("checkout failed", "error", err)
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}
