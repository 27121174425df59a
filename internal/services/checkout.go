package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"github.com/toolhausapp/toolhaus/internal/catalog"
	"github.com/toolhausapp/toolhaus/internal/logging"
	"github.com/toolhausapp/toolhaus/internal/models"
	"github.com/toolhausapp/toolhaus/internal/observability"
	stripeclient "github.com/toolhausapp/toolhaus/internal/stripe"

	stripe "github.com/stripe/stripe-go/v84"
)

// CartItem is one requested cart line, referencing a catalog product.
type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// CheckoutInput is a checkout request for a cart of catalog products.
type CheckoutInput struct {
	Items         []CartItem `json:"items"`
	CustomerEmail string     `json:"customerEmail,omitempty"`
}

// CheckoutResult is returned after a checkout session is created.
type CheckoutResult struct {
	OrderID     uuid.UUID `json:"orderId"`
	CheckoutURL string    `json:"checkoutUrl"`
}

// CheckoutOrderStore is the subset of order storage used during checkout.
type CheckoutOrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	UpdateSession(ctx context.Context, orderID uuid.UUID, sessionID string) error
}

type checkoutSessionCreator interface {
	CreateCheckoutSession(ctx context.Context, params stripeclient.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type orderPricer interface {
	ComputeLineCents(cat *catalog.Catalog, productID string, quantity int) (int, error)
	GetShippingCents(cat *catalog.Catalog) int
}

// CheckoutService prices a cart against the catalog, records the pending
// order, and creates the Stripe checkout session for it.
type CheckoutService struct {
	orderStore CheckoutOrderStore
	stripe     checkoutSessionCreator
	catalog    *catalog.Catalog
	pricer     orderPricer
	baseURL    string
	logger     *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	orderStore CheckoutOrderStore,
	stripeClient checkoutSessionCreator,
	cat *catalog.Catalog,
	pricer orderPricer,
	baseURL string,
	logger *slog.Logger,
) *CheckoutService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutService{
		orderStore: orderStore,
		stripe:     stripeClient,
		catalog:    cat,
		pricer:     pricer,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		logger:     logger,
	}
}

// Checkout validates and prices the cart, persists the order in the
// processing state, and returns the checkout URL the customer is sent to.
func (s *CheckoutService) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	span := sentry.StartSpan(ctx, "service.checkout.checkout")
	defer span.Finish()
	ctx = span.Context()

	logger := logging.FromContext(ctx, s.logger)
	meter := observability.MeterFromContext(ctx)
	meter.Count("checkout.requested", 1)

	if len(input.Items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	var (
		subtotalCents int64
		items         []models.LineItem
		products      []models.ProductRef
		stripeLines   []stripeclient.CheckoutLineItem
	)
	for _, cartItem := range input.Items {
		if cartItem.Quantity <= 0 {
			return nil, fmt.Errorf("invalid quantity %d for product %q", cartItem.Quantity, cartItem.ProductID)
		}
		product := s.catalog.FindProduct(cartItem.ProductID)
		if product == nil || !product.Active {
			return nil, fmt.Errorf("product %q is not available", cartItem.ProductID)
		}
		lineCents, err := s.pricer.ComputeLineCents(s.catalog, cartItem.ProductID, int(cartItem.Quantity))
		if err != nil {
			return nil, fmt.Errorf("failed to price product %q: %w", cartItem.ProductID, err)
		}
		subtotalCents += int64(lineCents)

		unitPrice := float64(product.UnitPriceCents) / 100
		items = append(items, models.LineItem{
			Name:     product.Name,
			Quantity: float64(cartItem.Quantity),
			Price:    unitPrice,
		})
		products = append(products, models.ProductRef{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  float64(cartItem.Quantity),
			Price:     unitPrice,
		})
		stripeLines = append(stripeLines, stripeclient.CheckoutLineItem{
			Name:           product.Name,
			UnitPriceCents: int64(product.UnitPriceCents),
			Quantity:       cartItem.Quantity,
		})
	}

	shippingCents := int64(s.pricer.GetShippingCents(s.catalog))
	totalCents := subtotalCents + shippingCents

	subtotal := float64(subtotalCents) / 100
	shipping := float64(shippingCents) / 100
	total := float64(totalCents) / 100

	order := &models.Order{
		Status:        models.StatusProcessing,
		Items:         items,
		Products:      products,
		Subtotal:      &subtotal,
		Shipping:      &shipping,
		Total:         &total,
		CustomerEmail: input.CustomerEmail,
	}
	if err := s.orderStore.Create(ctx, order); err != nil {
		meter.Count("checkout.failed", 1)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	sess, err := s.stripe.CreateCheckoutSession(ctx, stripeclient.CheckoutSessionParams{
		OrderID:         order.ID,
		LineItems:       stripeLines,
		ShippingCents:   shippingCents,
		ShippingCarrier: CanonicalCarrierName(s.catalog.Store.Shipping.Carrier),
		CustomerEmail:   input.CustomerEmail,
		SuccessURL:      s.baseURL + "/checkout/success?order=" + order.ID.String(),
		CancelURL:       s.baseURL + "/checkout/cancelled",
	})
	if err != nil {
		meter.Count("checkout.failed", 1)
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	if err := s.orderStore.UpdateSession(ctx, order.ID, sess.ID); err != nil {
		// The session metadata still carries the order ID, so reconciliation
		// can fall back to it even if this write is lost.
		logger.Error("failed to record checkout session on order",
			slog.String("order_id", order.ID.String()),
			slog.String("session_id", sess.ID),
			slog.Any("error", err))
	}

	meter.Count("checkout.created", 1)
	logger.Info("checkout session created",
		slog.String("order_id", order.ID.String()),
		slog.String("session_id", sess.ID),
		slog.Int64("total_cents", totalCents))

	return &CheckoutResult{
		OrderID:     order.ID,
		CheckoutURL: sess.URL,
	}, nil
}
