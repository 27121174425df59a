package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"

	"github.com/toolhausapp/toolhaus/internal/logging"
	"github.com/toolhausapp/toolhaus/internal/models"
	"github.com/toolhausapp/toolhaus/internal/observability"
)

var (
	ErrInvalidShipmentInput = fmt.Errorf("invalid shipment input")
	ErrOrderNotFound        = fmt.Errorf("order not found")
)

// ShipOrderInput describes an order being handed to a carrier.
type ShipOrderInput struct {
	OrderID        uuid.UUID
	TrackingNumber string
	Carrier        string
}

// FulfillmentOrderStore is the subset of order storage used by fulfillment.
type FulfillmentOrderStore interface {
	GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, limit int) ([]*models.Order, error)
	SetShipment(ctx context.Context, orderID uuid.UUID, trackingNumber, carrier string) error
	AppendEvent(ctx context.Context, orderID uuid.UUID, event models.OrderEvent) error
}

// FulfillmentService records shipments against paid orders and notifies
// the customer.
type FulfillmentService struct {
	orderStore  FulfillmentOrderStore
	emailSender OrderEmailSender
	logger      *slog.Logger
}

// NewFulfillmentService creates a new fulfillment service.
func NewFulfillmentService(orderStore FulfillmentOrderStore, emailSender OrderEmailSender, logger *slog.Logger) *FulfillmentService {
	if emailSender == nil {
		emailSender = noopOrderEmailSender{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FulfillmentService{
		orderStore:  orderStore,
		emailSender: emailSender,
		logger:      logger,
	}
}

// ListOrders returns recent orders for the admin view.
func (s *FulfillmentService) ListOrders(ctx context.Context, limit int) ([]*models.Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.orderStore.List(ctx, limit)
}

// ShipOrder records tracking details on an order, appends the label_created
// lifecycle event, and sends the shipping notification.
func (s *FulfillmentService) ShipOrder(ctx context.Context, input ShipOrderInput) error {
	span := sentry.StartSpan(
		ctx,
		"service.fulfillment.ship_order",
		sentry.WithOpName("service.fulfillment"),
		sentry.WithDescription("ShipOrder"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	logger := logging.FromContext(ctx, s.logger)
	meter := observability.MeterFromContext(ctx)
	meter.Count("fulfillment.shipment.received", 1)
	recordFailed := func(reason string) {
		meter.Count("fulfillment.shipment.failed", 1, sentry.WithAttributes(
			attribute.String("reason", reason),
		))
	}

	if input.OrderID == uuid.Nil {
		recordFailed("invalid_input")
		return fmt.Errorf("%w: order ID is required", ErrInvalidShipmentInput)
	}

	trackingNumber := strings.TrimSpace(input.TrackingNumber)
	carrier := NormalizeCarrierName(input.Carrier)
	if trackingNumber == "" || carrier == "" {
		recordFailed("missing_tracking_details")
		return fmt.Errorf("%w: tracking number and carrier are required", ErrInvalidShipmentInput)
	}

	order, err := s.orderStore.GetByID(ctx, input.OrderID)
	if err != nil {
		recordFailed("order_lookup_failed")
		return fmt.Errorf("%w: %w", ErrOrderNotFound, err)
	}

	if err := s.orderStore.SetShipment(ctx, input.OrderID, trackingNumber, carrier); err != nil {
		recordFailed("set_shipment_failed")
		return fmt.Errorf("failed to record shipment: %w", err)
	}

	now := float64(time.Now().UnixMilli())
	event := models.OrderEvent{
		Status:    "label_created",
		Timestamp: &now,
		Note:      fmt.Sprintf("%s %s", carrier, trackingNumber),
	}
	if err := s.orderStore.AppendEvent(ctx, input.OrderID, event); err != nil {
		meter.Count("fulfillment.shipment.side_effect_failed", 1, sentry.WithAttributes(
			attribute.String("reason", "append_event_failed"),
		))
		logger.Error("failed to append shipment event", "error", err, "order_id", input.OrderID)
	}

	trackingURL := BuildTrackingURL(carrier, trackingNumber)
	if err := s.emailSender.SendOrderShipped(ctx, order, OrderShipmentEmailInput{
		TrackingNumber:  trackingNumber,
		TrackingURL:     trackingURL,
		TrackingCarrier: carrier,
	}); err != nil {
		meter.Count("fulfillment.shipment.side_effect_failed", 1, sentry.WithAttributes(
			attribute.String("reason", "shipping_email_failed"),
		))
		logger.Error("failed to send shipping email", "error", err, "order_id", input.OrderID)
	}

	meter.Count("fulfillment.shipment.processed", 1)
	logger.Info("order shipped",
		"order_id", input.OrderID,
		"carrier", carrier,
		"tracking_number", trackingNumber)

	return nil
}
