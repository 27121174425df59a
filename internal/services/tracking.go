package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"

	"github.com/toolhausapp/toolhaus/internal/logging"
	"github.com/toolhausapp/toolhaus/internal/models"
	"github.com/toolhausapp/toolhaus/internal/observability"
	"github.com/toolhausapp/toolhaus/internal/orders"
)

var ErrUnknownTrackingNumber = fmt.Errorf("no order matches tracking number")

// TrackingUpdate is one carrier scan delivered by the tracking webhook.
type TrackingUpdate struct {
	TrackingNumber string
	Status         string
	Timestamp      *float64
	Location       string
}

// TrackingOrderStore is the subset of order storage used for tracking updates.
type TrackingOrderStore interface {
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Order, error)
	AppendEvent(ctx context.Context, orderID uuid.UUID, event models.OrderEvent) error
}

// TrackingService applies carrier scan events to orders and notifies the
// customer when a shipment is delivered.
type TrackingService struct {
	orderStore  TrackingOrderStore
	emailSender OrderEmailSender
	logger      *slog.Logger
}

// NewTrackingService creates a new tracking service.
func NewTrackingService(orderStore TrackingOrderStore, emailSender OrderEmailSender, logger *slog.Logger) *TrackingService {
	if emailSender == nil {
		emailSender = noopOrderEmailSender{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TrackingService{
		orderStore:  orderStore,
		emailSender: emailSender,
		logger:      logger,
	}
}

// HandleUpdate appends a carrier scan to the matching order's event history.
// Unknown tracking numbers return ErrUnknownTrackingNumber so the carrier
// retries delivery once the shipment record lands.
func (s *TrackingService) HandleUpdate(ctx context.Context, update TrackingUpdate) error {
	span := sentry.StartSpan(
		ctx,
		"service.tracking.handle_update",
		sentry.WithOpName("service.tracking"),
		sentry.WithDescription("HandleUpdate"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	logger := logging.FromContext(ctx, s.logger)
	meter := observability.MeterFromContext(ctx)
	meter.Count("tracking.update.received", 1)

	trackingNumber := strings.TrimSpace(update.TrackingNumber)
	status := strings.TrimSpace(update.Status)
	if trackingNumber == "" || status == "" {
		meter.Count("tracking.update.failed", 1, sentry.WithAttributes(
			attribute.String("reason", "invalid_input"),
		))
		return fmt.Errorf("tracking number and status are required")
	}

	order, err := s.orderStore.GetByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		meter.Count("tracking.update.dropped", 1, sentry.WithAttributes(
			attribute.String("reason", "no_matching_order"),
		))
		logger.Warn("tracking update for unknown shipment",
			"tracking_number", trackingNumber,
			"status", status)
		return fmt.Errorf("%w: %s", ErrUnknownTrackingNumber, trackingNumber)
	}

	wasDelivered := orders.Resolve(order).Status == orders.StatusDelivered

	event := models.OrderEvent{
		Status:    status,
		Timestamp: update.Timestamp,
		Note:      strings.TrimSpace(update.Location),
	}
	if err := s.orderStore.AppendEvent(ctx, order.ID, event); err != nil {
		meter.Count("tracking.update.failed", 1, sentry.WithAttributes(
			attribute.String("reason", "append_event_failed"),
		))
		return fmt.Errorf("failed to append tracking event: %w", err)
	}

	if orders.NormalizeStatus(status) == orders.StatusDelivered && !wasDelivered {
		if err := s.emailSender.SendOrderDelivered(ctx, order); err != nil {
			meter.Count("tracking.update.side_effect_failed", 1, sentry.WithAttributes(
				attribute.String("reason", "delivered_email_failed"),
			))
			logger.Error("failed to send delivered email", "error", err, "order_id", order.ID)
		}
	}

	meter.Count("tracking.update.applied", 1)
	logger.Info("tracking event applied",
		"order_id", order.ID,
		"tracking_number", trackingNumber,
		"status", status)

	return nil
}
