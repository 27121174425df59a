package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/toolhausapp/toolhaus/internal/db"
	"github.com/toolhausapp/toolhaus/internal/logging"
	"github.com/toolhausapp/toolhaus/internal/models"
	"github.com/toolhausapp/toolhaus/internal/observability"
)

// ErrNoMatchingOrder means a confirmation referenced no known order. The
// webhook handler surfaces this as a failure so the payment processor's own
// redelivery covers orders that were not yet readable.
var ErrNoMatchingOrder = errors.New("no order matches payment confirmation")

// ReconcilerOrderStore is the slice of the order store the reconciler needs.
type ReconcilerOrderStore interface {
	GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, paymentIntentID string, amountReceived float64, customerEmail, customerName string, shippingAddress map[string]any) error
}

// PaymentReconciler applies asynchronous payment confirmations to orders.
// Confirmations are delivered at-least-once and possibly out of order; the
// conditional MarkPaid write makes the whole path safe to re-run.
type PaymentReconciler struct {
	orderStore  ReconcilerOrderStore
	emailSender OrderEmailSender
	logger      *slog.Logger
}

func NewPaymentReconciler(orderStore ReconcilerOrderStore, emailSender OrderEmailSender, logger *slog.Logger) *PaymentReconciler {
	if emailSender == nil {
		emailSender = noopOrderEmailSender{}
	}

	return &PaymentReconciler{
		orderStore:  orderStore,
		emailSender: emailSender,
		logger:      logger,
	}
}

func (r *PaymentReconciler) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, r.logger)
}

// Reconcile locates the order a confirmation belongs to and settles it
// exactly once. Matching precedence: order ID, then session ID, then payment
// intent ID — first match wins, later strategies never run. A confirmation
// for an already-settled order is a no-op success and sends no second email.
func (r *PaymentReconciler) Reconcile(ctx context.Context, confirmation models.PaymentConfirmation) error {
	span := sentry.StartSpan(
		ctx,
		"service.reconciler.reconcile",
		sentry.WithOpName("service.reconciler"),
		sentry.WithDescription("Reconcile"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	logger := r.loggerFromContext(ctx)
	meter := observability.MeterFromContext(ctx)
	meter.Count("payment.confirmation.received", 1)

	order, matchedBy, err := r.locateOrder(ctx, confirmation)
	if err != nil {
		meter.Count("payment.confirmation.failed", 1, sentry.WithAttributes(
			attribute.String("reason", "order_lookup_failed"),
		))
		return fmt.Errorf("failed to locate order: %w", err)
	}
	if order == nil {
		meter.Count("payment.confirmation.dropped", 1, sentry.WithAttributes(
			attribute.String("reason", "no_match"),
		))
		logger.Warn("dropping payment confirmation with no matching order",
			"event_id", confirmation.EventID,
			"order_id", confirmation.OrderID,
			"session_id", confirmation.SessionID,
			"payment_intent_id", confirmation.PaymentIntentID,
		)
		return ErrNoMatchingOrder
	}
	meter.SetAttributes(attribute.String("payment.matched_by", matchedBy))

	amountReceived := float64(confirmation.AmountReceivedMinorUnits) / 100

	markErr := r.orderStore.MarkPaid(ctx, order.ID,
		confirmation.PaymentIntentID,
		amountReceived,
		confirmation.CustomerEmail,
		confirmation.CustomerName,
		confirmation.ShippingAddress,
	)
	if markErr != nil {
		if errors.Is(markErr, db.ErrAlreadyPaid) {
			meter.Count("payment.confirmation.duplicate", 1)
			logger.Info("ignoring duplicate payment confirmation",
				"order_id", order.ID, "event_id", confirmation.EventID)
			return nil
		}
		meter.Count("payment.confirmation.failed", 1, sentry.WithAttributes(
			attribute.String("reason", "mark_paid_failed"),
		))
		return fmt.Errorf("failed to mark order as paid: %w", markErr)
	}
	meter.Count("payment.confirmation.applied", 1)
	span.Status = sentry.SpanStatusOK

	logger.Info("order marked paid",
		"order_id", order.ID,
		"matched_by", matchedBy,
		"amount_received", amountReceived,
	)

	r.sendConfirmationEmail(ctx, order, confirmation)
	return nil
}

// locateOrder tries each correlation key the confirmation carries, in
// precedence order, stopping at the first hit. A miss on one key falls
// through to the next; only real store errors abort.
func (r *PaymentReconciler) locateOrder(ctx context.Context, confirmation models.PaymentConfirmation) (*models.Order, string, error) {
	if confirmation.OrderID != "" {
		orderID, err := uuid.Parse(confirmation.OrderID)
		if err != nil {
			r.loggerFromContext(ctx).Warn("confirmation carries malformed order ID", "order_id", confirmation.OrderID)
		} else {
			order, err := r.orderStore.GetByID(ctx, orderID)
			if err == nil {
				return order, "order_id", nil
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, "", err
			}
		}
	}

	if confirmation.SessionID != "" {
		order, err := r.orderStore.GetBySessionID(ctx, confirmation.SessionID)
		if err == nil {
			return order, "session_id", nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, "", err
		}
	}

	if confirmation.PaymentIntentID != "" {
		order, err := r.orderStore.GetByPaymentIntentID(ctx, confirmation.PaymentIntentID)
		if err == nil {
			return order, "payment_intent_id", nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, "", err
		}
	}

	return nil, "", nil
}

// sendConfirmationEmail runs only after a first-time transition into Paid.
// Failures are logged and never unwind the status update.
func (r *PaymentReconciler) sendConfirmationEmail(ctx context.Context, order *models.Order, confirmation models.PaymentConfirmation) {
	logger := r.loggerFromContext(ctx)

	contactEmail := confirmation.CustomerEmail
	if contactEmail == "" {
		contactEmail = order.CustomerEmail
	}
	if contactEmail == "" {
		logger.Info("skipping order confirmation email, no contact address", "order_id", order.ID)
		return
	}

	shippingAddress := confirmation.ShippingAddress
	if shippingAddress == nil {
		shippingAddress = order.ShippingAddress
	}

	err := r.emailSender.SendOrderConfirmation(ctx, order, OrderConfirmationEmailInput{
		CustomerName:    confirmation.CustomerName,
		CustomerEmail:   contactEmail,
		ShippingAddress: formatMap(shippingAddress),
	})
	if err != nil {
		observability.MeterFromContext(ctx).Count("payment.confirmation.email_failed", 1)
		logger.Error("failed to send order confirmation email", "error", err, "order_id", order.ID)
	}
}
