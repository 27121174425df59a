package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	stripeapi "github.com/stripe/stripe-go/v84"

	"github.com/toolhausapp/toolhaus/internal/logging"
	"github.com/toolhausapp/toolhaus/internal/models"
	"github.com/toolhausapp/toolhaus/internal/observability"
	"github.com/toolhausapp/toolhaus/internal/services"
)

type StripeEventRouter struct {
	reconciler *services.PaymentReconciler
	logger     *slog.Logger
}

func NewStripeEventRouter(reconciler *services.PaymentReconciler, logger *slog.Logger) *StripeEventRouter {
	return &StripeEventRouter{
		reconciler: reconciler,
		logger:     logger,
	}
}

func (r *StripeEventRouter) Handle(ctx context.Context, event *stripeapi.Event) error {
	span := sentry.StartSpan(
		ctx,
		"handler.stripe_router.handle",
		sentry.WithOpName("handler.stripe_router"),
		sentry.WithDescription("StripeEventRouter.Handle"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	meter := observability.MeterFromContext(ctx)
	meter.SetAttributes(attribute.String("webhook.provider", "stripe"))
	meter.Count("webhook.router.received", 1)
	recordFailed := func(reason string) {
		meter.Count("webhook.router.failed", 1, sentry.WithAttributes(attribute.String("reason", reason)))
	}

	if event == nil {
		recordFailed("missing_event")
		return fmt.Errorf("missing stripe event")
	}
	if event.Data == nil {
		recordFailed("missing_event_data")
		return fmt.Errorf("missing stripe event data")
	}
	meter.SetAttributes(attribute.String("webhook.event_type", string(event.Type)))

	logger := logging.FromContext(ctx, r.logger)
	payload := event.Data.Raw

	switch event.Type {
	case "checkout.session.completed":
		if err := r.handleCheckoutSessionCompleted(ctx, event.ID, payload); err != nil {
			recordFailed("checkout_session_completed_failed")
			return err
		}
		meter.Count("webhook.router.processed", 1)
		span.Status = sentry.SpanStatusOK
		return nil
	case "payment_intent.succeeded":
		if err := r.handlePaymentIntentSucceeded(ctx, event.ID, payload); err != nil {
			recordFailed("payment_intent_succeeded_failed")
			return err
		}
		meter.Count("webhook.router.processed", 1)
		span.Status = sentry.SpanStatusOK
		return nil
	default:
		logger.Info("unhandled Stripe event type", "type", event.Type)
		meter.Count("webhook.router.unhandled", 1)
		span.Status = sentry.SpanStatusOK
		return nil
	}
}

type checkoutSessionPayload struct {
	stripeapi.CheckoutSession
	ShippingDetails *stripeapi.ShippingDetails `json:"shipping_details"`
}

func (r *StripeEventRouter) handleCheckoutSessionCompleted(ctx context.Context, eventID string, payload []byte) error {
	var session checkoutSessionPayload
	if err := json.Unmarshal(payload, &session); err != nil {
		return fmt.Errorf("invalid event object: %w", err)
	}

	if session.ID == "" {
		return fmt.Errorf("missing session ID")
	}

	paymentIntentID := ""
	if session.PaymentIntent != nil {
		paymentIntentID = session.PaymentIntent.ID
	}

	customerEmail, customerName := extractCustomerDetails(&session)

	confirmation := models.PaymentConfirmation{
		EventID:                  eventID,
		OrderID:                  session.Metadata["order_id"],
		SessionID:                session.ID,
		PaymentIntentID:          paymentIntentID,
		AmountReceivedMinorUnits: session.AmountTotal,
		CustomerEmail:            customerEmail,
		CustomerName:             customerName,
		ShippingAddress:          buildShippingAddress(session.ShippingDetails, session.CustomerDetails),
	}

	return r.reconciler.Reconcile(ctx, confirmation)
}

func (r *StripeEventRouter) handlePaymentIntentSucceeded(ctx context.Context, eventID string, payload []byte) error {
	var intent stripeapi.PaymentIntent
	if err := json.Unmarshal(payload, &intent); err != nil {
		return fmt.Errorf("invalid event object: %w", err)
	}

	if intent.ID == "" {
		return fmt.Errorf("missing payment intent ID")
	}

	confirmation := models.PaymentConfirmation{
		EventID:                  eventID,
		OrderID:                  intent.Metadata["order_id"],
		PaymentIntentID:          intent.ID,
		AmountReceivedMinorUnits: intent.AmountReceived,
	}

	return r.reconciler.Reconcile(ctx, confirmation)
}

func extractCustomerDetails(session *checkoutSessionPayload) (string, string) {
	if session == nil {
		return "", ""
	}

	customerEmail := ""
	customerName := ""

	if session.CustomerDetails != nil {
		customerEmail = session.CustomerDetails.Email
		customerName = session.CustomerDetails.Name
		if customerName == "" {
			customerName = session.CustomerDetails.IndividualName
		}
	}

	if customerEmail == "" {
		customerEmail = session.CustomerEmail
	}

	if customerName == "" && session.ShippingDetails != nil {
		customerName = session.ShippingDetails.Name
	}

	return customerEmail, customerName
}

func buildShippingAddress(details *stripeapi.ShippingDetails, customerDetails *stripeapi.CheckoutSessionCustomerDetails) map[string]any {
	var address *stripeapi.Address
	if details != nil && details.Address != nil {
		address = details.Address
	} else if customerDetails != nil && customerDetails.Address != nil {
		address = customerDetails.Address
	}
	if address == nil {
		return nil
	}

	return map[string]any{
		"line1":       address.Line1,
		"line2":       address.Line2,
		"city":        address.City,
		"state":       address.State,
		"postal_code": address.PostalCode,
		"country":     address.Country,
	}
}
