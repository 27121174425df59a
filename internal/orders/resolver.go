// Package orders holds the pure order-lifecycle logic: resolving a single
// user-facing status from an order's event history and computing a consistent
// financial summary. Nothing in this package touches storage or the network.
package orders

import (
	"strings"
	"time"

	"github.com/toolhausapp/toolhaus/internal/models"
)

// Normalized status vocabulary. Raw tokens outside this set pass through
// verbatim so new upstream carrier statuses surface instead of disappearing.
const (
	StatusProcessing     = "processing"
	StatusInTransit      = "in transit"
	StatusOutForDelivery = "out for delivery"
	StatusDelivered      = "delivered"
)

// ResolvedStatus is the single user-facing view of an order's lifecycle.
// LastUpdated is zero when no instant is known; render it as "—".
type ResolvedStatus struct {
	Status      string
	LastUpdated time.Time
}

// Resolve derives the normalized status and last-updated instant for an
// order. It is total: any malformed or partially-populated order resolves to
// something displayable, never an error.
//
// Raw status precedence: the latest event's status when events exist, then
// the order's status field, then its payment status, then "processing".
func Resolve(order *models.Order) ResolvedStatus {
	if order == nil {
		return ResolvedStatus{Status: StatusProcessing}
	}

	raw := ""
	resolved := ResolvedStatus{}

	if latest := LatestEvent(order.Events); latest != nil {
		raw = strings.TrimSpace(latest.Status)
		if latest.Timestamp != nil {
			resolved.LastUpdated = timeFromMillis(*latest.Timestamp)
		}
	} else if status := strings.TrimSpace(order.Status); status != "" {
		raw = status
	} else if paymentStatus := strings.TrimSpace(order.PaymentStatus); paymentStatus != "" {
		raw = paymentStatus
	}

	if raw == "" {
		raw = StatusProcessing
	}

	if resolved.LastUpdated.IsZero() && order.UpdatedAt != nil {
		resolved.LastUpdated = *order.UpdatedAt
	}

	resolved.Status = NormalizeStatus(raw)
	return resolved
}

// LatestEvent returns the event with the maximum timestamp, or nil for an
// empty sequence. Ties on timestamp resolve to the last such event in
// sequence order. Events without a timestamp sort before all timestamped
// events: they can only be latest when no event carries a timestamp, in
// which case the last of them wins.
func LatestEvent(events []models.OrderEvent) *models.OrderEvent {
	var latest *models.OrderEvent
	for i := range events {
		event := &events[i]
		if latest == nil {
			latest = event
			continue
		}
		switch {
		case event.Timestamp == nil && latest.Timestamp == nil:
			latest = event
		case event.Timestamp == nil:
			// never beats a timestamped event
		case latest.Timestamp == nil:
			latest = event
		case *event.Timestamp >= *latest.Timestamp:
			latest = event
		}
	}
	return latest
}

// NormalizeStatus maps raw carrier and payment tokens onto the display
// vocabulary. Matching is case-insensitive; unrecognized tokens pass through
// with their original casing.
func NormalizeStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "paid", "label_created":
		return StatusProcessing
	case "in_transit":
		return StatusInTransit
	case "out_for_delivery":
		return StatusOutForDelivery
	case "delivered":
		return StatusDelivered
	default:
		return raw
	}
}

// LastUpdatedLabel formats a resolved instant for display, with the "—"
// placeholder for orders that have never been touched.
func LastUpdatedLabel(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("January 2, 2006 3:04 PM")
}

func timeFromMillis(ms float64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}
