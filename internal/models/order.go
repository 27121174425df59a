package models

import (
	"time"

	"github.com/google/uuid"
)

// Fallback status values written by the checkout and payment paths. The
// user-facing status is resolved from the event log first; these only matter
// while an order has no shipment events.
const (
	StatusProcessing = "processing"
	StatusPaid       = "Paid"
)

// Order is one customer purchase. Orders are append-only in practice: the
// checkout path creates them, the carrier feed appends events, and the
// payment reconciler flips them to Paid exactly once.
type Order struct {
	ID              uuid.UUID      `json:"id"`
	Status          string         `json:"status,omitempty"`
	PaymentStatus   string         `json:"payment_status,omitempty"`
	Events          []OrderEvent   `json:"events,omitempty"`
	Items           []LineItem     `json:"items,omitempty"`
	Products        []ProductRef   `json:"products,omitempty"`
	Subtotal        *float64       `json:"subtotal,omitempty"`
	Tax             *float64       `json:"tax,omitempty"`
	Shipping        *float64       `json:"shipping,omitempty"`
	Total           *float64       `json:"total,omitempty"`
	SessionID       string         `json:"session_id,omitempty"`
	PaymentIntentID string         `json:"payment_intent_id,omitempty"`
	AmountReceived  *float64       `json:"amount_received,omitempty"`
	TrackingNumber  string         `json:"tracking_number,omitempty"`
	Carrier         string         `json:"carrier,omitempty"`
	CustomerEmail   string         `json:"customer_email,omitempty"`
	CustomerName    string         `json:"customer_name,omitempty"`
	ShippingAddress map[string]any `json:"shipping_address,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       *time.Time     `json:"updated_at,omitempty"`
	PaidAt          *time.Time     `json:"paid_at,omitempty"`
}

// OrderEvent is one timestamped checkpoint in an order's shipment history.
// Events are meaningfully ordered by Timestamp only; insertion order is not
// trusted. Timestamp is a unix-milliseconds instant and may be absent in
// payloads from older carrier integrations.
type OrderEvent struct {
	Status    string   `json:"status"`
	Timestamp *float64 `json:"timestamp,omitempty"`
	Note      string   `json:"note,omitempty"`
}

// LineItem is one purchased item.
type LineItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

// ProductRef is the legacy line-item shape: a bare product reference used to
// synthesize LineItems when Items is absent.
type ProductRef struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
}

// PaymentConfirmation is the at-least-once signal from the payment processor
// that funds were captured. It may be delayed, redelivered, or arrive before
// the order it references is readable.
type PaymentConfirmation struct {
	EventID                  string
	OrderID                  string
	SessionID                string
	PaymentIntentID          string
	AmountReceivedMinorUnits int64
	CustomerEmail            string
	CustomerName             string
	ShippingAddress          map[string]any
}
