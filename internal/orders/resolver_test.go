package orders

import (
	"testing"
	"time"

	"github.com/toolhausapp/toolhaus/internal/models"
)

func millis(v float64) *float64 {
	return &v
}

func TestNormalizeStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "paid maps to processing", raw: "paid", want: "processing"},
		{name: "label_created maps to processing", raw: "label_created", want: "processing"},
		{name: "in_transit", raw: "in_transit", want: "in transit"},
		{name: "out_for_delivery", raw: "out_for_delivery", want: "out for delivery"},
		{name: "delivered", raw: "delivered", want: "delivered"},
		{name: "case insensitive", raw: "In_Transit", want: "in transit"},
		{name: "uppercase delivered", raw: "DELIVERED", want: "delivered"},
		{name: "surrounding whitespace", raw: "  delivered  ", want: "delivered"},
		{name: "unknown token passes through with casing", raw: "Returned To Sender", want: "Returned To Sender"},
		{name: "unknown lowercase passes through", raw: "exception", want: "exception"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := NormalizeStatus(tc.raw)
			if got != tc.want {
				t.Fatalf("NormalizeStatus(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestLatestEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		events     []models.OrderEvent
		wantStatus string
		wantNil    bool
	}{
		{
			name:    "empty sequence",
			events:  nil,
			wantNil: true,
		},
		{
			name: "picks max timestamp regardless of order",
			events: []models.OrderEvent{
				{Status: "delivered", Timestamp: millis(3000)},
				{Status: "in_transit", Timestamp: millis(1000)},
			},
			wantStatus: "delivered",
		},
		{
			name: "ties resolve to last in sequence",
			events: []models.OrderEvent{
				{Status: "in_transit", Timestamp: millis(2000)},
				{Status: "out_for_delivery", Timestamp: millis(2000)},
			},
			wantStatus: "out_for_delivery",
		},
		{
			name: "untimestamped never beats timestamped",
			events: []models.OrderEvent{
				{Status: "in_transit", Timestamp: millis(1000)},
				{Status: "delivered"},
			},
			wantStatus: "in_transit",
		},
		{
			name: "untimestamped before timestamped still loses",
			events: []models.OrderEvent{
				{Status: "delivered"},
				{Status: "label_created", Timestamp: millis(500)},
			},
			wantStatus: "label_created",
		},
		{
			name: "all untimestamped picks last",
			events: []models.OrderEvent{
				{Status: "label_created"},
				{Status: "in_transit"},
			},
			wantStatus: "in_transit",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := LatestEvent(tc.events)
			if tc.wantNil {
				if got != nil {
					t.Fatalf("LatestEvent() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("LatestEvent() = nil, want event")
			}
			if got.Status != tc.wantStatus {
				t.Fatalf("LatestEvent().Status = %q, want %q", got.Status, tc.wantStatus)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	updatedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name            string
		order           *models.Order
		wantStatus      string
		wantLastUpdated time.Time
	}{
		{
			name:       "nil order resolves to processing",
			order:      nil,
			wantStatus: "processing",
		},
		{
			name:       "empty order resolves to processing",
			order:      &models.Order{},
			wantStatus: "processing",
		},
		{
			name: "latest event beats status field",
			order: &models.Order{
				Status: "paid",
				Events: []models.OrderEvent{
					{Status: "in_transit", Timestamp: millis(1700000000000)},
					{Status: "out_for_delivery", Timestamp: millis(1700000600000)},
				},
			},
			wantStatus:      "out for delivery",
			wantLastUpdated: time.UnixMilli(1700000600000).UTC(),
		},
		{
			name: "status field beats payment status",
			order: &models.Order{
				Status:        "in_transit",
				PaymentStatus: "Paid",
			},
			wantStatus: "in transit",
		},
		{
			name: "payment status used when status empty",
			order: &models.Order{
				PaymentStatus: "Paid",
			},
			wantStatus: "processing",
		},
		{
			name: "whitespace status falls through to payment status",
			order: &models.Order{
				Status:        "   ",
				PaymentStatus: "delivered",
			},
			wantStatus: "delivered",
		},
		{
			name: "untimestamped latest event leaves last updated from updated_at",
			order: &models.Order{
				Events:    []models.OrderEvent{{Status: "delivered"}},
				UpdatedAt: &updatedAt,
			},
			wantStatus:      "delivered",
			wantLastUpdated: updatedAt,
		},
		{
			name: "event with empty status resolves to processing",
			order: &models.Order{
				Status: "delivered",
				Events: []models.OrderEvent{{Status: "", Timestamp: millis(1000)}},
			},
			wantStatus:      "processing",
			wantLastUpdated: time.UnixMilli(1000).UTC(),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Resolve(tc.order)
			if got.Status != tc.wantStatus {
				t.Fatalf("Resolve().Status = %q, want %q", got.Status, tc.wantStatus)
			}
			if !got.LastUpdated.Equal(tc.wantLastUpdated) {
				t.Fatalf("Resolve().LastUpdated = %v, want %v", got.LastUpdated, tc.wantLastUpdated)
			}
		})
	}
}

func TestLastUpdatedLabel(t *testing.T) {
	t.Parallel()

	if got := LastUpdatedLabel(time.Time{}); got != "—" {
		t.Fatalf("LastUpdatedLabel(zero) = %q, want %q", got, "—")
	}

	instant := time.Date(2026, 3, 14, 15, 4, 0, 0, time.UTC)
	if got := LastUpdatedLabel(instant); got != "March 14, 2026 3:04 PM" {
		t.Fatalf("LastUpdatedLabel() = %q", got)
	}
}
