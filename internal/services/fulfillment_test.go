package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/toolhausapp/toolhaus/internal/models"
)

type fakeFulfillmentStore struct {
	orders    map[uuid.UUID]*models.Order
	shipments map[uuid.UUID]string
	appended  []models.OrderEvent
}

func newFakeFulfillmentStore() *fakeFulfillmentStore {
	return &fakeFulfillmentStore{
		orders:    map[uuid.UUID]*models.Order{},
		shipments: map[uuid.UUID]string{},
	}
}

func (s *fakeFulfillmentStore) GetByID(_ context.Context, orderID uuid.UUID) (*models.Order, error) {
	if order, ok := s.orders[orderID]; ok {
		return order, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeFulfillmentStore) List(_ context.Context, limit int) ([]*models.Order, error) {
	list := make([]*models.Order, 0, len(s.orders))
	for _, order := range s.orders {
		list = append(list, order)
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *fakeFulfillmentStore) SetShipment(_ context.Context, orderID uuid.UUID, trackingNumber, carrier string) error {
	s.shipments[orderID] = carrier + " " + trackingNumber
	return nil
}

func (s *fakeFulfillmentStore) AppendEvent(_ context.Context, _ uuid.UUID, event models.OrderEvent) error {
	s.appended = append(s.appended, event)
	return nil
}

func TestShipOrder(t *testing.T) {
	t.Parallel()

	orderID := uuid.New()
	store := newFakeFulfillmentStore()
	store.orders[orderID] = &models.Order{ID: orderID, Status: models.StatusPaid, CustomerEmail: "customer@example.com"}
	sender := &recordingEmailSender{}
	service := NewFulfillmentService(store, sender, nil)

	err := service.ShipOrder(context.Background(), ShipOrderInput{
		OrderID:        orderID,
		TrackingNumber: " 1Z999AA10123456784 ",
		Carrier:        "ups",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.shipments[orderID] != "UPS 1Z999AA10123456784" {
		t.Fatalf("shipment = %q", store.shipments[orderID])
	}
	if len(store.appended) != 1 || store.appended[0].Status != "label_created" {
		t.Fatalf("appended events = %+v, want one label_created", store.appended)
	}
	if store.appended[0].Timestamp == nil {
		t.Fatal("label_created event should carry a timestamp")
	}
	if sender.shipped != 1 {
		t.Fatalf("shipped emails = %d, want 1", sender.shipped)
	}
}

func TestShipOrder_RejectsMissingTrackingDetails(t *testing.T) {
	t.Parallel()

	service := NewFulfillmentService(newFakeFulfillmentStore(), nil, nil)

	err := service.ShipOrder(context.Background(), ShipOrderInput{
		OrderID: uuid.New(),
		Carrier: "ups",
	})
	if !errors.Is(err, ErrInvalidShipmentInput) {
		t.Fatalf("error = %v, want ErrInvalidShipmentInput", err)
	}
}

func TestShipOrder_UnknownOrder(t *testing.T) {
	t.Parallel()

	service := NewFulfillmentService(newFakeFulfillmentStore(), nil, nil)

	err := service.ShipOrder(context.Background(), ShipOrderInput{
		OrderID:        uuid.New(),
		TrackingNumber: "1Z999",
		Carrier:        "ups",
	})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("error = %v, want ErrOrderNotFound", err)
	}
}

func TestListOrders_ClampsLimit(t *testing.T) {
	t.Parallel()

	store := newFakeFulfillmentStore()
	for range [3]struct{}{} {
		id := uuid.New()
		store.orders[id] = &models.Order{ID: id}
	}
	service := NewFulfillmentService(store, nil, nil)

	list, err := service.ListOrders(context.Background(), -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len(list) = %d, want 3", len(list))
	}
}
