package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/toolhausapp/toolhaus/internal/models"
)

type fakeTrackingStore struct {
	byTrackingNumber map[string]*models.Order
	appended         []models.OrderEvent
	appendErr        error
}

func (s *fakeTrackingStore) GetByTrackingNumber(_ context.Context, trackingNumber string) (*models.Order, error) {
	if order, ok := s.byTrackingNumber[trackingNumber]; ok {
		return order, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeTrackingStore) AppendEvent(_ context.Context, _ uuid.UUID, event models.OrderEvent) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, event)
	return nil
}

func TestTrackingHandleUpdate_AppendsEvent(t *testing.T) {
	t.Parallel()

	order := &models.Order{ID: uuid.New(), TrackingNumber: "1Z999"}
	store := &fakeTrackingStore{byTrackingNumber: map[string]*models.Order{"1Z999": order}}
	sender := &recordingEmailSender{}
	service := NewTrackingService(store, sender, nil)

	ts := 1700000000000.0
	err := service.HandleUpdate(context.Background(), TrackingUpdate{
		TrackingNumber: "1Z999",
		Status:         "in_transit",
		Timestamp:      &ts,
		Location:       "Louisville, KY",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.appended) != 1 {
		t.Fatalf("appended events = %d, want 1", len(store.appended))
	}
	event := store.appended[0]
	if event.Status != "in_transit" || event.Note != "Louisville, KY" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if sender.delivered != 0 {
		t.Fatalf("delivered emails = %d, want 0", sender.delivered)
	}
}

func TestTrackingHandleUpdate_DeliveredSendsEmailOnce(t *testing.T) {
	t.Parallel()

	ts := 1700000000000.0
	order := &models.Order{
		ID:             uuid.New(),
		TrackingNumber: "1Z999",
		CustomerEmail:  "customer@example.com",
	}
	store := &fakeTrackingStore{byTrackingNumber: map[string]*models.Order{"1Z999": order}}
	sender := &recordingEmailSender{}
	service := NewTrackingService(store, sender, nil)

	err := service.HandleUpdate(context.Background(), TrackingUpdate{
		TrackingNumber: "1Z999",
		Status:         "delivered",
		Timestamp:      &ts,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sender.delivered != 1 {
		t.Fatalf("delivered emails = %d, want 1", sender.delivered)
	}

	// Redelivery of the delivered scan after the order already resolves to
	// delivered sends no second email.
	order.Events = []models.OrderEvent{{Status: "delivered", Timestamp: &ts}}
	err = service.HandleUpdate(context.Background(), TrackingUpdate{
		TrackingNumber: "1Z999",
		Status:         "delivered",
		Timestamp:      &ts,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sender.delivered != 1 {
		t.Fatalf("delivered emails = %d, want still 1", sender.delivered)
	}
}

func TestTrackingHandleUpdate_UnknownTrackingNumber(t *testing.T) {
	t.Parallel()

	store := &fakeTrackingStore{byTrackingNumber: map[string]*models.Order{}}
	service := NewTrackingService(store, &recordingEmailSender{}, nil)

	err := service.HandleUpdate(context.Background(), TrackingUpdate{
		TrackingNumber: "missing",
		Status:         "in_transit",
	})
	if !errors.Is(err, ErrUnknownTrackingNumber) {
		t.Fatalf("error = %v, want ErrUnknownTrackingNumber", err)
	}
	if len(store.appended) != 0 {
		t.Fatalf("appended events = %d, want 0", len(store.appended))
	}
}

func TestTrackingHandleUpdate_RequiresStatus(t *testing.T) {
	t.Parallel()

	store := &fakeTrackingStore{byTrackingNumber: map[string]*models.Order{}}
	service := NewTrackingService(store, nil, nil)

	if err := service.HandleUpdate(context.Background(), TrackingUpdate{TrackingNumber: "1Z999"}); err == nil {
		t.Fatal("expected error for missing status")
	}
}
