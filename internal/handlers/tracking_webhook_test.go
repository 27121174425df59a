package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/toolhausapp/toolhaus/internal/cache"
	"github.com/toolhausapp/toolhaus/internal/config"
	"github.com/toolhausapp/toolhaus/internal/models"
	"github.com/toolhausapp/toolhaus/internal/services"
)

const testTrackingSecret = "tracking-secret"

type stubTrackingStore struct {
	order    *models.Order
	appended int
}

func (s *stubTrackingStore) GetByTrackingNumber(_ context.Context, trackingNumber string) (*models.Order, error) {
	if s.order != nil && s.order.TrackingNumber == trackingNumber {
		return s.order, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubTrackingStore) AppendEvent(_ context.Context, _ uuid.UUID, _ models.OrderEvent) error {
	s.appended++
	return nil
}

func signTracking(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(testTrackingSecret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func newTrackingHandlers(t *testing.T, store *stubTrackingStore) *Handlers {
	t.Helper()

	cacheProvider, err := cache.NewMemoryProvider()
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	return &Handlers{
		config:          &config.Config{TrackingWebhookSecret: testTrackingSecret},
		cacheProvider:   cacheProvider,
		trackingService: services.NewTrackingService(store, nil, nil),
	}
}

func TestTrackingWebhook_AppliesEvent(t *testing.T) {
	t.Parallel()

	store := &stubTrackingStore{order: &models.Order{ID: uuid.New(), TrackingNumber: "1Z999"}}
	h := newTrackingHandlers(t, store)

	payload := []byte(`{"deliveryId":"d1","trackingNumber":"1Z999","status":"in_transit","timestamp":1700000000000}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/tracking", bytes.NewReader(payload))
	req.Header.Set("X-Signature-256", signTracking(payload))
	rec := httptest.NewRecorder()

	h.TrackingWebhook(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if store.appended != 1 {
		t.Fatalf("appended events = %d, want 1", store.appended)
	}
}

func TestTrackingWebhook_DeduplicatesDeliveries(t *testing.T) {
	t.Parallel()

	store := &stubTrackingStore{order: &models.Order{ID: uuid.New(), TrackingNumber: "1Z999"}}
	h := newTrackingHandlers(t, store)

	payload := []byte(`{"deliveryId":"d1","trackingNumber":"1Z999","status":"in_transit"}`)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/tracking", bytes.NewReader(payload))
		req.Header.Set("X-Signature-256", signTracking(payload))
		rec := httptest.NewRecorder()
		h.TrackingWebhook(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("attempt %d status = %d, want %d", i, rec.Code, http.StatusOK)
		}
	}

	if store.appended != 1 {
		t.Fatalf("appended events = %d, want 1 after redelivery", store.appended)
	}
}

func TestTrackingWebhook_RejectsBadSignature(t *testing.T) {
	t.Parallel()

	store := &stubTrackingStore{}
	h := newTrackingHandlers(t, store)

	payload := []byte(`{"trackingNumber":"1Z999","status":"in_transit"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/tracking", bytes.NewReader(payload))
	req.Header.Set("X-Signature-256", "sha256=deadbeef")
	rec := httptest.NewRecorder()

	h.TrackingWebhook(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if store.appended != 0 {
		t.Fatalf("appended events = %d, want 0", store.appended)
	}
}

func TestTrackingWebhook_UnknownTrackingNumberReturns404(t *testing.T) {
	t.Parallel()

	store := &stubTrackingStore{}
	h := newTrackingHandlers(t, store)

	payload := []byte(`{"deliveryId":"d2","trackingNumber":"missing","status":"in_transit"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/tracking", bytes.NewReader(payload))
	req.Header.Set("X-Signature-256", signTracking(payload))
	rec := httptest.NewRecorder()

	h.TrackingWebhook(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	// The failed delivery must not be cached, so a retry can succeed later.
	store.order = &models.Order{ID: uuid.New(), TrackingNumber: "missing"}
	req = httptest.NewRequest(http.MethodPost, "/webhooks/tracking", bytes.NewReader(payload))
	req.Header.Set("X-Signature-256", signTracking(payload))
	rec = httptest.NewRecorder()

	h.TrackingWebhook(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("retry status = %d, want %d", rec.Code, http.StatusOK)
	}
}
