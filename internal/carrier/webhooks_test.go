package carrier

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http/httptest"
	"testing"
)

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestValidateWebhookSignature(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"trackingNumber":"1Z999","status":"delivered"}`)
	secret := "test-secret"

	if err := ValidateWebhookSignature(payload, sign(payload, secret), secret); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ValidateWebhookSignature(payload, sign(payload, "wrong-secret"), secret); err == nil {
		t.Fatal("expected error for wrong secret")
	}

	if err := ValidateWebhookSignature(payload, "bad-format", secret); err == nil {
		t.Fatal("expected error for malformed signature")
	}
}

func TestReadWebhookPayload(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"trackingNumber":"1Z999","status":"delivered"}`)
	secret := "test-secret"

	req := httptest.NewRequest("POST", "/webhooks/tracking", bytes.NewReader(payload))
	req.Header.Set("X-Signature-256", sign(payload, secret))

	got, err := ReadWebhookPayload(req, secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload = %s", got)
	}
}

func TestReadWebhookPayload_MissingSignature(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("POST", "/webhooks/tracking", bytes.NewReader(nil))
	if _, err := ReadWebhookPayload(req, "test-secret"); err == nil {
		t.Fatal("expected error for missing signature header")
	}
}
