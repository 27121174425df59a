package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/toolhausapp/toolhaus/internal/config"
)

const testAdminSecret = "0123456789abcdef0123456789abcdef"

func adminToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func validAdminClaims() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    "toolhaus",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func TestRequireAdmin_AllowsValidToken(t *testing.T) {
	t.Parallel()

	h := &Handlers{config: &config.Config{AdminTokenSecret: testAdminSecret}}

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, testAdminSecret, validAdminClaims()))
	rec := httptest.NewRecorder()

	h.RequireAdmin(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
}

func TestRequireAdmin_RejectsMissingHeader(t *testing.T) {
	t.Parallel()

	h := &Handlers{config: &config.Config{AdminTokenSecret: testAdminSecret}}

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	rec := httptest.NewRecorder()

	h.RequireAdmin(http.NotFoundHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireAdmin_RejectsWrongSecret(t *testing.T) {
	t.Parallel()

	h := &Handlers{config: &config.Config{AdminTokenSecret: testAdminSecret}}

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, strings.Repeat("x", 32), validAdminClaims()))
	rec := httptest.NewRecorder()

	h.RequireAdmin(http.NotFoundHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireAdmin_RejectsExpiredToken(t *testing.T) {
	t.Parallel()

	h := &Handlers{config: &config.Config{AdminTokenSecret: testAdminSecret}}

	claims := jwt.RegisteredClaims{
		Issuer:    "toolhaus",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, testAdminSecret, claims))
	rec := httptest.NewRecorder()

	h.RequireAdmin(http.NotFoundHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireAdmin_RejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	h := &Handlers{config: &config.Config{AdminTokenSecret: testAdminSecret}}

	claims := jwt.RegisteredClaims{
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, testAdminSecret, claims))
	rec := httptest.NewRecorder()

	h.RequireAdmin(http.NotFoundHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireAdmin_RejectsMalformedHeader(t *testing.T) {
	t.Parallel()

	h := &Handlers{config: &config.Config{AdminTokenSecret: testAdminSecret}}

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()

	h.RequireAdmin(http.NotFoundHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}
