package config

import (
	"log/slog"
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		DatabaseURL:           "postgres://localhost:5432/toolhaus",
		StripeSecretKey:       "sk_test_123",
		StripeWebhookSecret:   "whsec_123",
		TrackingWebhookSecret: "trk_123",
		AdminTokenSecret:      strings.Repeat("s", 32),
		EmailProvider:         "resend",
		CatalogPath:           "catalog.yaml",
		CacheProvider:         "memory",
		RedisConnectionString: "redis://localhost:6379/0",
		LogLevel:              slog.LevelInfo,
		LogFormat:             "text",
		Port:                  "8080",
	}
}

func TestValidateAdminTokenSecretLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{
			name:    "valid 32-byte secret",
			secret:  strings.Repeat("s", 32),
			wantErr: false,
		},
		{
			name:    "invalid short secret",
			secret:  "short",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			cfg.AdminTokenSecret = tt.secret

			err := cfg.validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateEmailSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		provider      string
		apiKey        string
		from          string
		mailgunDomain string
		wantErr       bool
	}{
		{
			name:     "email disabled",
			provider: "resend",
		},
		{
			name:     "resend configured",
			provider: "resend",
			apiKey:   "re_123",
			from:     "orders@toolhaus.example",
		},
		{
			name:     "api key without from",
			provider: "resend",
			apiKey:   "re_123",
			wantErr:  true,
		},
		{
			name:     "from without api key",
			provider: "resend",
			from:     "orders@toolhaus.example",
			wantErr:  true,
		},
		{
			name:     "mailgun without domain",
			provider: "mailgun",
			apiKey:   "key-123",
			from:     "orders@toolhaus.example",
			wantErr:  true,
		},
		{
			name:          "mailgun with domain",
			provider:      "mailgun",
			apiKey:        "key-123",
			from:          "orders@toolhaus.example",
			mailgunDomain: "mg.toolhaus.example",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			cfg.EmailProvider = tt.provider
			cfg.EmailAPIKey = tt.apiKey
			cfg.EmailFrom = tt.from
			cfg.MailgunDomain = tt.mailgunDomain

			err := cfg.validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{name: "empty allowed", baseURL: ""},
		{name: "https allowed", baseURL: "https://toolhaus.example"},
		{name: "http localhost allowed", baseURL: "http://localhost:8080"},
		{name: "http loopback allowed", baseURL: "http://127.0.0.1:8080"},
		{name: "http non-local rejected", baseURL: "http://toolhaus.example", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			cfg.BaseURL = tt.baseURL

			err := cfg.validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestEmailEnabled(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if cfg.EmailEnabled() {
		t.Fatal("email should be disabled without credentials")
	}

	cfg.EmailAPIKey = "re_123"
	cfg.EmailFrom = "orders@toolhaus.example"
	if !cfg.EmailEnabled() {
		t.Fatal("email should be enabled with key and from address")
	}
}
