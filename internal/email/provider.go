// Package email provides email provider interface.
package email

import (
	"context"
	"fmt"
)

type Provider interface {
	SendEmail(ctx context.Context, email *Email) error
	ValidateAPIKey(ctx context.Context) error
}

type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Config struct {
	Provider string
	APIKey   string
	From     string
	Domain   string // For Mailgun
	ReplyTo  string // Store support address; replies to order emails land there
}

func NewProvider(config Config) (Provider, error) {
	switch config.Provider {
	case "postmark":
		return NewPostmarkProvider(config.APIKey, config.From, config.ReplyTo), nil
	case "mailgun":
		return NewMailgunProvider(config.APIKey, config.Domain, config.From, config.ReplyTo), nil
	case "resend":
		return NewResendProvider(config.APIKey, config.From, config.ReplyTo), nil
	default:
		return nil, fmt.Errorf("EMAIL_PROVIDER must be either 'postmark', 'mailgun', or 'resend'")
	}
}
