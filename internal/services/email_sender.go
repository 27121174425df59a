package services

import (
	"context"
	"fmt"

	"github.com/toolhausapp/toolhaus/internal/email"
	"github.com/toolhausapp/toolhaus/internal/models"
)

type OrderEmailSender interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order, input OrderConfirmationEmailInput) error
	SendOrderShipped(ctx context.Context, order *models.Order, input OrderShipmentEmailInput) error
	SendOrderDelivered(ctx context.Context, order *models.Order) error
}

type OrderConfirmationEmailInput struct {
	CustomerName    string
	CustomerEmail   string
	ShippingAddress string
}

type OrderShipmentEmailInput struct {
	TrackingNumber  string
	TrackingURL     string
	TrackingCarrier string
}

// StoreOrderEmailSender sends lifecycle emails through the configured
// provider using the built-in templates.
type StoreOrderEmailSender struct {
	provider  email.Provider
	storeName string
	storeURL  string
}

func NewStoreOrderEmailSender(provider email.Provider, storeName, storeURL string) *StoreOrderEmailSender {
	return &StoreOrderEmailSender{
		provider:  provider,
		storeName: storeName,
		storeURL:  storeURL,
	}
}

func (s *StoreOrderEmailSender) SendOrderConfirmation(ctx context.Context, order *models.Order, input OrderConfirmationEmailInput) error {
	if s == nil || s.provider == nil {
		return fmt.Errorf("email provider is not configured")
	}

	orderInfo := BuildOrderInfo(s.storeName, s.storeURL, order, OrderInfoOverrides{
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		ShippingAddress: input.ShippingAddress,
	})

	return email.SendOrderConfirmation(ctx, s.provider, orderInfo)
}

func (s *StoreOrderEmailSender) SendOrderShipped(ctx context.Context, order *models.Order, input OrderShipmentEmailInput) error {
	if s == nil || s.provider == nil {
		return fmt.Errorf("email provider is not configured")
	}

	orderInfo := BuildOrderInfo(s.storeName, s.storeURL, order, OrderInfoOverrides{
		TrackingNumber:  input.TrackingNumber,
		TrackingURL:     input.TrackingURL,
		TrackingCarrier: input.TrackingCarrier,
	})

	return email.SendOrderShipped(ctx, s.provider, orderInfo)
}

func (s *StoreOrderEmailSender) SendOrderDelivered(ctx context.Context, order *models.Order) error {
	if s == nil || s.provider == nil {
		return fmt.Errorf("email provider is not configured")
	}

	orderInfo := BuildOrderInfo(s.storeName, s.storeURL, order, OrderInfoOverrides{})

	return email.SendOrderDelivered(ctx, s.provider, orderInfo)
}

type noopOrderEmailSender struct{}

func (noopOrderEmailSender) SendOrderConfirmation(context.Context, *models.Order, OrderConfirmationEmailInput) error {
	return nil
}

func (noopOrderEmailSender) SendOrderShipped(context.Context, *models.Order, OrderShipmentEmailInput) error {
	return nil
}

func (noopOrderEmailSender) SendOrderDelivered(context.Context, *models.Order) error {
	return nil
}
