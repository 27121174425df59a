package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toolhausapp/toolhaus/internal/models"
)

// ErrAlreadyPaid is returned by MarkPaid when the order was already settled.
// Webhook redelivery makes this a routine condition, not a failure.
var ErrAlreadyPaid = errors.New("order already marked paid")

type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

const orderColumns = `
	id, status, payment_status, events, items, products,
	subtotal, tax, shipping, total,
	session_id, payment_intent_id, amount_received,
	tracking_number, carrier, customer_email, customer_name, shipping_address,
	created_at, updated_at, paid_at
`

func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}

	eventsJSON, err := marshalOrNil(order.Events)
	if err != nil {
		return err
	}
	itemsJSON, err := marshalOrNil(order.Items)
	if err != nil {
		return err
	}
	productsJSON, err := marshalOrNil(order.Products)
	if err != nil {
		return err
	}
	addressJSON, err := marshalOrNil(order.ShippingAddress)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO orders (
			status, payment_status, events, items, products,
			subtotal, tax, shipping, total,
			session_id, payment_intent_id,
			tracking_number, carrier, customer_email, customer_name, shipping_address
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at
	`
	row := s.pool.QueryRow(ctx, query,
		order.Status,
		nullableText(order.PaymentStatus),
		eventsJSON,
		itemsJSON,
		productsJSON,
		order.Subtotal,
		order.Tax,
		order.Shipping,
		order.Total,
		nullableText(order.SessionID),
		nullableText(order.PaymentIntentID),
		nullableText(order.TrackingNumber),
		nullableText(order.Carrier),
		nullableText(order.CustomerEmail),
		nullableText(order.CustomerName),
		addressJSON,
	)

	var createdAt pgtype.Timestamptz
	if err := row.Scan(&order.ID, &createdAt); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	order.CreatedAt = createdAt.Time
	return nil
}

func (s *OrderStore) GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
}

func (s *OrderStore) GetBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	return s.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE session_id = $1`, sessionID)
}

func (s *OrderStore) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	return s.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE payment_intent_id = $1`, paymentIntentID)
}

func (s *OrderStore) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Order, error) {
	return s.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE tracking_number = $1`, trackingNumber)
}

func (s *OrderStore) List(ctx context.Context, limit int) ([]*models.Order, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// MarkPaid settles an order exactly once. The status guard makes the write
// conditional: a redelivered confirmation finds zero affected rows and gets
// ErrAlreadyPaid, so callers can skip duplicate notifications. The payment
// intent ID is only recorded when not already known.
func (s *OrderStore) MarkPaid(ctx context.Context, orderID uuid.UUID, paymentIntentID string, amountReceived float64, customerEmail, customerName string, shippingAddress map[string]any) error {
	addressJSON, err := marshalOrNil(shippingAddress)
	if err != nil {
		return err
	}

	query := `
		UPDATE orders
		SET status = $2,
		    payment_status = $2,
		    payment_intent_id = COALESCE(NULLIF(payment_intent_id, ''), $3),
		    amount_received = $4,
		    customer_email = COALESCE(NULLIF($5, ''), customer_email),
		    customer_name = COALESCE(NULLIF($6, ''), customer_name),
		    shipping_address = COALESCE($7, shipping_address),
		    paid_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1 AND status IS DISTINCT FROM $2
	`
	cmdTag, err := s.pool.Exec(ctx, query, orderID, models.StatusPaid, nullableText(paymentIntentID), amountReceived, customerEmail, customerName, addressJSON)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrAlreadyPaid
	}
	return nil
}

// AppendEvent adds one checkpoint to the order's event log.
func (s *OrderStore) AppendEvent(ctx context.Context, orderID uuid.UUID, event models.OrderEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return err
	}

	query := `
		UPDATE orders
		SET events = COALESCE(events, '[]'::jsonb) || $2::jsonb,
		    updated_at = NOW()
		WHERE id = $1
	`
	cmdTag, err := s.pool.Exec(ctx, query, orderID, fmt.Sprintf("[%s]", eventJSON))
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("order not found: %s", orderID)
	}
	return nil
}

func (s *OrderStore) UpdateSession(ctx context.Context, orderID uuid.UUID, sessionID string) error {
	query := `UPDATE orders SET session_id = $2, updated_at = NOW() WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, orderID, sessionID)
	return err
}

func (s *OrderStore) SetShipment(ctx context.Context, orderID uuid.UUID, trackingNumber, carrier string) error {
	query := `
		UPDATE orders
		SET tracking_number = $2, carrier = $3, updated_at = NOW()
		WHERE id = $1
	`
	cmdTag, err := s.pool.Exec(ctx, query, orderID, trackingNumber, carrier)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("order not found: %s", orderID)
	}
	return nil
}

func (s *OrderStore) getOne(ctx context.Context, query string, arg any) (*models.Order, error) {
	return scanOrder(s.pool.QueryRow(ctx, query, arg))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		order          models.Order
		status         pgtype.Text
		paymentStatus  pgtype.Text
		eventsJSON     []byte
		itemsJSON      []byte
		productsJSON   []byte
		subtotal       pgtype.Float8
		tax            pgtype.Float8
		shipping       pgtype.Float8
		total          pgtype.Float8
		sessionID      pgtype.Text
		intentID       pgtype.Text
		amountReceived pgtype.Float8
		trackingNumber pgtype.Text
		carrier        pgtype.Text
		customerEmail  pgtype.Text
		customerName   pgtype.Text
		addressJSON    []byte
		createdAt      pgtype.Timestamptz
		updatedAt      pgtype.Timestamptz
		paidAt         pgtype.Timestamptz
	)

	if err := row.Scan(
		&order.ID, &status, &paymentStatus, &eventsJSON, &itemsJSON, &productsJSON,
		&subtotal, &tax, &shipping, &total,
		&sessionID, &intentID, &amountReceived,
		&trackingNumber, &carrier, &customerEmail, &customerName, &addressJSON,
		&createdAt, &updatedAt, &paidAt,
	); err != nil {
		return nil, err
	}

	order.Status = status.String
	order.PaymentStatus = paymentStatus.String
	order.SessionID = sessionID.String
	order.PaymentIntentID = intentID.String
	order.TrackingNumber = trackingNumber.String
	order.Carrier = carrier.String
	order.CustomerEmail = customerEmail.String
	order.CustomerName = customerName.String
	order.CreatedAt = createdAt.Time

	if subtotal.Valid {
		order.Subtotal = &subtotal.Float64
	}
	if tax.Valid {
		order.Tax = &tax.Float64
	}
	if shipping.Valid {
		order.Shipping = &shipping.Float64
	}
	if total.Valid {
		order.Total = &total.Float64
	}
	if amountReceived.Valid {
		order.AmountReceived = &amountReceived.Float64
	}
	if updatedAt.Valid {
		order.UpdatedAt = &updatedAt.Time
	}
	if paidAt.Valid {
		order.PaidAt = &paidAt.Time
	}

	if eventsJSON != nil {
		if err := json.Unmarshal(eventsJSON, &order.Events); err != nil {
			return nil, fmt.Errorf("failed to decode order events: %w", err)
		}
	}
	if itemsJSON != nil {
		if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
			return nil, fmt.Errorf("failed to decode order items: %w", err)
		}
	}
	if productsJSON != nil {
		if err := json.Unmarshal(productsJSON, &order.Products); err != nil {
			return nil, fmt.Errorf("failed to decode order products: %w", err)
		}
	}
	if addressJSON != nil {
		if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
			return nil, fmt.Errorf("failed to decode shipping address: %w", err)
		}
	}

	return &order, nil
}

func marshalOrNil(v any) ([]byte, error) {
	switch val := v.(type) {
	case []models.OrderEvent:
		if val == nil {
			return nil, nil
		}
	case []models.LineItem:
		if val == nil {
			return nil, nil
		}
	case []models.ProductRef:
		if val == nil {
			return nil, nil
		}
	case map[string]any:
		if val == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}

func nullableText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
