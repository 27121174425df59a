package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/toolhausapp/toolhaus/internal/email"
	"github.com/toolhausapp/toolhaus/internal/models"
	"github.com/toolhausapp/toolhaus/internal/orders"
)

// OrderInfoOverrides provides optional overrides when building order email data.
type OrderInfoOverrides struct {
	CustomerName    string
	CustomerEmail   string
	ShippingAddress string
	TrackingNumber  string
	TrackingURL     string
	TrackingCarrier string
	OrderDate       time.Time
}

// BuildOrderInfo builds a consistent OrderInfo payload for email templates.
// Amounts come from the same summary the API serves, formatted once here.
func BuildOrderInfo(storeName, storeURL string, order *models.Order, overrides OrderInfoOverrides) *email.OrderInfo {
	customerName := strings.TrimSpace(overrides.CustomerName)
	if customerName == "" && order != nil {
		customerName = strings.TrimSpace(order.CustomerName)
	}

	customerEmail := strings.TrimSpace(overrides.CustomerEmail)
	if customerEmail == "" && order != nil {
		customerEmail = strings.TrimSpace(order.CustomerEmail)
	}

	shippingAddress := strings.TrimSpace(overrides.ShippingAddress)
	if shippingAddress == "" && order != nil && order.ShippingAddress != nil {
		shippingAddress = formatMap(order.ShippingAddress)
	}

	orderDate := overrides.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	summary := orders.Summarize(order)

	items := make([]email.OrderItem, 0, len(summary.Items))
	for _, item := range summary.Items {
		items = append(items, email.OrderItem{
			Name:       item.Name,
			Quantity:   int(item.Quantity),
			UnitPrice:  orders.FormatMoney(item.Price),
			TotalPrice: orders.FormatMoney(item.Quantity * item.Price),
		})
	}

	orderNumber := ""
	if order != nil {
		orderNumber = "#" + shortOrderNumber(order)
	}

	return &email.OrderInfo{
		OrderNumber:         orderNumber,
		CustomerName:        customerName,
		CustomerEmail:       customerEmail,
		StoreName:           storeName,
		StoreURL:            storeURL,
		ShippingAddress:     shippingAddress,
		ShippingAddressHTML: strings.ReplaceAll(shippingAddress, "\n", "<br>"),
		TrackingNumber:      overrides.TrackingNumber,
		TrackingURL:         overrides.TrackingURL,
		TrackingCarrier:     overrides.TrackingCarrier,
		OrderDate:           orderDate.Format("January 2, 2006"),
		Items:               items,
		Subtotal:            orders.FormatMoney(summary.Subtotal),
		Shipping:            orders.FormatMoney(summary.Shipping),
		Tax:                 orders.FormatMoney(summary.Tax),
		Total:               orders.FormatMoney(summary.Total),
	}
}

// shortOrderNumber keeps emails readable: the first UUID block is enough for
// support lookups.
func shortOrderNumber(order *models.Order) string {
	id := order.ID.String()
	if i := strings.IndexByte(id, '-'); i > 0 {
		return strings.ToUpper(id[:i])
	}
	return strings.ToUpper(id)
}

func formatMap(m map[string]any) string {
	if m == nil {
		return ""
	}
	if address := formatAddressMap(m); address != "" {
		return address
	}
	parts := make([]string, 0, len(m))
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, m[k]))
	}
	return strings.Join(parts, ", ")
}

func formatAddressMap(m map[string]any) string {
	var address struct {
		Line1      string `json:"line1"`
		Line2      string `json:"line2"`
		City       string `json:"city"`
		State      string `json:"state"`
		PostalCode string `json:"postal_code"`
		Country    string `json:"country"`
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	if err := json.Unmarshal(payload, &address); err != nil {
		return ""
	}

	if strings.TrimSpace(address.Line1) == "" {
		return ""
	}

	lines := []string{strings.TrimSpace(address.Line1)}
	if strings.TrimSpace(address.Line2) != "" {
		lines = append(lines, strings.TrimSpace(address.Line2))
	}

	cityStatePostal := strings.TrimSpace(strings.TrimSpace(address.City) + ", " + strings.TrimSpace(address.State) + " " + strings.TrimSpace(address.PostalCode))
	cityStatePostal = strings.Trim(cityStatePostal, ", ")
	if cityStatePostal != "" {
		lines = append(lines, cityStatePostal)
	}

	if strings.TrimSpace(address.Country) != "" {
		lines = append(lines, strings.TrimSpace(address.Country))
	}

	return strings.Join(lines, "\n")
}
