package orders

import (
	"fmt"

	"github.com/toolhausapp/toolhaus/internal/models"
)

// Summary is the display-side financial view of an order. Amounts carry full
// float precision; rounding happens once, in FormatMoney, so re-summing the
// parts never drifts by a cent.
type Summary struct {
	Items    []models.LineItem
	Subtotal float64
	Tax      float64
	Shipping float64
	Total    float64
}

// Summarize computes a consistent {items, subtotal, tax, shipping, total}
// view. Stored monetary fields are authoritative whenever present, even when
// they disagree with the value derived from line items; derivation is only a
// fallback for older documents that never stored the rollups.
func Summarize(order *models.Order) Summary {
	if order == nil {
		return Summary{Items: []models.LineItem{}}
	}

	items := summaryItems(order)

	subtotal := derivedSubtotal(items)
	if order.Subtotal != nil {
		subtotal = models.Money(*order.Subtotal)
	}

	tax := 0.0
	if order.Tax != nil {
		tax = models.Money(*order.Tax)
	}
	shipping := 0.0
	if order.Shipping != nil {
		shipping = models.Money(*order.Shipping)
	}

	total := subtotal + tax + shipping
	if order.Total != nil {
		total = models.Money(*order.Total)
	}

	return Summary{
		Items:    items,
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    total,
	}
}

// summaryItems prefers the items sequence, synthesizing it from the legacy
// products sequence when absent.
func summaryItems(order *models.Order) []models.LineItem {
	if len(order.Items) > 0 {
		return order.Items
	}

	items := make([]models.LineItem, 0, len(order.Products))
	for _, product := range order.Products {
		name := product.Name
		if name == "" {
			name = fmt.Sprintf("Product %s", product.ProductID)
		}
		items = append(items, models.LineItem{
			Name:     name,
			Quantity: product.Quantity,
			Price:    product.Price,
		})
	}
	return items
}

func derivedSubtotal(items []models.LineItem) float64 {
	sum := 0.0
	for _, item := range items {
		sum += item.Quantity * item.Price
	}
	return models.Money(sum)
}

// FormatMoney rounds to cents at the presentation boundary only.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}
