package catalog

// Package catalog provides price calculation functionality.

import (
	"fmt"
)

type Pricer struct{}

func NewPricer() *Pricer {
	return &Pricer{}
}

// ComputeLineCents prices one cart line against the catalog.
func (p *Pricer) ComputeLineCents(catalog *Catalog, productID string, quantity int) (int, error) {
	product := catalog.FindProduct(productID)
	if product == nil {
		return 0, fmt.Errorf("product with ID %s not found", productID)
	}

	if !product.Active {
		return 0, fmt.Errorf("product %s is not available", product.SKU)
	}

	if quantity <= 0 {
		quantity = 1
	}

	return product.UnitPriceCents * quantity, nil
}

func (p *Pricer) GetShippingCents(catalog *Catalog) int {
	return catalog.Store.Shipping.FlatRateCents
}
