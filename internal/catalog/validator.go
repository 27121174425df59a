package catalog

// Package catalog provides configuration validation.

import (
	"fmt"
	"strings"
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Validate(catalog *Catalog) error {
	if catalog == nil {
		return fmt.Errorf("catalog is required")
	}

	if err := v.validateStore(&catalog.Store); err != nil {
		return fmt.Errorf("store validation failed: %w", err)
	}

	if len(catalog.Products) == 0 {
		return fmt.Errorf("at least one product is required")
	}

	ids := make(map[string]bool)
	skus := make(map[string]bool)
	for i, product := range catalog.Products {
		if err := v.validateProduct(&product); err != nil {
			return fmt.Errorf("product %d validation failed: %w", i, err)
		}

		if ids[product.ID] {
			return fmt.Errorf("duplicate product ID: %s", product.ID)
		}
		ids[product.ID] = true

		if skus[product.SKU] {
			return fmt.Errorf("duplicate SKU: %s", product.SKU)
		}
		skus[product.SKU] = true
	}

	return nil
}

func (v *Validator) validateStore(store *StoreConfig) error {
	if strings.TrimSpace(store.Name) == "" {
		return fmt.Errorf("store name is required")
	}

	if store.Currency != "usd" {
		return fmt.Errorf("only USD currency is supported")
	}

	if store.Shipping.FlatRateCents < 0 {
		return fmt.Errorf("shipping flat rate must be zero or positive")
	}

	if strings.TrimSpace(store.Shipping.Carrier) == "" {
		return fmt.Errorf("shipping carrier is required")
	}

	return nil
}

func (v *Validator) validateProduct(product *ProductConfig) error {
	if strings.TrimSpace(product.ID) == "" {
		return fmt.Errorf("product ID is required")
	}

	if strings.TrimSpace(product.SKU) == "" {
		return fmt.Errorf("product SKU is required")
	}

	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("product name is required")
	}

	if product.UnitPriceCents <= 0 {
		return fmt.Errorf("product unit price must be positive")
	}

	return nil
}
