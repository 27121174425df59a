package catalog

// Package catalog provides catalog.yaml parsing functionality.

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Catalog struct {
	Store    StoreConfig     `yaml:"store"`
	Products []ProductConfig `yaml:"products"`
}

type StoreConfig struct {
	Name         string         `yaml:"name"`
	Currency     string         `yaml:"currency"`
	SupportEmail string         `yaml:"support_email"`
	Shipping     ShippingConfig `yaml:"shipping"`
}

type ShippingConfig struct {
	FlatRateCents int    `yaml:"flat_rate_cents"`
	Carrier       string `yaml:"carrier"`
}

type ProductConfig struct {
	ID             string `yaml:"id"`
	SKU            string `yaml:"sku"`
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	UnitPriceCents int    `yaml:"unit_price_cents"`
	Active         bool   `yaml:"active"`
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(content []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(content, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &catalog, nil
}

func (p *Parser) ParseFile(path string) (*Catalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return p.Parse(content)
}

// FindProduct returns the product with the given ID, or nil.
func (c *Catalog) FindProduct(id string) *ProductConfig {
	if c == nil {
		return nil
	}
	for i := range c.Products {
		if c.Products[i].ID == id {
			return &c.Products[i]
		}
	}
	return nil
}
