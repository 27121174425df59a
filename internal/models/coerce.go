package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Upstream documents are loosely typed: numeric fields arrive as numbers,
// numeric strings, or garbage, and may be absent entirely. All of that
// coercion lives here so the defaulting policy stays in one place.

// Number extracts a finite float from a raw JSON value. The second return is
// false for absent, non-numeric, NaN, or infinite values.
func Number(raw json.RawMessage) (float64, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0, false
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}

	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// NumberOrZero is Number with the documented default for quantities and
// prices: anything non-numeric is 0.
func NumberOrZero(raw json.RawMessage) float64 {
	n, _ := Number(raw)
	return n
}

// Money clamps a monetary value to a non-negative finite number.
func Money(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func (e *OrderEvent) UnmarshalJSON(data []byte) error {
	var raw struct {
		Status    string          `json:"status"`
		Timestamp json.RawMessage `json:"timestamp"`
		Note      string          `json:"note"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.Status = raw.Status
	e.Note = raw.Note
	e.Timestamp = nil
	if ts, ok := Number(raw.Timestamp); ok {
		e.Timestamp = &ts
	}
	return nil
}

func (i *LineItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name     string          `json:"name"`
		Quantity json.RawMessage `json:"quantity"`
		Price    json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	i.Name = raw.Name
	i.Quantity = NumberOrZero(raw.Quantity)
	i.Price = NumberOrZero(raw.Price)
	return nil
}

func (p *ProductRef) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProductID json.RawMessage `json:"product_id"`
		Name      string          `json:"name"`
		Quantity  json.RawMessage `json:"quantity"`
		Price     json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.ProductID = stringValue(raw.ProductID)
	p.Name = raw.Name
	p.Quantity = NumberOrZero(raw.Quantity)
	p.Price = NumberOrZero(raw.Price)
	return nil
}

// stringValue renders a raw JSON scalar as its string form. Product IDs show
// up both as strings and as bare numbers.
func stringValue(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if n, ok := Number(raw); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}
