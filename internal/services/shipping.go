package services

import (
	"net/url"
	"strings"
)

const (
	CarrierUSPS  = "usps"
	CarrierFedEx = "fedex"
	CarrierUPS   = "ups"
	CarrierDHL   = "dhl"
)

// NormalizeCarrier returns a canonical carrier key for known carriers,
// or "" when the carrier is not recognized.
func NormalizeCarrier(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	replacer := strings.NewReplacer(" ", "", "-", "", "_", "", ".", "")
	normalized = replacer.Replace(normalized)

	switch normalized {
	case "usps", "unitedstatespostalservice":
		return CarrierUSPS
	case "fedex", "federalexpress":
		return CarrierFedEx
	case "ups", "unitedparcelservice":
		return CarrierUPS
	case "dhl", "dhlexpress":
		return CarrierDHL
	default:
		return ""
	}
}

// CanonicalCarrierName maps a carrier key or free-form name to the display name.
func CanonicalCarrierName(carrier string) string {
	switch NormalizeCarrier(carrier) {
	case CarrierUSPS:
		return "USPS"
	case CarrierFedEx:
		return "FedEx"
	case CarrierUPS:
		return "UPS"
	case CarrierDHL:
		return "DHL"
	default:
		return ""
	}
}

// NormalizeCarrierName keeps custom carriers untouched and normalizes known ones.
func NormalizeCarrierName(carrier string) string {
	trimmed := strings.TrimSpace(carrier)
	if trimmed == "" {
		return ""
	}
	if canonical := CanonicalCarrierName(trimmed); canonical != "" {
		return canonical
	}
	return trimmed
}

// BuildTrackingURL returns a carrier-specific tracking URL. Unknown carriers return empty.
func BuildTrackingURL(carrier, trackingNumber string) string {
	number := strings.TrimSpace(trackingNumber)
	if number == "" {
		return ""
	}

	escaped := url.QueryEscape(number)
	switch NormalizeCarrier(carrier) {
	case CarrierUSPS:
		return "https://tools.usps.com/go/TrackConfirmAction?tLabels=" + escaped
	case CarrierFedEx:
		return "https://www.fedex.com/fedextrack/?trknbr=" + escaped
	case CarrierUPS:
		return "https://www.ups.com/track?tracknum=" + escaped
	case CarrierDHL:
		return "https://www.dhl.com/us-en/home/tracking.html?tracking-id=" + escaped
	default:
		return ""
	}
}
