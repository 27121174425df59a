package services

import "testing"

func TestNormalizeCarrierName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		carrier string
		want    string
	}{
		{name: "usps lowercase", carrier: "usps", want: "USPS"},
		{name: "usps long form", carrier: "United States Postal Service", want: "USPS"},
		{name: "fedex mixed case", carrier: "FedEx", want: "FedEx"},
		{name: "ups", carrier: "ups", want: "UPS"},
		{name: "dhl", carrier: "DHL Express", want: "DHL"},
		{name: "custom carrier kept", carrier: "OnTrac", want: "OnTrac"},
		{name: "whitespace trimmed", carrier: "  usps  ", want: "USPS"},
		{name: "empty", carrier: "", want: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := NormalizeCarrierName(tc.carrier)
			if got != tc.want {
				t.Fatalf("NormalizeCarrierName(%q) = %q, want %q", tc.carrier, got, tc.want)
			}
		})
	}
}

func TestBuildTrackingURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		carrier        string
		trackingNumber string
		want           string
	}{
		{
			name:           "usps",
			carrier:        "USPS",
			trackingNumber: "9400100000000000000000",
			want:           "https://tools.usps.com/go/TrackConfirmAction?tLabels=9400100000000000000000",
		},
		{
			name:           "fedex",
			carrier:        "fedex",
			trackingNumber: "123456789012",
			want:           "https://www.fedex.com/fedextrack/?trknbr=123456789012",
		},
		{
			name:           "ups",
			carrier:        "UPS",
			trackingNumber: "1Z999AA10123456784",
			want:           "https://www.ups.com/track?tracknum=1Z999AA10123456784",
		},
		{
			name:           "unknown carrier",
			carrier:        "OnTrac",
			trackingNumber: "C12345678901234",
			want:           "",
		},
		{
			name:           "empty tracking number",
			carrier:        "usps",
			trackingNumber: "  ",
			want:           "",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := BuildTrackingURL(tc.carrier, tc.trackingNumber)
			if got != tc.want {
				t.Fatalf("BuildTrackingURL(%q, %q) = %q, want %q", tc.carrier, tc.trackingNumber, got, tc.want)
			}
		})
	}
}
