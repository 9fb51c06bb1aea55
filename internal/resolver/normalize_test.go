package resolver_test

import (
	"testing"

	"github.com/JaimeStill/intake/internal/resolver"
)

func TestNameKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Clipboard Health", "clipboard health"},
		{"  CLIPBOARD   HEALTH, Inc. ", "clipboard health inc"},
		{"Acme Corporation", "acme corp"},
		{"ACME Corp.", "acme corp"},
		{"Widgets Incorporated", "widgets inc"},
		{"Northwind Traders Limited", "northwind traders ltd"},
		{"Contoso Company", "contoso co"},
		{"Fabrikam, L.L.C.", "fabrikam llc"},
		{"Café Münchën GmbH", "cafe munchen gmbh"},
		{"Smith and Sons", "smith & sons"},
		{"Smith & Sons", "smith & sons"},
		{"O’Brien's Plumbing", "obriens plumbing"},
		{"ｆｕｌｌｗｉｄｔｈ", "fullwidth"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := resolver.NameKey(tt.in); got != tt.want {
				t.Errorf("NameKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAddressKey(t *testing.T) {
	a := resolver.AddressKey("500 Main Street, Suite 200")
	b := resolver.AddressKey("500 main st ste 200")
	if a != b {
		t.Errorf("address keys differ: %q vs %q", a, b)
	}
}

func TestTaxIDKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12-3456789", "123456789"},
		{"123456789", "123456789"},
		{" 12 345 6789 ", "123456789"},
		{"GB 123.456.789", "gb123456789"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := resolver.TaxIDKey(tt.in); got != tt.want {
				t.Errorf("TaxIDKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abc", "abc", 1},
		{"clipboard helth", "clipboard health", 0.9375},
		{"clipbord helth", "clipboard health", 0.875},
		{"abc", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			if got := resolver.Ratio(tt.a, tt.b); got != tt.want {
				t.Errorf("Ratio = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenSortRatioIgnoresOrder(t *testing.T) {
	if got := resolver.TokenSortRatio("health clipboard", "clipboard health"); got != 1 {
		t.Errorf("TokenSortRatio = %v, want 1", got)
	}
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Clipboard Health", "org"},
		{"Northwind Traders LLC", "org"},
		{"Jane Doe", "person"},
		{"Mary Ann Smith", "person"},
		{"Smith & Sons", "org"},
		{"7-Eleven", "org"},
		{"Contoso", "org"},
		{"The Big Blue Sky Bakery", "org"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolver.InferKind(tt.name); string(got) != tt.want {
				t.Errorf("InferKind(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}
