package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestClose(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"equal", "10", "10.00", true},
		{"within tolerance", "10.005", "10", true},
		{"exactly at tolerance", "10.01", "10", false},
		{"beyond tolerance", "10.02", "10", false},
		{"symmetric", "10", "10.01", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := decimal.RequireFromString(tt.a)
			b := decimal.RequireFromString(tt.b)
			if got := Close(a, b); got != tt.want {
				t.Errorf("Close(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain amount", "12.50", "12.5"},
		{"integer", "7", "7"},
		{"blank is zero", "", "0"},
		{"whitespace is zero", "   ", "0"},
		{"garbage is zero", "12a", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Parse(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSum(t *testing.T) {
	shares := map[string]decimal.Decimal{
		"alice": decimal.RequireFromString("0.1"),
		"bob":   decimal.RequireFromString("0.2"),
		"carol": decimal.RequireFromString("0.3"),
	}
	if got := Sum(shares); !got.Equal(decimal.RequireFromString("0.6")) {
		t.Errorf("Sum = %s, want 0.6", got)
	}
	if got := Sum(nil); !got.IsZero() {
		t.Errorf("Sum(nil) = %s, want 0", got)
	}
}
