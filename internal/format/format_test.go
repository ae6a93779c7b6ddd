package format

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTitleCase(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase words", "john smith", "John Smith"},
		{"all caps", "JOHN SMITH", "John Smith"},
		{"mixed case", "jOhN sMiTh", "John Smith"},
		{"extra whitespace", "  john   smith ", "John Smith"},
		{"single word", "toyota", "Toyota"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleCase(tt.input); got != tt.want {
				t.Errorf("TitleCase(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"whole dollars", "1234", "$1,234.00"},
		{"cents", "1234.5", "$1,234.50"},
		{"rounding", "0.005", "$0.01"},
		{"zero", "0", "$0.00"},
		{"millions", "1234567.89", "$1,234,567.89"},
		{"negative", "-99.9", "-$99.90"},
		{"under a thousand", "999.99", "$999.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.input)
			if got := Currency(amount); got != tt.want {
				t.Errorf("Currency(%s) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare digits", "5551234567", "(555) 123-4567"},
		{"with country code", "15551234567", "(555) 123-4567"},
		{"already formatted", "(555) 123-4567", "(555) 123-4567"},
		{"dashed", "555-123-4567", "(555) 123-4567"},
		{"too short", "12345", "12345"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Phone(tt.input); got != tt.want {
				t.Errorf("Phone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
