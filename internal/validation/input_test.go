package validation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/farm-payroll/internal/model"
)

func TestName(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "trimmed", value: "  Budi  ", want: "Budi"},
		{name: "two characters", value: "Al", want: "Al"},
		{name: "multibyte", value: "Юл", want: "Юл"},
		{name: "one character", value: " A ", wantErr: true},
		{name: "only spaces", value: "    ", wantErr: true},
		{name: "empty string", value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Name("name", tt.value)
			if tt.wantErr {
				if !errors.Is(err, model.ErrInvalidArgument) {
					t.Fatalf("Name(%q) error = %v, want ErrInvalidArgument", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Name(%q) unexpected error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Fatalf("Name(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestRequired(t *testing.T) {
	if _, err := Required("currency", "  "); !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	got, err := Required("currency", " Gold ")
	if err != nil || got != "Gold" {
		t.Fatalf("Required = %q, %v; want Gold, nil", got, err)
	}
}

func TestOptional(t *testing.T) {
	if Optional("   ") != nil {
		t.Fatalf("expected nil for blank value")
	}
	if v := Optional(" BCA "); v == nil || *v != "BCA" {
		t.Fatalf("expected trimmed value, got %v", v)
	}
}

func TestPositive(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{value: "0.01"},
		{value: "1000000"},
		{value: "0", wantErr: true},
		{value: "-5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := Positive("amount", decimal.RequireFromString(tt.value))
			if tt.wantErr != (err != nil) {
				t.Fatalf("Positive(%s) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}

	if err := PositiveInt("rate_unit", 0); !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
