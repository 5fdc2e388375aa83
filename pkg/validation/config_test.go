package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigValidator_Collects(t *testing.T) {
	cv := NewConfigValidator("Config").
		Required("Namespace", "").
		MinInt("MaxDepth", -2, -1).
		NonNegative("MaxSpecies", -5).
		PositiveFloat("Weight", 0).
		Identifier("Namespace", "bad name").
		OneOf("Level", "loud", []string{"debug", "info"})

	if !cv.HasErrors() {
		t.Fatal("Expected errors")
	}
	if got := len(cv.Errors()); got != 6 {
		t.Fatalf("Expected 6 errors, got %d: %v", got, cv.Errors())
	}

	err := cv.Validate()
	for _, want := range []string{"Config.Namespace", "Config.MaxDepth", "Config.MaxSpecies", "Config.Level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Combined error missing %q: %v", want, err)
		}
	}
}

func TestConfigValidator_Valid(t *testing.T) {
	cv := NewConfigValidator("Config").
		Required("Namespace", "plexnet").
		MinInt("MaxDepth", 0, 0).
		RangeInt("Depth", 3, 0, 10).
		NonNegative("MaxSpecies", 0).
		PositiveFloat("Weight", 1.5).
		Identifier("Namespace", "plexnet").
		OneOf("Level", "info", []string{"debug", "info"})

	if cv.HasErrors() {
		t.Errorf("Expected no errors, got %v", cv.Errors())
	}
	if err := cv.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestConfigValidator_RangeInt(t *testing.T) {
	tests := []struct {
		name      string
		value     int
		expectErr bool
	}{
		{"below", -1, true},
		{"min", 0, false},
		{"max", 10, false},
		{"above", 11, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewConfigValidator("C").RangeInt("V", tt.value, 0, 10)
			if cv.HasErrors() != tt.expectErr {
				t.Errorf("RangeInt(%d) errors = %v, want %v", tt.value, cv.Errors(), tt.expectErr)
			}
		})
	}
}

func TestConfigValidator_CustomAndWhen(t *testing.T) {
	sentinel := errors.New("cache disabled with dedupe")

	cv := NewConfigValidator("C").
		Custom("Cache", func() error { return sentinel }).
		When(false, func(v *ConfigValidator) { v.Required("Skipped", "") }).
		When(true, func(v *ConfigValidator) { v.Required("Applied", "") })

	if len(cv.Errors()) != 2 {
		t.Fatalf("Expected 2 errors, got %v", cv.Errors())
	}
	if !errors.Is(cv.Validate(), sentinel) {
		t.Error("Custom error should be wrapped")
	}
	if strings.Contains(cv.Validate().Error(), "Skipped") {
		t.Error("When(false) should not apply")
	}
}

func TestDefaultOr(t *testing.T) {
	if got := DefaultOr("", "plexnet"); got != "plexnet" {
		t.Errorf("DefaultOr(\"\") = %q", got)
	}
	if got := DefaultOr(3, 8); got != 3 {
		t.Errorf("DefaultOr(3, 8) = %d", got)
	}
	if got := DefaultOr(0.0, 1.5); got != 1.5 {
		t.Errorf("DefaultOr(0, 1.5) = %v", got)
	}
}
