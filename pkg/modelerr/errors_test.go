package modelerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestModelError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ModelError
		expected string
	}{
		{
			name:     "with name and context",
			err:      &ModelError{Op: "DefineMol", Kind: "site", Name: "Receptor.R1", Context: "shape x", Cause: ErrUnknownReference},
			expected: `DefineMol site "Receptor.R1" (shape x): unknown reference`,
		},
		{
			name:     "with name",
			err:      &ModelError{Op: "DefineMol", Kind: "mol", Name: "Receptor", Cause: ErrDuplicateName},
			expected: `DefineMol mol "Receptor": duplicate name`,
		},
		{
			name:     "context only",
			err:      &ModelError{Op: "decompose", Context: "shapes a / b", Cause: ErrMissingRate},
			expected: "decompose (shapes a / b): missing rate",
		},
		{
			name:     "minimal",
			err:      &ModelError{Op: "recognize", Cause: ErrMalformedStructure},
			expected: "recognize: malformed structure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestModelError_Unwrap(t *testing.T) {
	err := New("DefineSpecies").Species("RL").Cause(ErrUnknownReference).Err()

	if !errors.Is(err, ErrUnknownReference) {
		t.Error("errors.Is should see through ModelError")
	}
	if errors.Is(err, ErrDuplicateName) {
		t.Error("errors.Is matched an unrelated sentinel")
	}

	var me *ModelError
	if !errors.As(err, &me) {
		t.Fatal("errors.As should find ModelError")
	}
	if me.Kind != "species" || me.Name != "RL" {
		t.Errorf("builder fields = %+v", me)
	}

	wrapped := fmt.Errorf("loading rules: %w", err)
	if !errors.Is(wrapped, ErrUnknownReference) {
		t.Error("sentinel lost through fmt wrapping")
	}
}

func TestMissingRate(t *testing.T) {
	err := MissingRate("decompose", "Receptor.R1/default", "Ligand.L1/default")
	if !errors.Is(err, ErrMissingRate) {
		t.Fatal("MissingRate should wrap ErrMissingRate")
	}
	msg := err.Error()
	for _, want := range []string{"R1", "L1", "decompose"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		err      error
		config   bool
		defect   bool
		notFound bool
		fatal    bool
	}{
		{ErrDuplicateName, true, false, false, false},
		{ErrUnknownReference, true, false, false, false},
		{MissingRate("x", "a", "b"), true, false, false, true},
		{MissingInvariant("x", "a", "b"), true, false, false, true},
		{Malformed("x", "disconnected"), false, true, false, true},
		{ErrUnknownSpecies, false, false, true, false},
		{ErrUnknownMol, false, false, true, false},
		{ErrNegativePopulation, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := IsConfiguration(tt.err); got != tt.config {
				t.Errorf("IsConfiguration = %v, want %v", got, tt.config)
			}
			if got := IsDefect(tt.err); got != tt.defect {
				t.Errorf("IsDefect = %v, want %v", got, tt.defect)
			}
			if got := IsNotFound(tt.err); got != tt.notFound {
				t.Errorf("IsNotFound = %v, want %v", got, tt.notFound)
			}
			if got := IsFatal(tt.err); got != tt.fatal {
				t.Errorf("IsFatal = %v, want %v", got, tt.fatal)
			}
		})
	}
}

func TestModelError_IsNilTarget(t *testing.T) {
	e := &ModelError{Op: "x", Cause: ErrMissingRate}
	if e.Is(nil) {
		t.Error("Is(nil) should be false")
	}
}
