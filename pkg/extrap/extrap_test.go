package extrap

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/plexnet/pkg/modelerr"
	"github.com/dd0wney/plexnet/pkg/mol"
)

var (
	r1 = mol.ShapeKey{Mol: "Receptor", Site: "R1", Shape: "R1"}
	l1 = mol.ShapeKey{Mol: "Ligand", Site: "L1", Shape: "L1"}
	l2 = mol.ShapeKey{Mol: "Ligand", Site: "L1", Shape: "open"}
)

func approx(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}

func TestConstant(t *testing.T) {
	rates := NewConstant()
	if err := rates.SetRate(r1, l1, 1.0); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		a, b Site
		want float64
	}{
		{"declared order", Site{Shape: r1, Weight: 10}, Site{Shape: l1, Weight: 5}, 1.0},
		{"reversed order", Site{Shape: l1, Weight: 5}, Site{Shape: r1, Weight: 10}, 1.0},
		{"weights ignored", Site{Shape: r1, Weight: 1000}, Site{Shape: l1, Weight: 1}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rates.Rate(tt.a, tt.b)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Rate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConstant_Missing(t *testing.T) {
	rates := NewConstant()
	_, err := rates.Rate(Site{Shape: r1}, Site{Shape: l1})
	if !errors.Is(err, modelerr.ErrMissingRate) {
		t.Fatalf("expected ErrMissingRate, got %v", err)
	}
	if !strings.Contains(err.Error(), "R1") || !strings.Contains(err.Error(), "L1") {
		t.Errorf("error should name both shapes: %v", err)
	}
}

func TestSetRate_Replaces(t *testing.T) {
	rates := NewConstant()
	_ = rates.SetRate(r1, l1, 1)
	_ = rates.SetRate(l1, r1, 3)

	if rates.Len() != 1 {
		t.Fatalf("Len = %d, want 1 after redeclaring in reverse order", rates.Len())
	}
	got, _ := rates.Rate(Site{Shape: r1}, Site{Shape: l1})
	if got != 3 {
		t.Errorf("Rate = %v, want 3", got)
	}
	if !rates.Has(l1, r1) || rates.Has(r1, l2) {
		t.Error("Has reports the wrong pairs")
	}
}

func TestSetRate_Invalid(t *testing.T) {
	rates := NewConstant()
	for _, v := range []float64{-1, math.NaN(), math.Inf(1)} {
		if err := rates.SetRate(r1, l1, v); !errors.Is(err, modelerr.ErrInvalidDefinition) {
			t.Errorf("SetRate(%v) = %v, want ErrInvalidDefinition", v, err)
		}
	}
	if _, err := NewMassScaled(0, 1); !errors.Is(err, modelerr.ErrInvalidDefinition) {
		t.Errorf("NewMassScaled(0, 1) = %v", err)
	}
}

func TestMassScaled(t *testing.T) {
	rates, err := NewMassScaled(100, 25)
	if err != nil {
		t.Fatal(err)
	}
	if err := rates.SetRate(r1, l1, 2.0); err != nil {
		t.Fatal(err)
	}

	// At the declaration masses the declared rate comes back.
	got, err := rates.Rate(Site{Shape: r1, Weight: 100}, Site{Shape: l1, Weight: 25})
	if err != nil {
		t.Fatal(err)
	}
	if !approx(got, 2.0) {
		t.Errorf("Rate at declared masses = %v, want 2", got)
	}

	// A heavier complex reacts more slowly.
	heavy, _ := rates.Rate(Site{Shape: r1, Weight: 400}, Site{Shape: l1, Weight: 25})
	want := 2.0 / math.Sqrt(1.0/100+1.0/25) * math.Sqrt(1.0/400+1.0/25)
	if !approx(heavy, want) || heavy >= got {
		t.Errorf("heavy Rate = %v, want %v", heavy, want)
	}

	_, err = rates.Rate(Site{Shape: r1, Weight: 1}, Site{Shape: l2, Weight: 1})
	if !errors.Is(err, modelerr.ErrMissingInvariant) {
		t.Errorf("expected ErrMissingInvariant, got %v", err)
	}
}

func TestUnary(t *testing.T) {
	u, err := NewUnary(0.5)
	if err != nil {
		t.Fatal(err)
	}
	if u.Rate(10, 20) != 0.5 || u.Policy() != Constant {
		t.Errorf("constant unary rate = %v", u.Rate(10, 20))
	}

	m, err := NewUnaryMassScaled(0.5, 50, 50)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(m.Rate(50, 50), 0.5) {
		t.Errorf("mass-scaled unary at declared masses = %v", m.Rate(50, 50))
	}
	if m.Rate(200, 50) >= 0.5 {
		t.Error("heavier enabling species should react more slowly")
	}

	if _, err := NewUnary(-1); !errors.Is(err, modelerr.ErrInvalidDefinition) {
		t.Errorf("NewUnary(-1) = %v", err)
	}
	if _, err := NewUnaryMassScaled(1, 0, 1); !errors.Is(err, modelerr.ErrInvalidDefinition) {
		t.Errorf("NewUnaryMassScaled with zero mass = %v", err)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		name    string
		wantErr bool
	}{
		{"", Constant, "constant", false},
		{"constant", Constant, "constant", false},
		{"mass", MassScaled, "mass", false},
		{"linear", Constant, "", true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, %v", tt.in, got, err)
		}
		if err == nil && got.String() != tt.name {
			t.Errorf("String() = %q, want %q", got.String(), tt.name)
		}
	}
}

func TestRateSymmetry(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	shape := func(site, s string) mol.ShapeKey { return mol.ShapeKey{Mol: "M", Site: site, Shape: s} }

	properties.Property("lookup order does not matter", prop.ForAll(
		func(sa, sb string, rate, wa, wb float64, massScaled bool) bool {
			var rates *Rates
			if massScaled {
				rates, _ = NewMassScaled(10, 20)
			} else {
				rates = NewConstant()
			}
			a, b := shape("a", sa), shape("b", sb)
			if err := rates.SetRate(a, b, rate); err != nil {
				return false
			}
			ab, errAB := rates.Rate(Site{Shape: a, Weight: wa}, Site{Shape: b, Weight: wb})
			ba, errBA := rates.Rate(Site{Shape: b, Weight: wb}, Site{Shape: a, Weight: wa})
			return errAB == nil && errBA == nil && approx(ab, ba)
		},
		gen.Identifier(),
		gen.Identifier(),
		gen.Float64Range(0, 1e6),
		gen.Float64Range(1, 1e5),
		gen.Float64Range(1, 1e5),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
