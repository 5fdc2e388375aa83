// Package extrap computes reaction rates from rates declared for pairs of site
// shapes.
package extrap

import (
	"fmt"
	"math"

	"github.com/dd0wney/plexnet/pkg/modelerr"
	"github.com/dd0wney/plexnet/pkg/mol"
)

// Policy selects how a declared rate becomes the rate of a concrete reaction.
type Policy int

const (
	// Constant returns the declared rate unchanged.
	Constant Policy = iota
	// MassScaled stores a binding invariant derived from the declared rate and
	// the masses it was declared for, and rescales it by the reacting species'
	// current weights.
	MassScaled
)

func (p Policy) String() string {
	switch p {
	case Constant:
		return "constant"
	case MassScaled:
		return "mass"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy maps "constant" and "mass" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "constant":
		return Constant, nil
	case "mass":
		return MassScaled, nil
	}
	return Constant, fmt.Errorf("unknown rate policy %q", s)
}

// Site is one side of a binary reaction: the shape its site shows and the
// weight of the species it belongs to.
type Site struct {
	Shape  mol.ShapeKey
	Weight float64
}

type pair struct {
	a, b mol.ShapeKey
}

// Rates is a table of rates keyed by unordered pairs of shapes.
type Rates struct {
	policy    Policy
	leftMass  float64
	rightMass float64
	table     map[pair]float64
}

// NewConstant creates a table returning declared rates unchanged.
func NewConstant() *Rates {
	return &Rates{policy: Constant, table: make(map[pair]float64)}
}

// NewMassScaled creates a table whose rates were declared for reactants of the
// given masses.
func NewMassScaled(leftMass, rightMass float64) (*Rates, error) {
	if leftMass <= 0 || rightMass <= 0 {
		return nil, modelerr.New("extrap.NewMassScaled").
			Context("masses %g and %g must be positive", leftMass, rightMass).
			Cause(modelerr.ErrInvalidDefinition).Err()
	}
	return &Rates{policy: MassScaled, leftMass: leftMass, rightMass: rightMass, table: make(map[pair]float64)}, nil
}

// Policy returns the table's policy.
func (r *Rates) Policy() Policy {
	return r.policy
}

// Len returns the number of declared shape pairs.
func (r *Rates) Len() int {
	return len(r.table)
}

// SetRate declares the rate for shapes a and b. The order of a and b does not
// matter for later lookups; redeclaring a pair replaces its rate.
func (r *Rates) SetRate(a, b mol.ShapeKey, rate float64) error {
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return modelerr.New("extrap.SetRate").
			Context("rate %g for shapes %s / %s", rate, a, b).
			Cause(modelerr.ErrInvalidDefinition).Err()
	}
	delete(r.table, pair{b, a})
	switch r.policy {
	case MassScaled:
		r.table[pair{a, b}] = rate / reducedMassFactor(r.leftMass, r.rightMass)
	default:
		r.table[pair{a, b}] = rate
	}
	return nil
}

// Rate returns the rate of a reaction between sites a and b.
func (r *Rates) Rate(a, b Site) (float64, error) {
	v, ok := r.lookup(a.Shape, b.Shape)
	switch r.policy {
	case MassScaled:
		if !ok {
			return 0, modelerr.MissingInvariant("extrap.Rate", a.Shape.String(), b.Shape.String())
		}
		return v * reducedMassFactor(a.Weight, b.Weight), nil
	default:
		if !ok {
			return 0, modelerr.MissingRate("extrap.Rate", a.Shape.String(), b.Shape.String())
		}
		return v, nil
	}
}

// Has reports whether a rate was declared for the pair.
func (r *Rates) Has(a, b mol.ShapeKey) bool {
	_, ok := r.lookup(a, b)
	return ok
}

func (r *Rates) lookup(a, b mol.ShapeKey) (float64, bool) {
	if v, ok := r.table[pair{a, b}]; ok {
		return v, true
	}
	v, ok := r.table[pair{b, a}]
	return v, ok
}

// reducedMassFactor is sqrt(1/m1 + 1/m2), proportional to the mean relative
// speed of two colliding bodies.
func reducedMassFactor(m1, m2 float64) float64 {
	return math.Sqrt(1/m1 + 1/m2)
}
