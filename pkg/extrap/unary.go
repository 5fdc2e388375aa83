package extrap

import (
	"math"

	"github.com/dd0wney/plexnet/pkg/modelerr"
)

// Unary is the rate of a single-substrate rule, optionally taking one extra
// reactant. With an extra reactant under MassScaled, the rate is rescaled by
// the weights of the enabling species and the extra reactant.
type Unary struct {
	policy    Policy
	rate      float64
	invariant float64
}

// NewUnary returns a constant unary rate.
func NewUnary(rate float64) (*Unary, error) {
	if err := checkRate("extrap.NewUnary", rate); err != nil {
		return nil, err
	}
	return &Unary{policy: Constant, rate: rate}, nil
}

// NewUnaryMassScaled returns a rate declared for an enabling species of mass
// enablingMass meeting an extra reactant of mass auxMass.
func NewUnaryMassScaled(rate, enablingMass, auxMass float64) (*Unary, error) {
	if err := checkRate("extrap.NewUnaryMassScaled", rate); err != nil {
		return nil, err
	}
	if enablingMass <= 0 || auxMass <= 0 {
		return nil, modelerr.New("extrap.NewUnaryMassScaled").
			Context("masses %g and %g must be positive", enablingMass, auxMass).
			Cause(modelerr.ErrInvalidDefinition).Err()
	}
	return &Unary{
		policy:    MassScaled,
		rate:      rate,
		invariant: rate / reducedMassFactor(enablingMass, auxMass),
	}, nil
}

// Policy returns the rate's policy.
func (u *Unary) Policy() Policy {
	return u.policy
}

// Rate returns the rate for an enabling species of the given weight. auxWeight
// is ignored unless the rate is mass scaled.
func (u *Unary) Rate(enablingWeight, auxWeight float64) float64 {
	if u.policy == MassScaled {
		return u.invariant * reducedMassFactor(enablingWeight, auxWeight)
	}
	return u.rate
}

func checkRate(op string, rate float64) error {
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return modelerr.New(op).Context("rate %g", rate).Cause(modelerr.ErrInvalidDefinition).Err()
	}
	return nil
}
