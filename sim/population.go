package sim

import (
	"fmt"
	"math"
)

// PopulationState holds the three compartment counts of a closed population.
// A state is replaced wholesale each step; nothing mutates one in place.
type PopulationState struct {
	Susceptible int64 `json:"susceptible" yaml:"susceptible"`
	Infected    int64 `json:"infected" yaml:"infected"`
	Recovered   int64 `json:"recovered" yaml:"recovered"`
}

// NewPopulationState validates the initial counts and returns the state.
// Counts must be non-negative and their sum must fit in an int64.
func NewPopulationState(susceptible, infected, recovered int64) (PopulationState, error) {
	s := PopulationState{Susceptible: susceptible, Infected: infected, Recovered: recovered}
	if err := s.Validate(); err != nil {
		return PopulationState{}, err
	}
	return s, nil
}

// Validate checks that no compartment is negative and the total does not overflow.
func (s PopulationState) Validate() error {
	if s.Susceptible < 0 {
		return fmt.Errorf("%w: susceptible count %d is negative", ErrInvalidParameter, s.Susceptible)
	}
	if s.Infected < 0 {
		return fmt.Errorf("%w: infected count %d is negative", ErrInvalidParameter, s.Infected)
	}
	if s.Recovered < 0 {
		return fmt.Errorf("%w: recovered count %d is negative", ErrInvalidParameter, s.Recovered)
	}
	if s.Susceptible > math.MaxInt64-s.Infected || s.Susceptible+s.Infected > math.MaxInt64-s.Recovered {
		return fmt.Errorf("%w: total population overflows int64", ErrInvalidParameter)
	}
	return nil
}

// Total returns S + I + R.
func (s PopulationState) Total() int64 {
	return s.Susceptible + s.Infected + s.Recovered
}

func (s PopulationState) String() string {
	return fmt.Sprintf("(S=%d, I=%d, R=%d)", s.Susceptible, s.Infected, s.Recovered)
}

// RateParameters holds the per-step transition rates. Immutable for a run.
type RateParameters struct {
	InfectionRate float64 `json:"infection_rate" yaml:"infection_rate"` // β, fraction of S infected per step
	RecoveryRate  float64 `json:"recovery_rate" yaml:"recovery_rate"`   // γ, fraction of I recovering per step
}

// Validate checks both rates lie in [0, 1].
func (p RateParameters) Validate() error {
	if !isUnitFraction(p.InfectionRate) {
		return fmt.Errorf("%w: infection rate %v outside [0, 1]", ErrInvalidParameter, p.InfectionRate)
	}
	if !isUnitFraction(p.RecoveryRate) {
		return fmt.Errorf("%w: recovery rate %v outside [0, 1]", ErrInvalidParameter, p.RecoveryRate)
	}
	return nil
}

// isUnitFraction is false for NaN as well as for values outside [0, 1].
func isUnitFraction(v float64) bool {
	return v >= 0 && v <= 1
}
