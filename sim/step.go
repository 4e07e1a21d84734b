package sim

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// StepFunc computes the next PopulationState from the current one.
// Step and StepParallel are the two implementations; they return identical results.
type StepFunc func(state PopulationState, rates RateParameters) (PopulationState, error)

// NextSusceptible returns floor(S × (1 − β)): the susceptible pool minus this step's
// new infections.
func NextSusceptible(susceptible int64, infectionRate float64) (int64, error) {
	remaining := float64(float64(susceptible) * (1 - infectionRate))
	return truncateCount("susceptible", remaining)
}

// NextInfected returns floor(I × (1 − γ) + S × β). Both terms are summed in float64
// before truncation, so the new-infections term matches the one NextSusceptible removes.
func NextInfected(susceptible, infected int64, infectionRate, recoveryRate float64) (int64, error) {
	stillInfected := float64(float64(infected) * (1 - recoveryRate))
	newInfections := float64(float64(susceptible) * infectionRate)
	return truncateCount("infected", stillInfected+newInfections)
}

// NextRecovered returns R + floor(I × γ).
func NextRecovered(infected, recovered int64, recoveryRate float64) (int64, error) {
	newRecoveries, err := truncateCount("recovered", float64(float64(infected)*recoveryRate))
	if err != nil {
		return 0, err
	}
	if recovered > math.MaxInt64-newRecoveries {
		return 0, fmt.Errorf("%w: next recovered count overflows int64", ErrInvalidParameter)
	}
	return recovered + newRecoveries, nil
}

// truncateCount floors a non-negative real-valued count. Negative, NaN, or
// out-of-range values come from rates outside [0, 1] and are never clamped.
func truncateCount(compartment string, v float64) (int64, error) {
	if math.IsNaN(v) || v < 0 {
		return 0, fmt.Errorf("%w: next %s count %v is negative or undefined", ErrInvalidParameter, compartment, v)
	}
	if v >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: next %s count %v overflows int64", ErrInvalidParameter, compartment, v)
	}
	return int64(math.Floor(v)), nil
}

// Step applies the three transition rules to the current state in order.
// Every rule reads only the current state, never another rule's output.
func Step(state PopulationState, rates RateParameters) (PopulationState, error) {
	s, err := NextSusceptible(state.Susceptible, rates.InfectionRate)
	if err != nil {
		return PopulationState{}, err
	}
	i, err := NextInfected(state.Susceptible, state.Infected, rates.InfectionRate, rates.RecoveryRate)
	if err != nil {
		return PopulationState{}, err
	}
	r, err := NextRecovered(state.Infected, state.Recovered, rates.RecoveryRate)
	if err != nil {
		return PopulationState{}, err
	}
	return PopulationState{Susceptible: s, Infected: i, Recovered: r}, nil
}

// StepParallel evaluates the three rules concurrently, one goroutine per compartment,
// and joins them before returning. state and rates are passed by value so each
// goroutine reads its own copy; each writes a distinct field of next.
// When more than one rule fails, the error returned is the first one to finish.
func StepParallel(state PopulationState, rates RateParameters) (PopulationState, error) {
	var (
		next PopulationState
		g    errgroup.Group
	)
	g.Go(func() error {
		v, err := NextSusceptible(state.Susceptible, rates.InfectionRate)
		next.Susceptible = v
		return err
	})
	g.Go(func() error {
		v, err := NextInfected(state.Susceptible, state.Infected, rates.InfectionRate, rates.RecoveryRate)
		next.Infected = v
		return err
	})
	g.Go(func() error {
		v, err := NextRecovered(state.Infected, state.Recovered, rates.RecoveryRate)
		next.Recovered = v
		return err
	})
	if err := g.Wait(); err != nil {
		return PopulationState{}, err
	}
	return next, nil
}
