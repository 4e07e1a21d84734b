package sim

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates a rate or count that no closed population can produce.
	ErrInvalidParameter = errors.New("sim: invalid parameter")

	// ErrInvalidState indicates a step whose next state would contain a negative count.
	ErrInvalidState = errors.New("sim: invalid state")

	// ErrConfiguration indicates a run configuration rejected before the simulation started.
	ErrConfiguration = errors.New("sim: configuration error")
)

// ConfigError names the configuration field (flag, env var, or YAML key) that was rejected.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is reports every ConfigError as ErrConfiguration.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// StepError wraps a transition failure with the 0-indexed step it occurred at and
// the state the step started from.
type StepError struct {
	Step  int
	State PopulationState
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (year %d, month %d) from %s: %v",
		e.Step, e.Step/MonthsPerYear, e.Step%MonthsPerYear+1, e.State, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Is reports every StepError as ErrInvalidState.
func (e *StepError) Is(target error) bool {
	return target == ErrInvalidState
}
