package sim

import "fmt"

// MonthsPerYear converts a 0-indexed step into (year, month).
const MonthsPerYear = 12

// Report is the observable outcome of one simulated month.
type Report struct {
	Step        int   `json:"step"`  // 0-indexed month since the start of the run
	Year        int   `json:"year"`  // full years elapsed, Step / 12
	Month       int   `json:"month"` // 1..12
	Susceptible int64 `json:"susceptible"`
	Infected    int64 `json:"infected"`
	Recovered   int64 `json:"recovered"`
}

// NewReport builds the report for step m carrying the state computed by that step.
func NewReport(step int, state PopulationState) Report {
	return Report{
		Step:        step,
		Year:        step / MonthsPerYear,
		Month:       step%MonthsPerYear + 1,
		Susceptible: state.Susceptible,
		Infected:    state.Infected,
		Recovered:   state.Recovered,
	}
}

// State returns the population carried by the report.
func (r Report) State() PopulationState {
	return PopulationState{Susceptible: r.Susceptible, Infected: r.Infected, Recovered: r.Recovered}
}

// String renders the canonical report line.
func (r Report) String() string {
	return fmt.Sprintf("Year %d, Month %d - Susceptible: %d, Infected: %d, Recovered: %d",
		r.Year, r.Month, r.Susceptible, r.Infected, r.Recovered)
}
