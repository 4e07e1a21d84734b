// Package trace provides per-step transition recording for SIR runs.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// StepRecord captures the flows between compartments during one step.
type StepRecord struct {
	Step           int
	NewInfections  int64 // susceptible -> infected, S - S'
	NewRecoveries  int64 // infected -> recovered, R' - R
	TotalBefore    int64
	TotalAfter     int64
	TruncationLoss int64 // TotalBefore - TotalAfter, individuals dropped by flooring
}
