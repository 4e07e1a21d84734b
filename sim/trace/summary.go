package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalSteps              int
	TotalNewInfections      int64
	TotalNewRecoveries      int64
	TotalTruncationLoss     int64
	MaxStepTruncationLoss   int64
	PeakNewInfections       int64
	PeakNewInfectionsStep   int
	StepsWithTruncationLoss int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{}
	if st == nil {
		return summary
	}

	summary.TotalSteps = len(st.Steps)
	for _, r := range st.Steps {
		summary.TotalNewInfections += r.NewInfections
		summary.TotalNewRecoveries += r.NewRecoveries
		summary.TotalTruncationLoss += r.TruncationLoss
		if r.TruncationLoss > 0 {
			summary.StepsWithTruncationLoss++
		}
		if r.TruncationLoss > summary.MaxStepTruncationLoss {
			summary.MaxStepTruncationLoss = r.TruncationLoss
		}
		if r.NewInfections > summary.PeakNewInfections {
			summary.PeakNewInfections = r.NewInfections
			summary.PeakNewInfectionsStep = r.Step
		}
	}

	return summary
}
