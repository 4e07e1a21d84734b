// Tracks run-wide outcomes such as the infection peak, the final state and the
// population lost to integer truncation.

package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Metrics aggregates statistics about a run for final reporting.
// It is a ReportSink: attach it to the driver alongside any output sink.
type Metrics struct {
	Initial          PopulationState
	Final            PopulationState
	StepsCompleted   int
	PeakInfected     int64 // includes the initial state
	PeakInfectedStep int   // -1 when the peak is the initial state
	TotalDrift       int64 // Initial.Total() - Final.Total()
	MaxStepDrift     int64
}

// MetricsOutput is the JSON shape written by SaveResults.
type MetricsOutput struct {
	Initial              PopulationState `json:"initial"`
	Final                PopulationState `json:"final"`
	StepsCompleted       int             `json:"steps_completed"`
	PeakInfected         int64           `json:"peak_infected"`
	PeakInfectedStep     int             `json:"peak_infected_step"`
	PeakInfectedYear     int             `json:"peak_infected_year"`
	PeakInfectedMonth    int             `json:"peak_infected_month"`
	InitialPopulation    int64           `json:"initial_population"`
	FinalPopulation      int64           `json:"final_population"`
	TotalDrift           int64           `json:"total_drift"`
	MaxStepDrift         int64           `json:"max_step_drift"`
	SimulationDurationMs float64         `json:"simulation_duration_ms"`
}

// NewMetrics starts tracking from the initial state.
func NewMetrics(initial PopulationState) *Metrics {
	return &Metrics{
		Initial:          initial,
		Final:            initial,
		PeakInfected:     initial.Infected,
		PeakInfectedStep: -1,
	}
}

// Emit folds one report into the aggregates.
func (m *Metrics) Emit(r Report) error {
	next := r.State()
	drift := m.Final.Total() - next.Total()
	if drift > m.MaxStepDrift {
		m.MaxStepDrift = drift
	}
	if next.Infected > m.PeakInfected {
		m.PeakInfected = next.Infected
		m.PeakInfectedStep = r.Step
	}
	m.Final = next
	m.StepsCompleted++
	m.TotalDrift = m.Initial.Total() - next.Total()
	return nil
}

// Output converts the aggregates into their serialized form.
func (m *Metrics) Output(startTime time.Time) MetricsOutput {
	out := MetricsOutput{
		Initial:              m.Initial,
		Final:                m.Final,
		StepsCompleted:       m.StepsCompleted,
		PeakInfected:         m.PeakInfected,
		PeakInfectedStep:     m.PeakInfectedStep,
		InitialPopulation:    m.Initial.Total(),
		FinalPopulation:      m.Final.Total(),
		TotalDrift:           m.TotalDrift,
		MaxStepDrift:         m.MaxStepDrift,
		SimulationDurationMs: float64(time.Since(startTime).Microseconds()) / 1e3,
	}
	if m.PeakInfectedStep >= 0 {
		out.PeakInfectedYear = m.PeakInfectedStep / MonthsPerYear
		out.PeakInfectedMonth = m.PeakInfectedStep%MonthsPerYear + 1
	}
	return out
}

// Print writes a human-readable summary to w.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Months Simulated     : %d\n", m.StepsCompleted)
	fmt.Fprintf(w, "Initial Population   : %d\n", m.Initial.Total())
	fmt.Fprintf(w, "Final State          : %s\n", m.Final)
	if m.PeakInfectedStep >= 0 {
		fmt.Fprintf(w, "Peak Infected        : %d (year %d, month %d)\n",
			m.PeakInfected, m.PeakInfectedStep/MonthsPerYear, m.PeakInfectedStep%MonthsPerYear+1)
	} else {
		fmt.Fprintf(w, "Peak Infected        : %d (initial state)\n", m.PeakInfected)
	}
	fmt.Fprintf(w, "Truncation Drift     : %d (max %d per step)\n", m.TotalDrift, m.MaxStepDrift)
}

// SaveResults writes the metrics as indented JSON to outputPath.
func (m *Metrics) SaveResults(startTime time.Time, outputPath string) error {
	data, err := json.MarshalIndent(m.Output(startTime), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write metrics to %s: %w", outputPath, err)
	}
	logrus.Infof("Metrics written to: %s", outputPath)
	return nil
}
