// sim/simulator.go
package sim

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/epidemic-sim/sir-sim/sim/trace"
)

// MaxStepTruncation is the most individuals one step can drop from the total:
// each of the three floored terms loses strictly less than one.
const MaxStepTruncation = 2

// Simulator owns the population state and advances it one month at a time.
type Simulator struct {
	State       PopulationState
	Rates       RateParameters
	TotalMonths int
	// Month is the number of steps completed so far, also the index of the next step.
	Month int
	Sink  ReportSink
	Trace *trace.SimulationTrace

	step StepFunc
	log  logrus.FieldLogger
}

// NewSimulator validates cfg and returns a simulator positioned before step 0.
// A nil sink discards reports.
func NewSimulator(cfg SimConfig, sink ReportSink) (*Simulator, error) {
	if err := cfg.Initial.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Rates.Validate(); err != nil {
		return nil, err
	}
	if cfg.TotalMonths < 0 {
		return nil, fmt.Errorf("%w: total months %d is negative", ErrInvalidParameter, cfg.TotalMonths)
	}
	if sink == nil {
		sink = DiscardSink
	}
	log := cfg.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	step := Step
	if cfg.Parallel {
		step = StepParallel
	}
	return &Simulator{
		State:       cfg.Initial,
		Rates:       cfg.Rates,
		TotalMonths: cfg.TotalMonths,
		Sink:        sink,
		Trace:       cfg.Trace,
		step:        step,
		log:         log,
	}, nil
}

// Done reports whether every configured month has been simulated.
func (sim *Simulator) Done() bool {
	return sim.Month >= sim.TotalMonths
}

// Run advances the simulation until TotalMonths steps have completed.
// With TotalMonths == 0 it emits nothing and leaves State unchanged.
func (sim *Simulator) Run() error {
	sim.log.Infof("Starting simulation: %s, beta=%v, gamma=%v, months=%d",
		sim.State, sim.Rates.InfectionRate, sim.Rates.RecoveryRate, sim.TotalMonths)
	for !sim.Done() {
		if err := sim.Advance(); err != nil {
			return err
		}
	}
	sim.log.Infof("[month %04d] Simulation ended at %s", sim.Month, sim.State)
	return nil
}

// Advance computes one step, replaces the state, and emits its report.
// On a transition failure the state is left untouched and no report is emitted.
func (sim *Simulator) Advance() error {
	if sim.Done() {
		return nil
	}
	m := sim.Month
	prev := sim.State
	next, err := sim.step(prev, sim.Rates)
	if err != nil {
		return &StepError{Step: m, State: prev, Err: err}
	}
	sim.State = next
	sim.Month++

	drift := prev.Total() - next.Total()
	sim.log.Debugf("[month %04d] %s total=%d drift=%d", m, next, next.Total(), drift)
	if drift < 0 || drift > MaxStepTruncation {
		sim.log.Warnf("[month %04d] population changed by %d, expected truncation loss in [0, %d]",
			m, -drift, MaxStepTruncation)
	}
	if sim.Trace.Enabled() {
		sim.Trace.RecordStep(trace.StepRecord{
			Step:           m,
			NewInfections:  prev.Susceptible - next.Susceptible,
			NewRecoveries:  next.Recovered - prev.Recovered,
			TotalBefore:    prev.Total(),
			TotalAfter:     next.Total(),
			TruncationLoss: drift,
		})
	}

	if err := sim.Sink.Emit(NewReport(m, next)); err != nil {
		return fmt.Errorf("emit report for step %d: %w", m, err)
	}
	return nil
}
