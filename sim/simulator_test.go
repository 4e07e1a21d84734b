package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epidemic-sim/sir-sim/sim/internal/testutil"
	"github.com/epidemic-sim/sir-sim/sim/trace"
)

func newTestSimulator(t *testing.T, initial PopulationState, rates RateParameters, months int, sink ReportSink) *Simulator {
	t.Helper()
	s, err := NewSimulator(SimConfig{Initial: initial, Rates: rates, TotalMonths: months}, sink)
	require.NoError(t, err)
	return s
}

func TestSimulator_OneStep_DocumentedReport(t *testing.T) {
	// GIVEN the documented initial state and rates
	sink := &CollectingSink{}
	s := newTestSimulator(t,
		PopulationState{Susceptible: 100000, Infected: 25000, Recovered: 500},
		RateParameters{InfectionRate: 0.05, RecoveryRate: 0.02}, 1, sink)

	// WHEN one month is simulated
	require.NoError(t, s.Run())

	// THEN exactly one report for year 0, month 1 is emitted
	require.Len(t, sink.Reports, 1)
	assert.Equal(t, Report{Step: 0, Year: 0, Month: 1, Susceptible: 95000, Infected: 29500, Recovered: 1000}, sink.Reports[0])
	assert.Equal(t, "Year 0, Month 1 - Susceptible: 95000, Infected: 29500, Recovered: 1000", sink.Reports[0].String())
	assert.Equal(t, sink.Reports[0].State(), s.State)
}

func TestSimulator_ZeroMonths_NoReportsStateUnchanged(t *testing.T) {
	// GIVEN total_months = 0
	initial := PopulationState{Susceptible: 500, Infected: 5, Recovered: 0}
	sink := &CollectingSink{}
	s := newTestSimulator(t, initial, RateParameters{InfectionRate: 0.2, RecoveryRate: 0.1}, 0, sink)

	// WHEN the run completes
	require.NoError(t, s.Run())

	// THEN nothing was emitted and the state is the initial one
	assert.Empty(t, sink.Reports)
	assert.Equal(t, initial, s.State)
	assert.Equal(t, 0, s.Month)
	assert.True(t, s.Done())
}

func TestSimulator_GoldenDataset(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)

	for _, tc := range dataset.Tests {
		for _, parallel := range []bool{false, true} {
			name := tc.Name
			if parallel {
				name += "/parallel"
			}
			t.Run(name, func(t *testing.T) {
				sink := &CollectingSink{}
				s, err := NewSimulator(SimConfig{
					Initial:     PopulationState(tc.Initial),
					Rates:       RateParameters(tc.Rates),
					TotalMonths: tc.Months,
					Parallel:    parallel,
				}, sink)
				require.NoError(t, err)
				require.NoError(t, s.Run())

				require.Len(t, sink.Reports, len(tc.Reports))
				for i, want := range tc.Reports {
					assert.Equal(t, Report(want), sink.Reports[i], "report %d", i)
				}
			})
		}
	}
}

func TestSimulator_Conservation_WithinTruncationTolerance(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)

	for _, tc := range dataset.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			sink := &CollectingSink{}
			initial := PopulationState(tc.Initial)
			s := newTestSimulator(t, initial, RateParameters(tc.Rates), tc.Months, sink)
			require.NoError(t, s.Run())

			prev := initial.Total()
			for _, r := range sink.Reports {
				total := r.State().Total()
				testutil.AssertConserved(t, r.Step, prev, total, MaxStepTruncation)
				prev = total
			}
		})
	}
}

func TestSimulator_TypicalRates_MonotonicCompartments(t *testing.T) {
	// GIVEN 0 < β, γ < 1 and S, I > 0
	sink := &CollectingSink{}
	initial := PopulationState{Susceptible: 175000, Infected: 10, Recovered: 0}
	s := newTestSimulator(t, initial, RateParameters{InfectionRate: 0.4, RecoveryRate: 0.04}, 120, sink)

	// WHEN ten years are simulated
	require.NoError(t, s.Run())

	// THEN S never grows and R never shrinks
	prev := initial
	for _, r := range sink.Reports {
		assert.LessOrEqual(t, r.Susceptible, prev.Susceptible, "step %d", r.Step)
		assert.GreaterOrEqual(t, r.Recovered, prev.Recovered, "step %d", r.Step)
		prev = r.State()
	}
}

func TestSimulator_CalendarDerivation(t *testing.T) {
	sink := &CollectingSink{}
	s := newTestSimulator(t, PopulationState{Susceptible: 1000, Infected: 1}, RateParameters{InfectionRate: 0.1, RecoveryRate: 0.1}, 25, sink)
	require.NoError(t, s.Run())

	require.Len(t, sink.Reports, 25)
	for m, r := range sink.Reports {
		assert.Equal(t, m, r.Step)
		assert.Equal(t, m/12, r.Year)
		assert.Equal(t, m%12+1, r.Month)
		assert.GreaterOrEqual(t, r.Month, 1)
		assert.LessOrEqual(t, r.Month, 12)
	}
	assert.Equal(t, 1, sink.Reports[12].Year)
	assert.Equal(t, 1, sink.Reports[12].Month)
	assert.Equal(t, 2, sink.Reports[24].Year)
}

func TestSimulator_Determinism_IdenticalRunsIdenticalReports(t *testing.T) {
	run := func(parallel bool) []Report {
		sink := &CollectingSink{}
		s, err := NewSimulator(SimConfig{
			Initial:     PopulationState{Susceptible: 175000, Infected: 10},
			Rates:       RateParameters{InfectionRate: 0.4, RecoveryRate: 0.04},
			TotalMonths: 48,
			Parallel:    parallel,
		}, sink)
		require.NoError(t, err)
		require.NoError(t, s.Run())
		return sink.Reports
	}

	first := run(false)
	assert.Equal(t, first, run(false))
	assert.Equal(t, first, run(true))
}

func TestSimulator_InvalidStepRates_AbortsWithStepIndex(t *testing.T) {
	// GIVEN a simulator that completed two valid months
	sink := &CollectingSink{}
	s := newTestSimulator(t, PopulationState{Susceptible: 1000, Infected: 10}, RateParameters{InfectionRate: 0.1, RecoveryRate: 0.1}, 5, sink)
	require.NoError(t, s.Advance())
	require.NoError(t, s.Advance())
	before := s.State

	// WHEN the rates are corrupted past validation
	s.Rates.InfectionRate = 1.5
	err := s.Run()

	// THEN the run aborts at step 2 with an invalid-state error and no third report
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, 2, stepErr.Step)
	assert.Equal(t, before, stepErr.State)
	assert.Contains(t, err.Error(), "step 2")
	assert.Len(t, sink.Reports, 2)
	assert.Equal(t, before, s.State)
	assert.Equal(t, 2, s.Month)
}

func TestNewSimulator_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  SimConfig
	}{
		{"negative count", SimConfig{Initial: PopulationState{Susceptible: -1}, Rates: RateParameters{0.1, 0.1}}},
		{"rate out of range", SimConfig{Initial: PopulationState{Susceptible: 1}, Rates: RateParameters{1.1, 0.1}}},
		{"negative months", SimConfig{Initial: PopulationState{Susceptible: 1}, Rates: RateParameters{0.1, 0.1}, TotalMonths: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSimulator(tt.cfg, nil)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestSimulator_SinkError_AbortsRun(t *testing.T) {
	boom := errors.New("disk full")
	calls := 0
	sink := SinkFunc(func(r Report) error {
		calls++
		if r.Step == 3 {
			return boom
		}
		return nil
	})
	s := newTestSimulator(t, PopulationState{Susceptible: 1000, Infected: 1}, RateParameters{0.2, 0.1}, 10, sink)

	err := s.Run()
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "step 3")
	assert.Equal(t, 4, calls)
}

func TestSimulator_Trace_RecordsFlows(t *testing.T) {
	tr := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelSteps})
	s, err := NewSimulator(SimConfig{
		Initial:     PopulationState{Susceptible: 100000, Infected: 25000, Recovered: 500},
		Rates:       RateParameters{InfectionRate: 0.05, RecoveryRate: 0.02},
		TotalMonths: 3,
		Trace:       tr,
	}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Run())

	require.Len(t, tr.Steps, 3)
	assert.Equal(t, trace.StepRecord{
		Step: 0, NewInfections: 5000, NewRecoveries: 500,
		TotalBefore: 125500, TotalAfter: 125500, TruncationLoss: 0,
	}, tr.Steps[0])
	// 85737 + 37499 + 2263 = 125499
	assert.Equal(t, int64(1), tr.Steps[2].TruncationLoss)

	summary := trace.Summarize(tr)
	assert.Equal(t, int64(100000-85737), summary.TotalNewInfections)
	assert.Equal(t, int64(1), summary.TotalTruncationLoss)
}
