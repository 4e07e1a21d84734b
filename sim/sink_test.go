package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncSink_PreservesOrder(t *testing.T) {
	// GIVEN an async sink with a small buffer in front of a collector
	collector := &CollectingSink{}
	async := NewAsyncSink(collector, 2)

	// WHEN a full run emits through it
	s, err := NewSimulator(SimConfig{
		Initial:     PopulationState{Susceptible: 175000, Infected: 10},
		Rates:       RateParameters{InfectionRate: 0.4, RecoveryRate: 0.04},
		TotalMonths: 36,
	}, async)
	require.NoError(t, err)
	require.NoError(t, s.Run())
	require.NoError(t, async.Close())

	// THEN the collector saw every report in chronological order
	require.Len(t, collector.Reports, 36)
	for i, r := range collector.Reports {
		assert.Equal(t, i, r.Step)
	}
}

func TestAsyncSink_DownstreamError_SurfacesOnClose(t *testing.T) {
	boom := errors.New("broken pipe")
	var seen []int
	async := NewAsyncSink(SinkFunc(func(r Report) error {
		seen = append(seen, r.Step)
		if r.Step == 1 {
			return boom
		}
		return nil
	}), 8)

	for m := 0; m < 4; m++ {
		_ = async.Emit(NewReport(m, PopulationState{}))
	}
	err := async.Close()

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []int{0, 1}, seen, "reports after the failure are dropped")
}

func TestMultiSink_FansOutInOrder(t *testing.T) {
	a, b := &CollectingSink{}, &CollectingSink{}
	m := MultiSink{a, b}

	require.NoError(t, m.Emit(NewReport(0, PopulationState{Susceptible: 1})))
	assert.Len(t, a.Reports, 1)
	assert.Len(t, b.Reports, 1)
}

func TestMultiSink_StopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	after := &CollectingSink{}
	m := MultiSink{SinkFunc(func(Report) error { return boom }), after}

	assert.ErrorIs(t, m.Emit(NewReport(0, PopulationState{})), boom)
	assert.Empty(t, after.Reports)
}

func TestNewReport_CalendarFields(t *testing.T) {
	tests := []struct {
		step, year, month int
	}{
		{0, 0, 1},
		{11, 0, 12},
		{12, 1, 1},
		{23, 1, 12},
		{30, 2, 7},
	}
	for _, tt := range tests {
		r := NewReport(tt.step, PopulationState{})
		assert.Equal(t, tt.year, r.Year, "step %d", tt.step)
		assert.Equal(t, tt.month, r.Month, "step %d", tt.step)
	}
}
