package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/epidemic-sim/sir-sim/sim/trace"
)

// SimConfig groups everything needed to build a Simulator.
type SimConfig struct {
	Initial     PopulationState
	Rates       RateParameters
	TotalMonths int
	Parallel    bool                   // evaluate the three rules concurrently each step
	Trace       *trace.SimulationTrace // optional; nil disables tracing
	Logger      logrus.FieldLogger     // optional; nil discards log output
}
