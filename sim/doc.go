// Package sim provides the core time-stepped SIR epidemic simulation engine.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - population.go: PopulationState and RateParameters, the only data the model carries
//   - step.go: the three transition rules and the per-step combinators
//   - simulator.go: the monthly stepping loop and report emission
//
// # Architecture
//
// The sim package owns the model and the driver; observers live alongside it or in
// sub-packages:
//   - sink.go: ReportSink and the collecting / asynchronous sinks
//   - metrics.go: aggregate run summary
//   - sim/report/: text, csv and jsonl report writers
//   - sim/trace/: per-step transition flow recording
//
// # Key Interfaces
//
//   - ReportSink: receives one Report per simulated month, in chronological order
//   - StepFunc: computes the next PopulationState from the current one (Step or StepParallel)
//
// The package never parses flags or reads files; cmd/ builds a Simulator from a
// validated configuration.
package sim
