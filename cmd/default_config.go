package cmd

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/epidemic-sim/sir-sim/sim"
	"github.com/epidemic-sim/sir-sim/sim/report"
	"github.com/epidemic-sim/sir-sim/sim/trace"
)

// DefaultRunConfig models a common-cold outbreak in a town of 175000 over two years.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Susceptible:   175000,
		Infected:      10,
		Recovered:     0,
		InfectionRate: 0.4,
		RecoveryRate:  0.04,
		Months:        2 * sim.MonthsPerYear,
		Format:        report.FormatText,
		Parallel:      false,
		Trace:         string(trace.TraceLevelNone),
	}
}

// loadConfigFile overlays the YAML file at path onto cfg. An empty file is allowed.
// Uses strict field checking: a misspelled key is an error, not a silent default.
func loadConfigFile(path string, cfg *RunConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &sim.ConfigError{Field: "--config", Value: path, Err: err}
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return &sim.ConfigError{Field: "--config", Value: path, Err: err}
	}
	return nil
}
