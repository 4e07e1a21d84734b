package cmd

import (
	"fmt"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"

	"github.com/epidemic-sim/sir-sim/sim"
	"github.com/epidemic-sim/sir-sim/sim/report"
	"github.com/epidemic-sim/sir-sim/sim/trace"
)

// EnvPrefix is prepended to every environment variable name in RunConfig.
const EnvPrefix = "SIR_"

// RunConfig is the merged run configuration. Sources are applied in order:
// built-in defaults, YAML file, SIR_* environment variables, explicitly set flags.
// All fields must be listed to satisfy KnownFields(true) strict parsing.
type RunConfig struct {
	Susceptible   int64   `yaml:"susceptible" env:"SUSCEPTIBLE"`
	Infected      int64   `yaml:"infected" env:"INFECTED"`
	Recovered     int64   `yaml:"recovered" env:"RECOVERED"`
	InfectionRate float64 `yaml:"infection_rate" env:"INFECTION_RATE"`
	RecoveryRate  float64 `yaml:"recovery_rate" env:"RECOVERY_RATE"`
	Months        int     `yaml:"months" env:"MONTHS"`
	Format        string  `yaml:"format" env:"FORMAT"`
	Parallel      bool    `yaml:"parallel" env:"PARALLEL"`
	Trace         string  `yaml:"trace" env:"TRACE"`
}

// applyEnv overlays SIR_* variables onto cfg. Unset variables leave fields alone.
// environ == nil reads the process environment.
func applyEnv(cfg *RunConfig, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return &sim.ConfigError{Field: "environment", Err: err}
	}
	return nil
}

// flagFields binds each run flag to the RunConfig field it overrides.
var flagFields = map[string]func(dst *RunConfig, src RunConfig){
	"susceptible":    func(d *RunConfig, s RunConfig) { d.Susceptible = s.Susceptible },
	"infected":       func(d *RunConfig, s RunConfig) { d.Infected = s.Infected },
	"recovered":      func(d *RunConfig, s RunConfig) { d.Recovered = s.Recovered },
	"infection-rate": func(d *RunConfig, s RunConfig) { d.InfectionRate = s.InfectionRate },
	"recovery-rate":  func(d *RunConfig, s RunConfig) { d.RecoveryRate = s.RecoveryRate },
	"months":         func(d *RunConfig, s RunConfig) { d.Months = s.Months },
	"format":         func(d *RunConfig, s RunConfig) { d.Format = s.Format },
	"parallel":       func(d *RunConfig, s RunConfig) { d.Parallel = s.Parallel },
	"trace":          func(d *RunConfig, s RunConfig) { d.Trace = s.Trace },
}

// applyFlags copies into dst only the flags the user actually set, so a flag left at
// its default never overrides the file or environment.
func applyFlags(flags *pflag.FlagSet, dst *RunConfig, src RunConfig) {
	flags.Visit(func(f *pflag.Flag) {
		if set, ok := flagFields[f.Name]; ok {
			set(dst, src)
		}
	})
}

// Validate rejects anything the simulation could not run with, naming the flag.
func (c RunConfig) Validate() error {
	counts := []struct {
		field string
		v     int64
	}{
		{"-s/--susceptible", c.Susceptible},
		{"-i/--infected", c.Infected},
		{"-r/--recovered", c.Recovered},
	}
	for _, cnt := range counts {
		if cnt.v < 0 {
			return &sim.ConfigError{Field: cnt.field, Value: strconv.FormatInt(cnt.v, 10),
				Err: fmt.Errorf("%w: count must be non-negative", sim.ErrInvalidParameter)}
		}
	}
	if _, err := sim.NewPopulationState(c.Susceptible, c.Infected, c.Recovered); err != nil {
		return &sim.ConfigError{Field: "initial population", Err: err}
	}
	rates := []struct {
		field string
		v     float64
	}{
		{"-b/--infection-rate", c.InfectionRate},
		{"-g/--recovery-rate", c.RecoveryRate},
	}
	for _, r := range rates {
		if !(r.v >= 0 && r.v <= 1) {
			return &sim.ConfigError{Field: r.field, Value: strconv.FormatFloat(r.v, 'g', -1, 64),
				Err: fmt.Errorf("%w: rate must lie in [0, 1]", sim.ErrInvalidParameter)}
		}
	}
	if c.Months < 0 {
		return &sim.ConfigError{Field: "-m/--months", Value: strconv.Itoa(c.Months),
			Err: fmt.Errorf("%w: months must be non-negative", sim.ErrInvalidParameter)}
	}
	if !report.IsValidFormat(c.Format) {
		return &sim.ConfigError{Field: "--format", Value: c.Format,
			Err: fmt.Errorf("unknown format, valid: %v", report.Formats())}
	}
	if !trace.IsValidTraceLevel(c.Trace) {
		return &sim.ConfigError{Field: "--trace", Value: c.Trace,
			Err: fmt.Errorf("unknown trace level, valid: %s, %s", trace.TraceLevelNone, trace.TraceLevelSteps)}
	}
	return nil
}

// SimConfig converts a validated RunConfig into the simulator's inputs.
func (c RunConfig) SimConfig() sim.SimConfig {
	return sim.SimConfig{
		Initial: sim.PopulationState{
			Susceptible: c.Susceptible,
			Infected:    c.Infected,
			Recovered:   c.Recovered,
		},
		Rates: sim.RateParameters{
			InfectionRate: c.InfectionRate,
			RecoveryRate:  c.RecoveryRate,
		},
		TotalMonths: c.Months,
		Parallel:    c.Parallel,
	}
}
