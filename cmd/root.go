package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/epidemic-sim/sir-sim/sim"
	"github.com/epidemic-sim/sir-sim/sim/report"
	"github.com/epidemic-sim/sir-sim/sim/trace"
)

// runOptions holds the flags that shape a run but are not part of RunConfig.
type runOptions struct {
	configPath   string // YAML config file
	logLevel     string // Log verbosity level
	outputPath   string // report destination, empty = stdout
	metricsPath  string // JSON metrics destination, empty = none
	summary      bool   // print run summary to stderr
	reportBuffer int    // >0 emits reports through an AsyncSink with this buffer
}

// NewRootCmd builds the sir-sim command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sir-sim",
		Short:         "Discrete-time SIR epidemic simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// Unparsable values and flags missing their argument surface as configuration errors.
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &sim.ConfigError{Field: "flags", Err: err}
	})
	rootCmd.AddCommand(newRunCmd(), newDefaultsCmd())
	return rootCmd
}

func newRunCmd() *cobra.Command {
	var (
		flagValues = DefaultRunConfig()
		opts       runOptions
	)

	// runCmd executes the simulation using parameters from defaults, file, env and flags
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the SIR simulation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(opts.logLevel)
			if err != nil {
				return &sim.ConfigError{Field: "--log", Value: opts.logLevel, Err: err}
			}
			logrus.SetLevel(level)

			cfg := DefaultRunConfig()
			if opts.configPath != "" {
				if err := loadConfigFile(opts.configPath, &cfg); err != nil {
					return err
				}
			}
			if err := applyEnv(&cfg, nil); err != nil {
				return err
			}
			applyFlags(cmd.Flags(), &cfg, flagValues)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return execute(cmd, cfg, opts)
		},
	}

	flags := runCmd.Flags()
	flags.Int64VarP(&flagValues.Susceptible, "susceptible", "s", flagValues.Susceptible, "Initial susceptible count")
	flags.Int64VarP(&flagValues.Infected, "infected", "i", flagValues.Infected, "Initial infected count")
	flags.Int64VarP(&flagValues.Recovered, "recovered", "r", flagValues.Recovered, "Initial recovered count")
	flags.Float64VarP(&flagValues.InfectionRate, "infection-rate", "b", flagValues.InfectionRate, "Infection rate beta in [0, 1]")
	flags.Float64VarP(&flagValues.RecoveryRate, "recovery-rate", "g", flagValues.RecoveryRate, "Recovery rate gamma in [0, 1]")
	flags.IntVarP(&flagValues.Months, "months", "m", flagValues.Months, "Total months to simulate")
	flags.StringVar(&flagValues.Format, "format", flagValues.Format, "Report format (text, csv, jsonl)")
	flags.BoolVar(&flagValues.Parallel, "parallel", flagValues.Parallel, "Evaluate the three compartments concurrently each step")
	flags.StringVar(&flagValues.Trace, "trace", flagValues.Trace, "Transition trace level (none, steps)")

	flags.StringVar(&opts.configPath, "config", "", "YAML run configuration file")
	flags.StringVar(&opts.logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	flags.StringVar(&opts.outputPath, "output", "", "Write reports to this file instead of stdout")
	flags.StringVar(&opts.metricsPath, "metrics-path", "", "Write run metrics as JSON to this file")
	flags.BoolVar(&opts.summary, "summary", false, "Print a run summary to stderr")
	flags.IntVar(&opts.reportBuffer, "report-buffer", 0, "Emit reports asynchronously through a buffer of this size (0 = synchronous)")

	return runCmd
}

// execute runs one validated configuration and writes every requested output.
func execute(cmd *cobra.Command, cfg RunConfig, opts runOptions) error {
	var out io.Writer = cmd.OutOrStdout()
	if opts.outputPath != "" {
		f, err := os.Create(opts.outputPath)
		if err != nil {
			return fmt.Errorf("create report output: %w", err)
		}
		defer f.Close()
		out = f
	}
	writer, err := report.New(cfg.Format, out)
	if err != nil {
		return &sim.ConfigError{Field: "--format", Value: cfg.Format, Err: err}
	}

	simCfg := cfg.SimConfig()
	simCfg.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(cfg.Trace)})
	simCfg.Logger = logrus.StandardLogger()

	metrics := sim.NewMetrics(simCfg.Initial)
	var (
		reportSink sim.ReportSink = writer
		async      *sim.AsyncSink
	)
	if opts.reportBuffer > 0 {
		async = sim.NewAsyncSink(writer, opts.reportBuffer)
		reportSink = async
	}

	s, err := sim.NewSimulator(simCfg, sim.MultiSink{metrics, reportSink})
	if err != nil {
		return &sim.ConfigError{Field: "run configuration", Err: err}
	}

	startTime := time.Now()
	runErr := s.Run()
	if async != nil {
		if err := async.Close(); err != nil && runErr == nil {
			runErr = fmt.Errorf("emit reports: %w", err)
		}
	}
	if err := writer.Flush(); err != nil && runErr == nil {
		runErr = fmt.Errorf("flush reports: %w", err)
	}
	if runErr != nil {
		return runErr
	}

	if opts.summary {
		stderr := cmd.ErrOrStderr()
		metrics.Print(stderr)
		if simCfg.Trace.Enabled() {
			printTraceSummary(stderr, trace.Summarize(simCfg.Trace))
		}
	}
	if opts.metricsPath != "" {
		if err := metrics.SaveResults(startTime, opts.metricsPath); err != nil {
			return err
		}
	}

	logrus.Info("Simulation complete.")
	return nil
}

func printTraceSummary(w io.Writer, ts *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Transition Trace ===")
	fmt.Fprintf(w, "New Infections       : %d (peak %d at step %d)\n", ts.TotalNewInfections, ts.PeakNewInfections, ts.PeakNewInfectionsStep)
	fmt.Fprintf(w, "New Recoveries       : %d\n", ts.TotalNewRecoveries)
	fmt.Fprintf(w, "Truncation Loss      : %d over %d of %d steps\n", ts.TotalTruncationLoss, ts.StepsWithTruncationLoss, ts.TotalSteps)
}

// newDefaultsCmd prints the built-in configuration as YAML, a starting point for --config.
func newDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the default run configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(DefaultRunConfig()); err != nil {
				return fmt.Errorf("encode defaults: %w", err)
			}
			return enc.Close()
		},
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		logrus.Errorf("%v", err)
		os.Exit(1)
	}
}
