// ============================================================================
// jobtrace CLI - Command Line Interface
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: Cobra front end for converting job-thread instrumentation logs
//          into Trace Event Format files
//
// Command Structure:
//   jobtrace <log-path>            # Convert one log
//   ├── --config, -c              # YAML config file
//   ├── --output, -o              # Output path (default: <log>.json)
//   ├── --workers, -w             # Parallel pass-2 workers
//   ├── --metrics-file            # Prometheus textfile destination
//   ├── --quiet, -q               # No progress log, no summary
//   ├── --version
//   └── --help
//
// Configuration Management:
//   YAML file (default: configs/default.yaml). A missing default file falls
//   back to built-in defaults; a file passed with --config must exist.
//   Sections:
//   - trace:   category, display_time_unit, extension, indent
//   - convert: workers, chunk_size
//   - metrics: enabled, textfile
//
// Conversion Flow:
//   1. Derive the output path and refuse to overwrite the input
//   2. Read and repair the log (internal/eventlog)
//   3. Pass 1: build the resolution table and time origin
//   4. Pass 2: convert events, sequentially or in parallel chunks
//   5. Write the document atomically, print the summary
//
// Error Handling:
//   - Missing log argument: UsageError, usage is printed, exit status 2
//   - Malformed line / unresolved thread: reported, exit status 1,
//     no output file is written
//
// ============================================================================

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ChuLiYu/jobthread-trace/internal/eventlog"
	"github.com/ChuLiYu/jobthread-trace/internal/metrics"
	"github.com/ChuLiYu/jobthread-trace/internal/tef"
	"github.com/ChuLiYu/jobthread-trace/internal/transducer"
	"github.com/ChuLiYu/jobthread-trace/internal/worker"
	"github.com/ChuLiYu/jobthread-trace/pkg/types"
)

// DefaultConfigPath is the config file read when --config is not given.
const DefaultConfigPath = "configs/default.yaml"

// Config represents the complete converter configuration.
// Maps config file fields through YAML tags.
type Config struct {
	Trace struct {
		Category        string `yaml:"category"`
		DisplayTimeUnit string `yaml:"display_time_unit"`
		Extension       string `yaml:"extension"`
		Indent          bool   `yaml:"indent"`
	} `yaml:"trace"`

	Convert struct {
		Workers   int `yaml:"workers"`
		ChunkSize int `yaml:"chunk_size"`
	} `yaml:"convert"`

	Metrics struct {
		Enabled  bool   `yaml:"enabled"`
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Trace.Category == "" {
		c.Trace.Category = transducer.DefaultCategory
	}
	if c.Trace.DisplayTimeUnit == "" {
		c.Trace.DisplayTimeUnit = tef.DefaultDisplayTimeUnit
	}
	if c.Trace.Extension == "" {
		c.Trace.Extension = tef.DefaultExtension
	}
	if c.Convert.Workers < 1 {
		c.Convert.Workers = 1
	}
	if c.Convert.ChunkSize < 1 {
		c.Convert.ChunkSize = worker.DefaultChunkSize
	}
}

// ErrUsage is matched by every UsageError.
var ErrUsage = errors.New("usage error")

// UsageError reports a command line mistake.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

func (e *UsageError) Is(target error) bool { return target == ErrUsage }

// ExitCode maps an Execute error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUsage):
		return 2
	default:
		return 1
	}
}

// Options controls a single conversion.
type Options struct {
	LogPath     string      // Source instrumentation log
	OutputPath  string      // Destination; derived from LogPath when empty
	MetricsFile string      // Overrides cfg.Metrics.Textfile when set
	Logger      *log.Logger // Progress log; nil discards
}

// Report describes a finished conversion.
type Report struct {
	Output     string
	Events     int
	Records    int
	Pools      int
	Threads    int
	Jobs       int
	SpanMicros int64
	Duration   time.Duration
}

func BuildCLI() *cobra.Command {
	var (
		configFile  string
		outputPath  string
		metricsFile string
		workers     int
		quiet       bool
	)

	rootCmd := &cobra.Command{
		Use:   "jobtrace <log-path>",
		Short: "Convert job-thread scheduler logs to Trace Event Format",
		Long: `jobtrace reads a newline-delimited job-thread instrumentation log and
writes a Trace Event Format file next to it:
- one process per thread pool, one thread per worker
- a virtual queue thread per pool for jobs waiting to start
- timestamps in microseconds from the first event`,
		Version: "1.0.0",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &UsageError{Msg: fmt.Sprintf("expected exactly one log path, got %d argument(s)", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := resolveConfig(configFile, cmd.Flags().Changed("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if workers > 0 {
				cfg.Convert.Workers = workers
			}

			logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
			if quiet {
				logger.SetOutput(io.Discard)
			}

			report, err := Convert(cmd.Context(), cfg, Options{
				LogPath:     args[0],
				OutputPath:  outputPath,
				MetricsFile: metricsFile,
				Logger:      logger,
			})
			if err != nil {
				return err
			}

			if !quiet {
				printSummary(cmd.OutOrStdout(), report)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", DefaultConfigPath, "config file path")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output trace path (default: log path with the configured extension)")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel conversion workers (default: from config)")
	rootCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress log and summary")

	return rootCmd
}

// Convert runs the full pipeline for one log. Nothing is written to the
// output path unless every event converts.
func Convert(ctx context.Context, cfg *Config, opts Options) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	start := time.Now()
	collector := metrics.NewCollector()
	metricsPath := opts.MetricsFile
	if metricsPath == "" && cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Textfile
	}

	report, err := convert(ctx, cfg, opts, logger, collector)
	collector.ObserveDuration(time.Since(start))
	if err != nil {
		collector.ObserveFailure(failureReason(err))
	}

	if metricsPath != "" {
		if merr := collector.WriteTextfile(metricsPath); merr != nil {
			logger.Printf("Failed to write metrics to %s: %v\n", metricsPath, merr)
		}
	}
	if err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	return report, nil
}

func convert(ctx context.Context, cfg *Config, opts Options, logger *log.Logger, collector *metrics.Collector) (*Report, error) {
	if opts.LogPath == "" {
		return nil, &UsageError{Msg: "log path is required"}
	}

	outPath := opts.OutputPath
	if outPath == "" {
		var err error
		outPath, err = tef.OutputPath(opts.LogPath, cfg.Trace.Extension)
		if err != nil {
			return nil, err
		}
	} else if filepath.Clean(outPath) == filepath.Clean(opts.LogPath) {
		return nil, fmt.Errorf("%w: %s", tef.ErrOverwriteInput, outPath)
	}

	logger.Printf("Reading %s\n", opts.LogPath)
	events, err := eventlog.ReadFile(opts.LogPath)
	if err != nil {
		return nil, err
	}
	collector.ObserveEvents(events)

	snap := transducer.BuildSnapshot(events)
	conv := transducer.NewConverter(snap, cfg.Trace.Category)
	logger.Printf("Converting %d events (origin %d ns, %d threads, %d workers)\n",
		len(events), snap.Origin(), snap.Threads(), cfg.Convert.Workers)

	var records []tef.Event
	if cfg.Convert.Workers > 1 {
		pool := worker.NewPool(cfg.Convert.Workers, cfg.Convert.ChunkSize)
		records, err = pool.Run(ctx, events, conv.ConvertRange)
	} else {
		records, err = conv.Convert(events)
	}
	if err != nil {
		return nil, err
	}
	collector.ObserveRecords(records)

	doc := tef.NewDocument(records, cfg.Trace.DisplayTimeUnit)
	if err := tef.WriteFile(outPath, doc, cfg.Trace.Indent); err != nil {
		return nil, err
	}
	logger.Printf("Wrote %d records to %s\n", len(records), outPath)

	return buildReport(outPath, events, records, snap), nil
}

func buildReport(outPath string, events []types.RawEvent, records []tef.Event, snap *transducer.Snapshot) *Report {
	report := &Report{
		Output:  outPath,
		Events:  len(events),
		Records: len(records),
		Threads: snap.Threads(),
	}

	jobs := make(map[types.JobID]struct{})
	for _, ev := range events {
		switch ev.Kind {
		case types.KindNewThreadPool:
			report.Pools++
		case types.KindNewJob:
			jobs[ev.JobID] = struct{}{}
		}
	}
	report.Jobs = len(jobs)

	for _, rec := range records {
		report.SpanMicros = max(report.SpanMicros, rec.Timestamp)
	}
	return report
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, eventlog.ErrMalformedRecord):
		return "malformed_record"
	case errors.Is(err, transducer.ErrUnresolvedThread):
		return "unresolved_thread"
	case errors.Is(err, ErrUsage), errors.Is(err, tef.ErrOverwriteInput):
		return "usage"
	default:
		return "io"
	}
}

func resolveConfig(path string, explicit bool) (*Config, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}
