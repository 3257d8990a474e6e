// Package main implements the sycl-aspect-filter tool.
// It transforms an input file table by removing rows whose device code
// declares requirements (aspects, required sub-group size, fixed
// target) unsupported by the target architecture given as an argument.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sycltools/aspect-filter/internal/config"
	"github.com/sycltools/aspect-filter/internal/devconfig"
	"github.com/sycltools/aspect-filter/internal/filter"
	"github.com/sycltools/aspect-filter/internal/storage"
	"github.com/sycltools/aspect-filter/internal/table"
)

func main() {
	cfg := parseFlags()
	if err := cfg.Validate(); err != nil {
		fail(err)
	}
	if err := run(context.Background(), cfg); err != nil {
		fail(err)
	}
}

// fail prints the single diagnostic line and exits 1. Every error in
// this tool is fatal; there is no retry or partial-success mode.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "sycl-aspect-filter: %v\n", err)
	os.Exit(1)
}

func parseFlags() config.Config {
	cfg := config.Default()

	flag.StringVar(&cfg.OutputPath, "o", "", "Output filename")
	flag.StringVar(&cfg.Target, "target", "", "Target device architecture to filter for")
	flag.StringVar(&cfg.DeviceConfigPath, "device-config-file", "", "Path to the device configuration file")
	flag.IntVar(&cfg.Concurrency, "j", 1, "Number of rows evaluated in parallel")
	flag.BoolVar(&cfg.Verbose, "v", false, "Log per-row filtering decisions")
	flag.StringVar(&cfg.S3Region, "s3-region", "", "AWS region for s3:// inputs")
	flag.StringVar(&cfg.S3Endpoint, "s3-endpoint", "", "Custom S3 endpoint for s3:// inputs")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: sycl-aspect-filter [options] <filename>\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg.InputPath = flag.Arg(0)
	return cfg
}

func run(ctx context.Context, cfg config.Config) error {
	logger := newLogger(cfg.Verbose)

	source := storage.NewRouter(func(ctx context.Context) (storage.Source, error) {
		return storage.NewS3Source(ctx, storage.S3Config{
			Region:       cfg.S3Region,
			Endpoint:     cfg.S3Endpoint,
			UsePathStyle: cfg.S3Endpoint != "",
		})
	})

	devData, err := source.ReadFile(ctx, cfg.DeviceConfigPath)
	if err != nil {
		return err
	}
	devCfg, err := devconfig.Load(devData)
	if err != nil {
		return err
	}
	caps, err := devCfg.Lookup(cfg.Target)
	if err != nil {
		return err
	}

	tableData, err := source.ReadFile(ctx, cfg.InputPath)
	if err != nil {
		return err
	}
	in, err := table.ReadBytes(tableData)
	if err != nil {
		return err
	}

	engine, err := filter.New(filter.Config{
		Target:      cfg.Target,
		Caps:        caps,
		Source:      source,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	out, stats, err := engine.FilterTable(ctx, in)
	if err != nil {
		return err
	}

	outputPath := cfg.ResolvedOutputPath()
	if err := out.WriteFile(outputPath, true); err != nil {
		return err
	}

	logger.Info().
		Str("target", cfg.Target).
		Str("output", outputPath).
		Int64("rows_total", stats.RowsTotal).
		Int64("rows_accepted", stats.RowsAccepted).
		Int64("rows_rejected", stats.RowsRejected).
		Int64("property_files_parsed", stats.PropertyFilesParsed).
		Int64("cache_hits", stats.CacheHits).
		Int64("elapsed_ms", stats.ElapsedMs).
		Msg("file table filtered")
	return nil
}

// newLogger builds the run logger: warnings only by default, debug in
// verbose mode, with a run id tying all events of one invocation
// together.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Str("run_id", uuid.New().String()).
		Logger()
}
