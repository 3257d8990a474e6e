// Package config provides the configuration for the sycl-aspect-filter
// tool: CLI-provided paths and options collected into one struct passed
// through the run, instead of process-wide option state.
package config

import (
	"path/filepath"
	"strings"

	ferrors "github.com/sycltools/aspect-filter/internal/errors"
)

// Config holds one run's configuration.
type Config struct {
	// InputPath is the input file table (local path or s3:// URL).
	InputPath string

	// OutputPath is the output table path. Empty means derive it from
	// InputPath by inserting _filtered before the extension.
	OutputPath string

	// Target is the target architecture to filter for.
	Target string

	// DeviceConfigPath is the device configuration file (local path or
	// s3:// URL).
	DeviceConfigPath string

	// Concurrency is the number of rows evaluated in parallel.
	Concurrency int

	// Verbose enables per-row debug logging.
	Verbose bool

	// S3Region overrides the AWS region for s3:// inputs.
	S3Region string

	// S3Endpoint is an optional custom S3 endpoint (MinIO, LocalStack).
	S3Endpoint string
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Concurrency: 1,
	}
}

// Validate checks that required values are present.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return ferrors.New(ferrors.ErrCategoryArgument, ferrors.CodeMissingArgument,
			"input file not provided")
	}
	if c.Target == "" {
		return ferrors.New(ferrors.ErrCategoryArgument, ferrors.CodeMissingArgument,
			"target not provided")
	}
	if c.DeviceConfigPath == "" {
		return ferrors.New(ferrors.ErrCategoryArgument, ferrors.CodeMissingArgument,
			"path to the device configuration file not provided")
	}
	if c.Concurrency < 1 {
		return ferrors.Newf(ferrors.ErrCategoryArgument, ferrors.CodeInvalidArgument,
			"concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}

// ResolvedOutputPath returns the explicit output path, or the derived
// default: the input path with _filtered inserted before the extension
// (foo.table -> foo_filtered.table). The output is always written
// locally, so for a remote s3:// input the derivation uses only the
// final path element.
func (c *Config) ResolvedOutputPath() string {
	if c.OutputPath != "" {
		return c.OutputPath
	}
	in := c.InputPath
	if strings.HasPrefix(in, "s3://") {
		if i := strings.LastIndexByte(in, '/'); i >= 0 {
			in = in[i+1:]
		}
	}
	ext := filepath.Ext(in)
	stem := strings.TrimSuffix(in, ext)
	return stem + "_filtered" + ext
}
