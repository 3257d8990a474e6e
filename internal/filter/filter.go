// Package filter implements the row accept/reject decision: for each
// row of the input table, the declared device requirements are matched
// against the target's capability set, and rejected rows are dropped
// from the output table.
package filter

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sycltools/aspect-filter/internal/devconfig"
	ferrors "github.com/sycltools/aspect-filter/internal/errors"
	"github.com/sycltools/aspect-filter/internal/props"
	"github.com/sycltools/aspect-filter/internal/storage"
	"github.com/sycltools/aspect-filter/internal/table"
)

// PropertiesColumn is the table column referencing property files.
const PropertiesColumn = "Properties"

// Config holds the engine configuration.
type Config struct {
	// Target is the requested architecture name.
	Target string

	// Caps is the target's resolved capability set.
	Caps *devconfig.TargetCapabilities

	// Source fetches property files referenced by table rows.
	Source storage.Source

	// Concurrency is the number of rows evaluated in parallel
	// (default 1: sequential, the tool's baseline mode).
	Concurrency int

	// Logger receives per-row debug decisions and the run summary.
	Logger zerolog.Logger
}

// Engine filters tables against one target's capabilities.
type Engine struct {
	target      string
	caps        *devconfig.TargetCapabilities
	source      storage.Source
	cache       *props.Cache
	concurrency int
	logger      zerolog.Logger
}

// New creates a filter engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Target == "" {
		return nil, ferrors.New(ferrors.ErrCategoryArgument, ferrors.CodeMissingArgument,
			"target not provided")
	}
	if cfg.Caps == nil {
		return nil, ferrors.New(ferrors.ErrCategoryArgument, ferrors.CodeMissingArgument,
			"target capabilities not provided")
	}
	if cfg.Source == nil {
		return nil, ferrors.New(ferrors.ErrCategoryArgument, ferrors.CodeMissingArgument,
			"property file source not provided")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Engine{
		target:      cfg.Target,
		caps:        cfg.Caps,
		source:      cfg.Source,
		cache:       props.NewCache(),
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger,
	}, nil
}

// FilterTable returns a new table holding the rows of in whose declared
// device requirements the target satisfies, in original relative order.
// A table without a Properties column passes through unchanged. A
// property file that cannot be read or parsed aborts the run.
func (e *Engine) FilterTable(ctx context.Context, in *table.Table) (*table.Table, *RunStats, error) {
	start := time.Now()
	stats := newRecorder()

	propsIdx := in.ColumnIndex(PropertiesColumn)
	if propsIdx < 0 {
		stats.passThrough(int64(in.NumRows()))
		e.logger.Debug().Int("rows", in.NumRows()).
			Msg("table has no Properties column, copying unchanged")
		return in, stats.snapshot(time.Since(start)), nil
	}

	decisions, err := e.evaluateRows(ctx, in, propsIdx, stats)
	if err != nil {
		return nil, nil, err
	}

	out, err := table.New(in.Columns)
	if err != nil {
		return nil, nil, err
	}
	for i, d := range decisions {
		if !d.accepted {
			e.logger.Debug().Int("row", i).
				Str("properties", in.Rows[i][propsIdx]).
				Str("reason", string(d.reason)).
				Msg("row rejected")
			continue
		}
		if err := out.AppendRow(in.Rows[i]); err != nil {
			return nil, nil, err
		}
	}

	hits, misses := e.cache.Stats()
	stats.cacheCounts(hits, misses)
	return out, stats.snapshot(time.Since(start)), nil
}

// decision is the outcome for a single row.
type decision struct {
	accepted bool
	reason   RejectReason
}

// evaluateRows produces one decision per row, in row order. With
// concurrency 1 rows are evaluated sequentially; otherwise a bounded
// goroutine fan-out evaluates them in parallel, and the index-addressed
// result slice keeps output order equal to input order.
func (e *Engine) evaluateRows(ctx context.Context, in *table.Table, propsIdx int, stats *recorder) ([]decision, error) {
	decisions := make([]decision, in.NumRows())

	if e.concurrency == 1 {
		for i := range in.Rows {
			d, err := e.evaluateRow(ctx, i, in.Rows[i][propsIdx], stats)
			if err != nil {
				return nil, err
			}
			decisions[i] = d
		}
		return decisions, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.concurrency)
	var errMu sync.Mutex
	var firstErr error

	for i := range in.Rows {
		wg.Add(1)
		go func(row int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-runCtx.Done():
				return
			}

			d, err := e.evaluateRow(runCtx, row, in.Rows[row][propsIdx], stats)
			if err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
				cancel()
				return
			}
			decisions[row] = d
		}(i)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return decisions, nil
}

// evaluateRow loads and parses one row's property file and applies the
// compatibility predicates.
func (e *Engine) evaluateRow(ctx context.Context, row int, propPath string, stats *recorder) (decision, error) {
	data, err := e.source.ReadFile(ctx, propPath)
	if err != nil {
		return decision{}, ferrors.Wrap(ferrors.ErrCategoryIO, ferrors.CodeReadFailed,
			"can't read the property file "+propPath+" (row "+strconv.Itoa(row)+")", err)
	}

	req, _, err := e.cache.Parse(data)
	if err != nil {
		return decision{}, ferrors.Wrap(ferrors.ErrCategoryFormat, ferrors.CodeMalformedValue,
			"can't parse the property file "+propPath+" (row "+strconv.Itoa(row)+")", err)
	}

	d := e.decide(req)
	stats.record(d)
	return d, nil
}

// decide applies the three compatibility predicates. A row passes only
// if every declared requirement is satisfied; absent requirements are
// no restriction.
func (e *Engine) decide(req *props.DeviceRequirements) decision {
	if req.Empty() {
		return decision{accepted: true}
	}
	if !aspectsSupported(req.Aspects, e.caps) {
		return decision{reason: RejectAspect}
	}
	if !subGroupSizeSupported(req.ReqdSubGroupSize, e.caps) {
		return decision{reason: RejectSubGroupSize}
	}
	if !fixedTargetMatches(req.FixedTarget, e.target) {
		return decision{reason: RejectFixedTarget}
	}
	return decision{accepted: true}
}

// aspectsSupported reports whether every required aspect identifier is
// in the target's supported set.
func aspectsSupported(required []uint32, caps *devconfig.TargetCapabilities) bool {
	for _, id := range required {
		if !caps.SupportsAspect(id) {
			return false
		}
	}
	return true
}

// subGroupSizeSupported reports whether the target supports the exact
// required sub-group size, if one is declared.
func subGroupSizeSupported(size *int, caps *devconfig.TargetCapabilities) bool {
	if size == nil {
		return true
	}
	return caps.SupportsSubGroupSize(*size)
}

// fixedTargetMatches reports whether the declared fixed target, if any,
// equals the requested target.
func fixedTargetMatches(fixed *string, target string) bool {
	if fixed == nil {
		return true
	}
	return *fixed == target
}
