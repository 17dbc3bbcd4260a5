package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mrinfinityjs/pyrewall/internal/domain"
	"github.com/mrinfinityjs/pyrewall/internal/ports"
)

// Pipeline runs one batch: read every line, extract matching events, index
// them per address, scan each timeline and dispatch the violations.
//
// A Pipeline owns no state between runs; each Run builds a fresh index.
type Pipeline struct {
	config     ScanConfig
	source     ports.LineSource
	extractor  ports.EventExtractor
	sink       ports.BlocklistSink
	observers  []ports.ScanObserver
	poolConfig ScanPoolConfig
}

func NewPipeline(config ScanConfig, source ports.LineSource, extractor ports.EventExtractor, sink ports.BlocklistSink) *Pipeline {
	poolConfig := DefaultScanPoolConfig()
	if config.Workers > 0 {
		poolConfig.WorkerCount = config.Workers
	}
	return &Pipeline{
		config:     config,
		source:     source,
		extractor:  extractor,
		sink:       sink,
		poolConfig: poolConfig,
	}
}

func (p *Pipeline) AddObserver(o ports.ScanObserver) {
	p.observers = append(p.observers, o)
}

// Run executes the batch. Only configuration and source errors are
// returned; per-line and per-address failures are part of the summary.
func (p *Pipeline) Run(ctx context.Context) (domain.ScanSummary, error) {
	summary := domain.ScanSummary{
		RunID:     uuid.NewString(),
		Source:    p.source.Name(),
		Filter:    p.config.Filter.String(),
		Threshold: p.config.Threshold,
		Window:    p.config.WindowRaw,
		DryRun:    p.config.DryRun,
		StartedAt: time.Now(),
	}

	allowlist, err := ParseAllowlist(p.config.Allowlist)
	if err != nil {
		return summary, err
	}

	logger := log.With().Str("run_id", summary.RunID).Logger()
	logger.Info().
		Str("source", summary.Source).
		Str("format", p.extractor.Format()).
		Str("filter", summary.Filter).
		Int("threshold", p.config.Threshold).
		Str("window", p.config.WindowRaw).
		Str("set", p.config.SetName).
		Str("ttl", p.config.TTLRaw).
		Bool("dry_run", p.config.DryRun).
		Msg("Scan started")

	index, counters, err := p.collect(ctx)
	if err != nil {
		return summary, err
	}
	summary.LinesScanned = counters.Scanned()
	summary.LinesMatched = counters.Matched()
	summary.UniqueAddresses = index.Len()

	logger.Info().
		Int64("lines", summary.LinesScanned).
		Int64("matched", summary.LinesMatched).
		Int64("events", counters.Events()).
		Int("addresses", summary.UniqueAddresses).
		Msg("Finished reading log")

	scanStart := time.Now()
	pool := NewScanPool(p.poolConfig, p.config.Threshold, p.config.Window)
	violations := pool.Scan(ctx, index)
	for _, o := range p.observers {
		o.ObserveScan(index.Len(), time.Since(scanStart))
	}
	summary.Violations = len(violations)

	dispatcher := NewDispatcher(p.sink, DispatcherConfig{
		SetName:   p.config.SetName,
		TTL:       p.config.TTL,
		DryRun:    p.config.DryRun,
		Allowlist: allowlist,
		RateLimit: p.config.SinkRate,
	})
	summary.Results = make([]domain.ActionResult, 0, len(violations))
	for _, v := range violations {
		result := dispatcher.Dispatch(ctx, v)
		summary.Results = append(summary.Results, result)
		for _, o := range p.observers {
			o.ObserveAction(result)
		}
	}

	summary.FinishedAt = time.Now()
	logger.Info().
		Int("violations", summary.Violations).
		Int("failed", summary.CountOutcome(domain.OutcomeFailed)).
		Dur("elapsed", summary.Duration()).
		Msg("Scan complete")

	return summary, nil
}

// collect is the single extraction pass: it counts every line and folds each
// extracted event into the index.
func (p *Pipeline) collect(ctx context.Context) (*AddressIndex, *domain.ScanCounters, error) {
	lines, errs, err := p.source.Lines(ctx)
	if err != nil {
		return nil, nil, err
	}

	index := NewAddressIndex()
	counters := domain.NewScanCounters()

	for lines != nil || errs != nil {
		select {
		case <-ctx.Done():
			return nil, nil, fmt.Errorf("reading %s: %w", p.source.Name(), ctx.Err())
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Warn().Err(err).Str("source", p.source.Name()).Msg("Error reading log")
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			p.processLine(line, index, counters)
		}
	}

	return index, counters, nil
}

func (p *Pipeline) processLine(line string, index *AddressIndex, counters *domain.ScanCounters) {
	counters.IncrementScanned()

	event, err := p.extractor.Extract(line, p.config.Filter)
	reason := domain.SkipReason(err)

	if domain.CountsAsMatched(err) {
		counters.IncrementMatched()
	}
	if err != nil {
		counters.RecordSkip(reason)
	} else {
		counters.IncrementEvents()
		index.Insert(event.Address(), event.Timestamp)
	}

	for _, o := range p.observers {
		o.ObserveLine(reason)
	}
}
