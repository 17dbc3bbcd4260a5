// Package app wires the scan pipeline: extraction, per-address indexing,
// window scanning and dispatch to a blocklist sink.
//
// The ScanPool fans the per-address window scans out over a fixed set of
// worker goroutines. Timelines are independent, so workers share no mutable
// state; results are merged once after every worker has finished.
package app

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mrinfinityjs/pyrewall/internal/domain"
)

// ScanPoolConfig defines scan pool configuration options.
type ScanPoolConfig struct {
	WorkerCount int // Number of worker goroutines (default: 1)
	BufferSize  int // Job channel buffer (default: 1024)
}

// DefaultScanPoolConfig returns a single-worker configuration, which keeps
// the scan stage strictly sequential.
func DefaultScanPoolConfig() ScanPoolConfig {
	return ScanPoolConfig{
		WorkerCount: 1,
		BufferSize:  1024,
	}
}

// ScanPool scans every timeline of an AddressIndex.
//
// Features:
//   - Fixed worker count for predictable resource usage
//   - Panic recovery per address; a failing address never stops the batch
//   - Single merge point after all workers finish
type ScanPool struct {
	workerCount int
	bufferSize  int
	threshold   int
	window      time.Duration

	scanned atomic.Int64
	failed  atomic.Int64
}

type scanJob struct {
	address  string
	timeline []time.Time
}

// NewScanPool creates a pool that reports windows of at least threshold
// events within window.
func NewScanPool(config ScanPoolConfig, threshold int, window time.Duration) *ScanPool {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 1024
	}
	return &ScanPool{
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
		threshold:   threshold,
		window:      window,
	}
}

// Scan runs the window scanner over every address in the index and returns
// the violations sorted by address. The index is sorted first if needed.
//
// Behavior:
//   - Addresses with fewer events than the threshold are skipped cheaply
//   - A cancelled context stops handing out new addresses
//   - A panic while scanning one address is logged and that address is dropped
func (p *ScanPool) Scan(ctx context.Context, index *AddressIndex) []domain.WindowViolation {
	if !index.Sorted() {
		index.Sort()
	}

	jobs := make(chan scanJob, p.bufferSize)
	perWorker := make([][]domain.WindowViolation, p.workerCount)

	var wg sync.WaitGroup
	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for job := range jobs {
				if v, ok := p.scanOne(id, job); ok {
					perWorker[id] = append(perWorker[id], v)
				}
			}
		}(i)
	}

	log.Debug().
		Int("workers", p.workerCount).
		Int("addresses", index.Len()).
		Msg("Scan pool started")

feed:
	for _, addr := range index.Addresses() {
		select {
		case <-ctx.Done():
			log.Warn().Err(ctx.Err()).Msg("Scan cancelled, remaining addresses not scanned")
			break feed
		case jobs <- scanJob{address: addr, timeline: index.Timeline(addr)}:
		}
	}
	close(jobs)
	wg.Wait()

	var violations []domain.WindowViolation
	for _, vs := range perWorker {
		violations = append(violations, vs...)
	}
	sort.Slice(violations, func(i, j int) bool {
		return violations[i].Address < violations[j].Address
	})
	return violations
}

func (p *ScanPool) scanOne(workerID int, job scanJob) (v domain.WindowViolation, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.failed.Add(1)
			log.Error().
				Interface("panic", r).
				Int("worker_id", workerID).
				Str("address", job.address).
				Msg("Scan panic recovered")
			v, ok = domain.WindowViolation{}, false
		}
	}()

	p.scanned.Add(1)
	return ScanTimeline(job.address, job.timeline, p.threshold, p.window)
}

// Scanned returns how many timelines were scanned.
func (p *ScanPool) Scanned() int64 {
	return p.scanned.Load()
}

// Failed returns how many timelines panicked during scanning.
func (p *ScanPool) Failed() int64 {
	return p.failed.Load()
}
