package domain

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// ScanSummary is the data a finished run reports.
type ScanSummary struct {
	RunID           string         `json:"run_id" yaml:"run_id"`
	Source          string         `json:"source" yaml:"source"`
	Filter          string         `json:"filter" yaml:"filter"`
	Threshold       int            `json:"threshold" yaml:"threshold"`
	Window          string         `json:"window" yaml:"window"`
	DryRun          bool           `json:"dry_run" yaml:"dry_run"`
	LinesScanned    int64          `json:"lines_scanned" yaml:"lines_scanned"`
	LinesMatched    int64          `json:"lines_matched" yaml:"lines_matched"`
	UniqueAddresses int            `json:"unique_addresses" yaml:"unique_addresses"`
	Violations      int            `json:"violations" yaml:"violations"`
	Results         []ActionResult `json:"results" yaml:"results"`
	StartedAt       time.Time      `json:"started_at" yaml:"started_at"`
	FinishedAt      time.Time      `json:"finished_at" yaml:"finished_at"`
}

// ActionedAddresses returns the sorted addresses whose action was not skipped.
func (s ScanSummary) ActionedAddresses() []string {
	out := make([]string, 0, len(s.Results))
	for _, r := range s.Results {
		if r.Outcome == OutcomeSkipped {
			continue
		}
		out = append(out, r.Violation.Address)
	}
	sort.Strings(out)
	return out
}

// CountOutcome returns how many results ended with the given outcome.
func (s ScanSummary) CountOutcome(outcome ActionOutcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == outcome {
			n++
		}
	}
	return n
}

func (s ScanSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// ScanCounters accumulates line totals during extraction. Safe for
// concurrent use.
type ScanCounters struct {
	scanned atomic.Int64
	matched atomic.Int64
	events  atomic.Int64

	mu      sync.Mutex
	skipped map[string]int64
}

func NewScanCounters() *ScanCounters {
	return &ScanCounters{skipped: make(map[string]int64)}
}

func (c *ScanCounters) IncrementScanned() { c.scanned.Add(1) }
func (c *ScanCounters) IncrementMatched() { c.matched.Add(1) }
func (c *ScanCounters) IncrementEvents()  { c.events.Add(1) }

// RecordSkip counts a dropped line by reason.
func (c *ScanCounters) RecordSkip(reason string) {
	c.mu.Lock()
	c.skipped[reason]++
	c.mu.Unlock()
}

func (c *ScanCounters) Scanned() int64 { return c.scanned.Load() }
func (c *ScanCounters) Matched() int64 { return c.matched.Load() }
func (c *ScanCounters) Events() int64  { return c.events.Load() }

// Skipped returns a copy of the per-reason skip counts.
func (c *ScanCounters) Skipped() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.skipped))
	for k, v := range c.skipped {
		out[k] = v
	}
	return out
}
