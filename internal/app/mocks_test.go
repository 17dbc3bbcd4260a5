package app

import (
	"context"
	"sync"
	"time"

	"github.com/mrinfinityjs/pyrewall/internal/domain"
)

type sinkCall struct {
	Set     string
	Address string
	TTL     time.Duration
	DryRun  bool
}

type mockSink struct {
	mu      sync.Mutex
	calls   []sinkCall
	failFor map[string]bool
	mutated []string
}

func newMockSink() *mockSink {
	return &mockSink{failFor: make(map[string]bool)}
}

func (m *mockSink) Insert(ctx context.Context, set, address string, ttl time.Duration, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, sinkCall{Set: set, Address: address, TTL: ttl, DryRun: dryRun})
	if m.failFor[address] {
		return &domain.SinkError{Set: set, Address: address, Reason: "ipset command not found"}
	}
	if !dryRun {
		m.mutated = append(m.mutated, address)
	}
	return nil
}

func (m *mockSink) Name() string { return "mock" }

type mockObserver struct {
	mu      sync.Mutex
	lines   map[string]int
	actions []domain.ActionResult
	scans   int
}

func newMockObserver() *mockObserver {
	return &mockObserver{lines: make(map[string]int)}
}

func (o *mockObserver) ObserveLine(result string) {
	o.mu.Lock()
	o.lines[result]++
	o.mu.Unlock()
}

func (o *mockObserver) ObserveAction(result domain.ActionResult) {
	o.mu.Lock()
	o.actions = append(o.actions, result)
	o.mu.Unlock()
}

func (o *mockObserver) ObserveScan(addresses int, elapsed time.Duration) {
	o.mu.Lock()
	o.scans++
	o.mu.Unlock()
}
