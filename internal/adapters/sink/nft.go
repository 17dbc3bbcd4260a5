package sink

import (
	"context"
	"fmt"
	"time"
)

// NftSink adds set elements with a per-element timeout. The named set must
// be declared with `flags timeout` in the given table.
type NftSink struct {
	family  string
	table   string
	timeout time.Duration
	run     runner
}

func NewNftSink(family, table string, timeout time.Duration) *NftSink {
	if family == "" {
		family = "inet"
	}
	if table == "" {
		table = "filter"
	}
	return &NftSink{family: family, table: table, timeout: timeout, run: execRunner}
}

func (s *NftSink) Name() string {
	return "nft"
}

func (s *NftSink) Insert(ctx context.Context, set, address string, ttl time.Duration, dryRun bool) error {
	if dryRun {
		logDryRun(s.Name(), set, address, ttl)
		return nil
	}
	return runTool(ctx, s.run, s.timeout, set, address, "nft", s.args(set, address, ttl)...)
}

func (s *NftSink) args(set, address string, ttl time.Duration) []string {
	element := fmt.Sprintf("{ %s timeout %ds }", address, int64(ttl/time.Second))
	return []string{"add", "element", s.family, s.table, set, element}
}
