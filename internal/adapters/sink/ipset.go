package sink

import (
	"context"
	"strconv"
	"time"
)

// IPSetSink adds addresses with `ipset add <set> <addr> timeout <seconds> -exist`.
// The set must already exist with timeout support; -exist makes re-adding an
// address refresh its timeout instead of failing.
type IPSetSink struct {
	binary  string
	timeout time.Duration
	run     runner
}

func NewIPSetSink(timeout time.Duration) *IPSetSink {
	return &IPSetSink{binary: "ipset", timeout: timeout, run: execRunner}
}

func (s *IPSetSink) Name() string {
	return "ipset"
}

func (s *IPSetSink) Insert(ctx context.Context, set, address string, ttl time.Duration, dryRun bool) error {
	if dryRun {
		logDryRun(s.Name(), set, address, ttl)
		return nil
	}
	return runTool(ctx, s.run, s.timeout, set, address, s.binary, ipsetArgs(set, address, ttl)...)
}

func ipsetArgs(set, address string, ttl time.Duration) []string {
	return []string{"add", set, address, "timeout", strconv.FormatInt(int64(ttl/time.Second), 10), "-exist"}
}
