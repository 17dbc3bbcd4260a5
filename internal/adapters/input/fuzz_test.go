package input_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mrinfinityjs/pyrewall/internal/adapters/input"
	"github.com/mrinfinityjs/pyrewall/internal/domain"
)

func FuzzFirewallLogParser(f *testing.F) {
	parser := input.NewFirewallLogParserAt(time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC))
	filter := domain.Filter{Verdict: domain.VerdictBlocked, Protocol: domain.ProtocolTCP}

	seeds := []string{
		"Jun 14 10:00:05 gw kernel: IPTABLES-BLOCKED: SRC=203.0.113.7 DST=192.0.2.1 PROTO=TCP",
		"Jun  2 08:01:02 gw kernel: IP6TABLES-BLOCKED: SRC=2001:db8::7 PROTO=TCP",
		"Jun 14 10:00:05 gw kernel: IPTABLES-BLOCKED: SRC=::::::: PROTO=TCP",
		"Jun 99 99:99:99 IPTABLES-BLOCKED: SRC=1.1.1.1 PROTO=TCP",
		"IPTABLES-BLOCKED: SRC= PROTO=",
		"\x00\x01\x02",
		strings.Repeat("A", 10000),
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, data string) {
		event, err := parser.Extract(data, filter)
		if err != nil {
			if !errors.Is(err, domain.ErrParseSkip) {
				t.Fatalf("unexpected error class for %q: %v", data, err)
			}
			return
		}
		if !event.Addr.IsValid() {
			t.Fatalf("matched line produced invalid address: %q", data)
		}
		if event.Timestamp.IsZero() {
			t.Fatalf("matched line produced zero timestamp: %q", data)
		}
	})
}
