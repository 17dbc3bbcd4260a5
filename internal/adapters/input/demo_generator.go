package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/netip"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DemoGenerator produces synthetic iptables/ip6tables log lines: background
// noise from many addresses plus dense bursts from a few attackers.
type DemoGenerator struct {
	lines        int
	burstPercent int
	start        time.Time
	span         time.Duration
	seed         int64

	normalIPs   []netip.Addr
	attackerIPs []netip.Addr
	verdicts    []string
	protocols   []string
	ports       []int
}

type DemoConfig struct {
	Lines         int           // Total lines to generate
	AttackPercent int           // Share of lines coming from attackers
	Start         time.Time     // Timestamp of the first line
	Span          time.Duration // Time covered by all lines
	Seed          int64         // RNG seed; 0 picks one from the clock
}

func DefaultDemoConfig() DemoConfig {
	return DemoConfig{
		Lines:         10000,
		AttackPercent: 15,
		Start:         time.Now().Add(-time.Hour),
		Span:          time.Hour,
	}
}

func NewDemoGenerator(config DemoConfig) *DemoGenerator {
	if config.Lines <= 0 {
		config.Lines = 1000
	}
	if config.AttackPercent < 0 || config.AttackPercent > 100 {
		config.AttackPercent = 15
	}
	if config.Span <= 0 {
		config.Span = time.Hour
	}
	if config.Start.IsZero() {
		config.Start = time.Now().Add(-config.Span)
	}
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(config.Seed))
	normalIPs := generateIPPool(rng, 2000, []string{
		"192.168.", "10.0.", "10.1.", "172.16.", "100.64.", "100.65.",
	})
	attackerIPs := generateIPPool(rng, 8, []string{
		"45.33.", "185.220.", "89.234.", "91.121.",
	})
	attackerIPs = append(attackerIPs,
		netip.MustParseAddr("2001:db8:bad::1"),
		netip.MustParseAddr("2001:db8:bad::2"),
	)

	return &DemoGenerator{
		lines:        config.Lines,
		burstPercent: config.AttackPercent,
		start:        config.Start,
		span:         config.Span,
		seed:         config.Seed,
		normalIPs:    normalIPs,
		attackerIPs:  attackerIPs,
		verdicts:     []string{"BLOCKED", "BLOCKED", "ALLOWED"},
		protocols:    []string{"TCP", "TCP", "UDP", "ICMP"},
		ports:        []int{22, 23, 80, 443, 445, 3389, 5900, 8080},
	}
}

func (g *DemoGenerator) Name() string {
	return "demo"
}

// Generate writes every synthetic line to w.
func (g *DemoGenerator) Generate(w io.Writer) error {
	bw := bufio.NewWriterSize(w, 64*1024)
	var writeErr error
	err := g.each(context.Background(), func(line string) bool {
		if _, writeErr = bw.WriteString(line); writeErr != nil {
			return false
		}
		writeErr = bw.WriteByte('\n')
		return writeErr == nil
	})
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		return err
	}
	return bw.Flush()
}

// Lines lets the generator stand in for a log file.
func (g *DemoGenerator) Lines(ctx context.Context) (<-chan string, <-chan error, error) {
	lineChan := make(chan string, 1000)
	errChan := make(chan error, 1)

	go func() {
		defer close(lineChan)
		defer close(errChan)
		if err := g.each(ctx, func(line string) bool {
			select {
			case lineChan <- line:
				return true
			case <-ctx.Done():
				return false
			}
		}); err != nil {
			errChan <- err
		}
	}()

	return lineChan, errChan, nil
}

func (g *DemoGenerator) each(ctx context.Context, emit func(string) bool) error {
	rng := rand.New(rand.NewSource(g.seed))
	step := g.span / time.Duration(g.lines)

	log.Debug().
		Int("lines", g.lines).
		Int("attack_percent", g.burstPercent).
		Msg("Demo generator started")

	for i := 0; i < g.lines; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		ts := g.start.Add(time.Duration(i) * step)
		if !emit(g.generateLine(rng, ts)) {
			return fmt.Errorf("demo generator: write aborted at line %d", i)
		}
	}
	return nil
}

func (g *DemoGenerator) generateLine(rng *rand.Rand, ts time.Time) string {
	var src netip.Addr
	verdict := g.verdicts[rng.Intn(len(g.verdicts))]
	proto := g.protocols[rng.Intn(len(g.protocols))]

	if rng.Intn(100) < g.burstPercent {
		src = g.attackerIPs[rng.Intn(len(g.attackerIPs))]
		verdict = "BLOCKED"
		proto = "TCP"
	} else {
		src = g.normalIPs[rng.Intn(len(g.normalIPs))]
	}

	return formatFirewallLine(ts, verdict, src, proto, g.ports[rng.Intn(len(g.ports))], rng.Intn(64511)+1024)
}

func formatFirewallLine(ts time.Time, verdict string, src netip.Addr, proto string, dpt, spt int) string {
	prefix := "IPTABLES-"
	dst := "192.0.2.10"
	if src.Is6() {
		prefix = "IP6TABLES-"
		dst = "2001:db8::10"
	}

	var b strings.Builder
	b.Grow(220)
	b.WriteString(ts.Format("Jan _2 15:04:05"))
	b.WriteString(" gw kernel: ")
	b.WriteString(prefix)
	b.WriteString(verdict)
	b.WriteString(": IN=eth0 OUT= SRC=")
	b.WriteString(src.String())
	b.WriteString(" DST=")
	b.WriteString(dst)
	b.WriteString(" LEN=60 TTL=52 PROTO=")
	b.WriteString(proto)
	if proto != "ICMP" {
		fmt.Fprintf(&b, " SPT=%d DPT=%d", spt, dpt)
	}
	return b.String()
}

func generateIPPool(rng *rand.Rand, count int, prefixes []string) []netip.Addr {
	ips := make([]netip.Addr, 0, count)
	for i := 0; i < count; i++ {
		prefix := prefixes[i%len(prefixes)]
		s := fmt.Sprintf("%s%d.%d", prefix, rng.Intn(256), rng.Intn(254)+1)
		if addr, err := netip.ParseAddr(s); err == nil {
			ips = append(ips, addr)
		}
	}
	return ips
}
