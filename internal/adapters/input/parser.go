package input

import (
	"net/netip"
	"regexp"
	"strings"
	"time"

	"github.com/mrinfinityjs/pyrewall/internal/domain"
)

const syslogTimeLayout = "Jan _2 15:04:05"

// firewallLinePattern matches kernel log lines written by iptables/ip6tables
// LOG targets with a "IPTABLES-<VERDICT>:" or "IP6TABLES-<VERDICT>:" prefix.
var firewallLinePattern = regexp.MustCompile(
	`^(?P<timestamp>\w{3}\s+\d+\s+[\d:]+).*(?:IPTABLES|IP6TABLES)-(?P<rule>\w+):.*SRC=(?P<ip>[\d\.:a-fA-F]+).*PROTO=(?P<proto>\w+)`,
)

var (
	groupTimestamp = firewallLinePattern.SubexpIndex("timestamp")
	groupRule      = firewallLinePattern.SubexpIndex("rule")
	groupIP        = firewallLinePattern.SubexpIndex("ip")
	groupProto     = firewallLinePattern.SubexpIndex("proto")
)

// FirewallLogParser extracts events from iptables/ip6tables syslog lines.
// Syslog timestamps carry no year; they are anchored to the year of the
// reference clock, and a timestamp that would land more than a day in the
// future is attributed to the previous year.
type FirewallLogParser struct {
	now func() time.Time
}

func NewFirewallLogParser() *FirewallLogParser {
	return &FirewallLogParser{now: time.Now}
}

// NewFirewallLogParserAt anchors timestamps relative to a fixed reference time.
func NewFirewallLogParserAt(ref time.Time) *FirewallLogParser {
	return &FirewallLogParser{now: func() time.Time { return ref }}
}

func (p *FirewallLogParser) Extract(line string, filter domain.Filter) (domain.Event, error) {
	if len(line) > domain.MaxLineLength {
		line = line[:domain.MaxLineLength]
	}

	if !p.Validate(line) {
		return domain.Event{}, domain.ErrNoMatch
	}
	m := firewallLinePattern.FindStringSubmatch(line)
	if m == nil {
		return domain.Event{}, domain.ErrNoMatch
	}

	if !strings.EqualFold(m[groupRule], string(filter.Verdict)) ||
		!strings.EqualFold(m[groupProto], string(filter.Protocol)) {
		return domain.Event{}, domain.ErrFilterMismatch
	}

	addr, err := netip.ParseAddr(m[groupIP])
	if err != nil {
		return domain.Event{}, domain.ErrInvalidSource
	}

	ts, err := p.anchorTimestamp(m[groupTimestamp])
	if err != nil {
		return domain.Event{}, err
	}

	return domain.Event{
		Addr:      addr.Unmap(),
		Timestamp: ts,
		Verdict:   filter.Verdict,
		Protocol:  filter.Protocol,
	}, nil
}

func (p *FirewallLogParser) anchorTimestamp(raw string) (time.Time, error) {
	parsed, err := time.Parse(syslogTimeLayout, strings.Join(strings.Fields(raw), " "))
	if err != nil {
		return time.Time{}, domain.ErrInvalidTimestamp
	}

	ref := p.now()
	year := ref.Year()
	ts, ok := dateInYear(parsed, year, ref.Location())
	if ok && ts.After(ref.Add(24*time.Hour)) {
		ts, ok = dateInYear(parsed, year-1, ref.Location())
	}
	if !ok {
		return time.Time{}, domain.ErrInvalidTimestamp
	}
	return ts, nil
}

// dateInYear rebuilds a year-less timestamp in the given year. It fails when
// the day does not exist in that year (Feb 29 outside a leap year).
func dateInYear(parsed time.Time, year int, loc *time.Location) (time.Time, bool) {
	ts := time.Date(year, parsed.Month(), parsed.Day(),
		parsed.Hour(), parsed.Minute(), parsed.Second(), 0, loc)
	return ts, ts.Day() == parsed.Day()
}

func (p *FirewallLogParser) Format() string {
	return "iptables"
}

// Validate is a cheap pre-check that avoids running the pattern on lines
// that cannot possibly match.
func (p *FirewallLogParser) Validate(line string) bool {
	return len(line) > 15 &&
		strings.Contains(line, "TABLES-") &&
		strings.Contains(line, "SRC=") &&
		strings.Contains(line, "PROTO=")
}
