package domain

import (
	"fmt"
	"net/netip"
	"strings"
	"time"
)

// MaxLineLength bounds how much of a single log line the extractor looks at.
const MaxLineLength = 8192

type Verdict string

const (
	VerdictBlocked Verdict = "blocked"
	VerdictAllowed Verdict = "allowed"
)

// ParseVerdict accepts a verdict in any letter case.
func ParseVerdict(s string) (Verdict, error) {
	switch v := Verdict(strings.ToLower(strings.TrimSpace(s))); v {
	case VerdictBlocked, VerdictAllowed:
		return v, nil
	default:
		return "", fmt.Errorf("unknown rule %q: must be blocked or allowed", s)
	}
}

type Protocol string

const (
	ProtocolTCP  Protocol = "tcp"
	ProtocolUDP  Protocol = "udp"
	ProtocolICMP Protocol = "icmp"
)

// ParseProtocol accepts a protocol name in any letter case.
func ParseProtocol(s string) (Protocol, error) {
	switch p := Protocol(strings.ToLower(strings.TrimSpace(s))); p {
	case ProtocolTCP, ProtocolUDP, ProtocolICMP:
		return p, nil
	default:
		return "", fmt.Errorf("unknown protocol %q: must be tcp, udp or icmp", s)
	}
}

// Filter selects which log lines become events.
type Filter struct {
	Verdict  Verdict
	Protocol Protocol
}

func (f Filter) String() string {
	return strings.ToUpper(string(f.Protocol)) + "/" + strings.ToUpper(string(f.Verdict))
}

// Event is a single matched firewall log record. It is a value type and is
// never modified after extraction.
type Event struct {
	Addr      netip.Addr `json:"addr"`
	Timestamp time.Time  `json:"timestamp"`
	Verdict   Verdict    `json:"verdict"`
	Protocol  Protocol   `json:"protocol"`
}

func (e Event) Address() string {
	if !e.Addr.IsValid() {
		return ""
	}
	return e.Addr.String()
}
