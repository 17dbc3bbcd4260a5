package domain

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"time"
)

type AddressFamily string

const (
	FamilyV4 AddressFamily = "v4"
	FamilyV6 AddressFamily = "v6"
)

// V6SetSuffix is appended to the base set name for IPv6 addresses.
const V6SetSuffix = "_v6"

// ClassifyAddress reports the family of a textual address. IPv4-mapped IPv6
// addresses are treated as IPv4.
func ClassifyAddress(address string) (netip.Addr, AddressFamily, error) {
	addr, err := netip.ParseAddr(address)
	if err != nil {
		return netip.Addr{}, "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	addr = addr.Unmap()
	if addr.Is4() {
		return addr, FamilyV4, nil
	}
	return addr, FamilyV6, nil
}

// SetNameFor returns the set partition that holds addresses of the given family.
func SetNameFor(base string, family AddressFamily) string {
	if family == FamilyV6 {
		return base + V6SetSuffix
	}
	return base
}

// WindowViolation is the earliest window in which an address reached the
// threshold. At most one is produced per address per scan.
type WindowViolation struct {
	Address     string    `json:"address" yaml:"address"`
	WindowStart time.Time `json:"window_start" yaml:"window_start"`
	WindowEnd   time.Time `json:"window_end" yaml:"window_end"`
	HitCount    int       `json:"hit_count" yaml:"hit_count"`
}

// BlockAction is what the dispatcher hands to a blocklist sink.
type BlockAction struct {
	Address string        `json:"address" yaml:"address"`
	Family  AddressFamily `json:"family" yaml:"family"`
	SetName string        `json:"set" yaml:"set"`
	TTL     time.Duration `json:"-" yaml:"-"`
	DryRun  bool          `json:"dry_run" yaml:"dry_run"`
}

// TTLSeconds is the TTL as the integer seconds the enforcement tools expect.
func (a BlockAction) TTLSeconds() int64 {
	return int64(a.TTL / time.Second)
}

type blockActionView struct {
	Address    string        `json:"address" yaml:"address"`
	Family     AddressFamily `json:"family" yaml:"family"`
	SetName    string        `json:"set" yaml:"set"`
	TTLSeconds int64         `json:"ttl_seconds" yaml:"ttl_seconds"`
	DryRun     bool          `json:"dry_run" yaml:"dry_run"`
}

func (a BlockAction) view() blockActionView {
	return blockActionView{
		Address:    a.Address,
		Family:     a.Family,
		SetName:    a.SetName,
		TTLSeconds: a.TTLSeconds(),
		DryRun:     a.DryRun,
	}
}

func (a BlockAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.view())
}

func (a BlockAction) MarshalYAML() (interface{}, error) {
	return a.view(), nil
}

type ActionOutcome string

const (
	OutcomeDispatched ActionOutcome = "dispatched"
	OutcomeSimulated  ActionOutcome = "simulated"
	OutcomeFailed     ActionOutcome = "failed"
	OutcomeSkipped    ActionOutcome = "skipped"
)

// ActionResult records what happened to one violation downstream.
type ActionResult struct {
	Violation WindowViolation `json:"violation" yaml:"violation"`
	Action    BlockAction     `json:"action" yaml:"action"`
	Outcome   ActionOutcome   `json:"outcome" yaml:"outcome"`
	Reason    string          `json:"reason,omitempty" yaml:"reason,omitempty"`
}
