package app

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/mrinfinityjs/pyrewall/internal/domain"
	"github.com/mrinfinityjs/pyrewall/internal/ports"
)

// DispatcherConfig configures how violations turn into block actions.
type DispatcherConfig struct {
	SetName   string         // Base set name; IPv6 uses SetName + "_v6"
	TTL       time.Duration  // How long an address stays blocked
	DryRun    bool           // Report intended actions only
	Allowlist []netip.Prefix // Addresses that are never blocked
	RateLimit float64        // Max sink calls per second (<=0: unlimited)
}

// Dispatcher forwards each violation to the blocklist sink exactly once.
type Dispatcher struct {
	sink      ports.BlocklistSink
	setName   string
	ttl       time.Duration
	dryRun    bool
	allowlist []netip.Prefix
	limiter   *rate.Limiter
}

func NewDispatcher(sink ports.BlocklistSink, config DispatcherConfig) *Dispatcher {
	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
	}
	return &Dispatcher{
		sink:      sink,
		setName:   config.SetName,
		ttl:       config.TTL,
		dryRun:    config.DryRun,
		allowlist: config.Allowlist,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// Dispatch classifies the violating address, picks the set partition and
// calls the sink. Invalid addresses, allowlisted addresses and sink errors
// are reported in the result; none of them is returned as an error.
func (d *Dispatcher) Dispatch(ctx context.Context, v domain.WindowViolation) domain.ActionResult {
	result := domain.ActionResult{Violation: v}

	addr, family, err := domain.ClassifyAddress(v.Address)
	if err != nil {
		log.Warn().Str("address", v.Address).Msg("Could not parse address, skipping")
		result.Outcome = domain.OutcomeSkipped
		result.Reason = err.Error()
		return result
	}

	result.Action = domain.BlockAction{
		Address: addr.String(),
		Family:  family,
		SetName: domain.SetNameFor(d.setName, family),
		TTL:     d.ttl,
		DryRun:  d.dryRun,
	}

	log.Info().
		Str("address", result.Action.Address).
		Str("family", string(family)).
		Int("hits", v.HitCount).
		Time("window_start", v.WindowStart).
		Time("window_end", v.WindowEnd).
		Msg("Violation")

	if d.allowlisted(addr) {
		log.Info().Str("address", result.Action.Address).Msg("Address is allowlisted, not blocking")
		result.Outcome = domain.OutcomeSkipped
		result.Reason = "allowlisted"
		return result
	}

	if err := d.limiter.Wait(ctx); err != nil {
		result.Outcome = domain.OutcomeFailed
		result.Reason = fmt.Sprintf("rate limiter: %v", err)
		return result
	}

	err = d.sink.Insert(ctx, result.Action.SetName, result.Action.Address, d.ttl, d.dryRun)
	switch {
	case err == nil && d.dryRun:
		result.Outcome = domain.OutcomeSimulated
	case err == nil:
		result.Outcome = domain.OutcomeDispatched
	default:
		var sinkErr *domain.SinkError
		if errors.As(err, &sinkErr) {
			result.Reason = sinkErr.Reason
		} else {
			result.Reason = err.Error()
		}
		result.Outcome = domain.OutcomeFailed
		log.Error().
			Err(err).
			Str("address", result.Action.Address).
			Str("set", result.Action.SetName).
			Msg("Failed to add address to blocklist")
	}

	return result
}

func (d *Dispatcher) allowlisted(addr netip.Addr) bool {
	for _, p := range d.allowlist {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ParseAllowlist accepts plain addresses and CIDR prefixes.
func ParseAllowlist(entries []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		if p, err := netip.ParsePrefix(e); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("allowlist entry %q: %w", e, domain.ErrInvalidAddress)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}
