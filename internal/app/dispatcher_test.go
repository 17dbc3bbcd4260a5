package app

import (
	"context"
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrinfinityjs/pyrewall/internal/domain"
)

func violation(addr string) domain.WindowViolation {
	return domain.WindowViolation{
		Address:     addr,
		WindowStart: epoch,
		WindowEnd:   epoch.Add(time.Minute),
		HitCount:    3,
	}
}

func TestDispatcher_RoutesByFamily(t *testing.T) {
	sink := newMockSink()
	d := NewDispatcher(sink, DispatcherConfig{SetName: "blacklist", TTL: 5 * time.Hour})

	v4 := d.Dispatch(context.Background(), violation("1.2.3.4"))
	v6 := d.Dispatch(context.Background(), violation("2001:db8::1"))

	assert.Equal(t, domain.OutcomeDispatched, v4.Outcome)
	assert.Equal(t, domain.FamilyV4, v4.Action.Family)
	assert.Equal(t, "blacklist", v4.Action.SetName)
	assert.Equal(t, int64(18000), v4.Action.TTLSeconds())

	assert.Equal(t, domain.OutcomeDispatched, v6.Outcome)
	assert.Equal(t, domain.FamilyV6, v6.Action.Family)
	assert.Equal(t, "blacklist_v6", v6.Action.SetName)

	assert.Equal(t, []sinkCall{
		{Set: "blacklist", Address: "1.2.3.4", TTL: 5 * time.Hour},
		{Set: "blacklist_v6", Address: "2001:db8::1", TTL: 5 * time.Hour},
	}, sink.calls)
}

func TestDispatcher_DryRun(t *testing.T) {
	sink := newMockSink()
	d := NewDispatcher(sink, DispatcherConfig{SetName: "blacklist", TTL: time.Hour, DryRun: true})

	result := d.Dispatch(context.Background(), violation("1.2.3.4"))

	assert.Equal(t, domain.OutcomeSimulated, result.Outcome)
	assert.True(t, result.Action.DryRun)
	require.Len(t, sink.calls, 1)
	assert.True(t, sink.calls[0].DryRun)
	assert.Empty(t, sink.mutated)
}

func TestDispatcher_SinkFailureIsReported(t *testing.T) {
	sink := newMockSink()
	sink.failFor["1.2.3.4"] = true
	d := NewDispatcher(sink, DispatcherConfig{SetName: "blacklist", TTL: time.Hour})

	failed := d.Dispatch(context.Background(), violation("1.2.3.4"))
	ok := d.Dispatch(context.Background(), violation("5.6.7.8"))

	assert.Equal(t, domain.OutcomeFailed, failed.Outcome)
	assert.Equal(t, "ipset command not found", failed.Reason)
	assert.Equal(t, domain.OutcomeDispatched, ok.Outcome)
	assert.Equal(t, []string{"5.6.7.8"}, sink.mutated)
}

func TestDispatcher_InvalidAddressSkipped(t *testing.T) {
	sink := newMockSink()
	d := NewDispatcher(sink, DispatcherConfig{SetName: "blacklist", TTL: time.Hour})

	result := d.Dispatch(context.Background(), violation("not-an-ip"))

	assert.Equal(t, domain.OutcomeSkipped, result.Outcome)
	assert.Contains(t, result.Reason, "invalid address")
	assert.Empty(t, sink.calls)
}

func TestDispatcher_Allowlist(t *testing.T) {
	allow, err := ParseAllowlist([]string{"10.0.0.0/8", "2001:db8::1"})
	require.NoError(t, err)

	sink := newMockSink()
	d := NewDispatcher(sink, DispatcherConfig{SetName: "blacklist", TTL: time.Hour, Allowlist: allow})

	assert.Equal(t, domain.OutcomeSkipped, d.Dispatch(context.Background(), violation("10.20.30.40")).Outcome)
	assert.Equal(t, domain.OutcomeSkipped, d.Dispatch(context.Background(), violation("2001:db8::1")).Outcome)
	assert.Equal(t, domain.OutcomeDispatched, d.Dispatch(context.Background(), violation("2001:db8::2")).Outcome)
	require.Len(t, sink.calls, 1)
	assert.Equal(t, "2001:db8::2", sink.calls[0].Address)
}

func TestDispatcher_CancelledWhileRateLimited(t *testing.T) {
	sink := newMockSink()
	d := NewDispatcher(sink, DispatcherConfig{SetName: "blacklist", TTL: time.Hour, RateLimit: 0.001})

	first := d.Dispatch(context.Background(), violation("1.1.1.1"))
	require.Equal(t, domain.OutcomeDispatched, first.Outcome)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	second := d.Dispatch(ctx, violation("2.2.2.2"))

	assert.Equal(t, domain.OutcomeFailed, second.Outcome)
	assert.Contains(t, second.Reason, "rate limiter")
	assert.Len(t, sink.calls, 1)
}

func TestParseAllowlist(t *testing.T) {
	prefixes, err := ParseAllowlist([]string{"192.168.1.7/16", "::ffff:10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("192.168.0.0/16"),
		netip.MustParsePrefix("10.0.0.1/32"),
	}, prefixes)

	_, err = ParseAllowlist([]string{"bogus"})
	assert.True(t, errors.Is(err, domain.ErrInvalidAddress))
}
