package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mrinfinityjs/pyrewall/internal/domain"
)

var reportStart = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

func sampleSummary() domain.ScanSummary {
	return domain.ScanSummary{
		RunID:           "run-1",
		Source:          "/ram/iptables.log",
		Filter:          "TCP/BLOCKED",
		Threshold:       3,
		Window:          "1m",
		LinesScanned:    100,
		LinesMatched:    40,
		UniqueAddresses: 7,
		Violations:      2,
		Results: []domain.ActionResult{
			{
				Violation: domain.WindowViolation{Address: "1.2.3.4", WindowStart: reportStart, WindowEnd: reportStart.Add(time.Minute), HitCount: 3},
				Action:    domain.BlockAction{Address: "1.2.3.4", Family: domain.FamilyV4, SetName: "blacklist", TTL: 5 * time.Hour},
				Outcome:   domain.OutcomeDispatched,
			},
			{
				Violation: domain.WindowViolation{Address: "2001:db8::1", WindowStart: reportStart, WindowEnd: reportStart.Add(time.Minute), HitCount: 4},
				Action:    domain.BlockAction{Address: "2001:db8::1", Family: domain.FamilyV6, SetName: "blacklist_v6", TTL: 5 * time.Hour},
				Outcome:   domain.OutcomeFailed,
				Reason:    "ipset exited with code 1: \x1b[31mset does not exist",
			},
		},
		StartedAt:  reportStart,
		FinishedAt: reportStart.Add(1500 * time.Millisecond),
	}
}

func TestScanMetrics(t *testing.T) {
	m := NewScanMetrics("")
	m.ObserveLine("matched")
	m.ObserveLine("matched")
	m.ObserveLine("filtered")
	m.ObserveScan(7, 20*time.Millisecond)
	for _, r := range sampleSummary().Results {
		m.ObserveAction(r)
	}
	m.ObserveAction(domain.ActionResult{Outcome: domain.OutcomeSkipped})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.lines.WithLabelValues("matched")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.lines.WithLabelValues("filtered")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.violations))
	assert.Equal(t, float64(7), testutil.ToFloat64(m.addresses))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.actions.WithLabelValues("failed", "v6")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.actions.WithLabelValues("skipped", "unknown")))

	path := filepath.Join(t.TempDir(), "pyrewall.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `pyrewall_lines_total{result="matched"} 2`)
	assert.Contains(t, string(data), "pyrewall_last_run_timestamp_seconds")
	assert.Contains(t, string(data), "pyrewall_scan_duration_seconds_count 1")
}

func TestScanMetrics_WriteTextfileError(t *testing.T) {
	m := NewScanMetrics("test")
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	assert.Error(t, err)
}

func TestFileReporter_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	r := NewFileReporter(path)
	assert.Equal(t, "json", r.Format())
	require.NoError(t, r.Report(sampleSummary()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got struct {
		RunID   string `json:"run_id"`
		Results []struct {
			Outcome string `json:"outcome"`
			Action  struct {
				Set        string `json:"set"`
				TTLSeconds int64  `json:"ttl_seconds"`
			} `json:"action"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "run-1", got.RunID)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "dispatched", got.Results[0].Outcome)
	assert.Equal(t, "blacklist_v6", got.Results[1].Action.Set)
	assert.Equal(t, int64(18000), got.Results[1].Action.TTLSeconds)
}

func TestFileReporter_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.YML")
	r := NewFileReporter(path)
	assert.Equal(t, "yaml", r.Format())
	require.NoError(t, r.Report(sampleSummary()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "TCP/BLOCKED", got["filter"])
	assert.Equal(t, 2, got["violations"])
	assert.Contains(t, string(data), "ttl_seconds: 18000")
}

func TestFileReporter_BadPath(t *testing.T) {
	r := NewFileReporter(filepath.Join(t.TempDir(), "nope", "report.json"))
	assert.Error(t, r.Report(sampleSummary()))
}

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsoleReporter(&buf).Report(sampleSummary()))

	out := buf.String()
	assert.Contains(t, out, "pyrewall scan")
	assert.Contains(t, out, "1.2.3.4")
	assert.Contains(t, out, "2001:db8::1")
	assert.Contains(t, out, "blacklist_v6")
	assert.Contains(t, out, "set does not exist")
	assert.NotContains(t, out, "\x1b[31mset")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestRenderSummary_DryRunNoResults(t *testing.T) {
	s := sampleSummary()
	s.DryRun = true
	s.Results = nil

	out := RenderSummary(s)
	assert.Contains(t, out, "(dry run)")
	assert.NotContains(t, out, "dispatched")
}
