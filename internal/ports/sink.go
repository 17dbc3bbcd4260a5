// Package ports defines the interfaces between the scan pipeline and the
// infrastructure around it.
//
// Adapters live in internal/adapters/ and the pipeline in internal/app only
// sees these contracts.
package ports

import (
	"context"
	"time"

	"github.com/mrinfinityjs/pyrewall/internal/domain"
)

// BlocklistSink enforces a time-limited block on one address.
//
// Contract:
//   - Insert is called once per violation; the caller never retries
//   - With dryRun set the sink reports the intended action and changes nothing
//   - Failures are returned as *domain.SinkError and are never fatal to a run
type BlocklistSink interface {
	Insert(ctx context.Context, set, address string, ttl time.Duration, dryRun bool) error
	Name() string
}

// ScanObserver receives pipeline events for metrics collection.
//
// Thread Safety: Implementations MUST be safe for concurrent calls.
type ScanObserver interface {
	// ObserveLine records the result of one line: "matched", or the skip reason.
	ObserveLine(result string)

	// ObserveAction records the outcome of one dispatched violation.
	ObserveAction(result domain.ActionResult)

	// ObserveScan records how long the scan stage took and how many
	// addresses it examined.
	ObserveScan(addresses int, elapsed time.Duration)
}

// Reporter renders a finished run.
type Reporter interface {
	Report(summary domain.ScanSummary) error
}
