// Package sink holds the blocklist backends. Each one inserts a single
// address into a named, time-limited set and reports failures as
// *domain.SinkError so the dispatcher can carry on with the next address.
package sink

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mrinfinityjs/pyrewall/internal/domain"
)

// DefaultTimeout bounds a single external command.
const DefaultTimeout = 5 * time.Second

// runner executes an external tool and returns its combined output.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// runTool runs one command under a timeout and turns any failure into a
// SinkError for the given set and address.
func runTool(ctx context.Context, run runner, timeout time.Duration, set, address, name string, args ...string) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := run(ctx, name, args...)
	cmdline := name + " " + strings.Join(args, " ")
	if err == nil {
		log.Debug().Str("command", cmdline).Msg("Command succeeded")
		return nil
	}

	sinkErr := &domain.SinkError{Set: set, Address: address, Err: err}
	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, exec.ErrNotFound):
		sinkErr.Reason = name + " command not found"
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		sinkErr.Reason = fmt.Sprintf("%s timed out after %s", name, timeout)
	case errors.As(err, &exitErr):
		sinkErr.Reason = fmt.Sprintf("%s exited with code %d: %s", name, exitErr.ExitCode(), strings.TrimSpace(string(output)))
	default:
		sinkErr.Reason = fmt.Sprintf("%s failed: %s", name, strings.TrimSpace(string(output)))
	}

	log.Debug().Str("command", cmdline).Str("output", string(output)).Msg("Command failed")
	return sinkErr
}

func logDryRun(backend, set, address string, ttl time.Duration) {
	log.Info().
		Str("sink", backend).
		Str("set", set).
		Str("address", address).
		Int64("ttl_seconds", int64(ttl/time.Second)).
		Msg("Dry run, not adding address")
}
