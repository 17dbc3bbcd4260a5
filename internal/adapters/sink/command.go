package sink

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"
)

// CommandSink runs a user-supplied command per address. The template is
// split like a shell would, then {set}, {address} and {ttl} are substituted
// in every argument. No shell is involved, so addresses cannot inject.
type CommandSink struct {
	template []string
	timeout  time.Duration
	run      runner
}

func NewCommandSink(template string, timeout time.Duration) (*CommandSink, error) {
	parts, err := shlex.Split(template)
	if err != nil {
		return nil, fmt.Errorf("parsing sink command %q: %w", template, err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("sink command is empty")
	}
	return &CommandSink{template: parts, timeout: timeout, run: execRunner}, nil
}

func (s *CommandSink) Name() string {
	return "command"
}

func (s *CommandSink) Insert(ctx context.Context, set, address string, ttl time.Duration, dryRun bool) error {
	argv := s.expand(set, address, ttl)
	if dryRun {
		logDryRun(s.Name(), set, address, ttl)
		return nil
	}
	return runTool(ctx, s.run, s.timeout, set, address, argv[0], argv[1:]...)
}

func (s *CommandSink) expand(set, address string, ttl time.Duration) []string {
	r := strings.NewReplacer(
		"{set}", set,
		"{address}", address,
		"{ttl}", strconv.FormatInt(int64(ttl/time.Second), 10),
	)
	argv := make([]string, len(s.template))
	for i, part := range s.template {
		argv[i] = r.Replace(part)
	}
	return argv
}
