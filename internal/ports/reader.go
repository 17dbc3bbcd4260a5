package ports

import (
	"context"

	"github.com/mrinfinityjs/pyrewall/internal/domain"
)

// LineSource yields the raw lines of one closed batch. The lines channel is
// closed once the source is exhausted. A source that cannot be opened returns
// an error wrapping domain.ErrSourceUnavailable before any line is produced.
type LineSource interface {
	Lines(ctx context.Context) (<-chan string, <-chan error, error)
	Name() string
}

// EventExtractor turns one raw line into an event. Every line that does not
// produce an event yields an error wrapping domain.ErrParseSkip.
type EventExtractor interface {
	Extract(line string, filter domain.Filter) (domain.Event, error)
	Format() string
}
