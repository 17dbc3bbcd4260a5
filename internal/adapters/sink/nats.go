package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/mrinfinityjs/pyrewall/internal/domain"
)

// DefaultSubject prefixes every published block action; the set name is
// appended as the last token.
const DefaultSubject = "pyrewall.block"

type publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// NATSSink publishes block actions for a remote worker to enforce, one
// message per address on "<subject>.<set>".
type NATSSink struct {
	conn    publisher
	nc      *nats.Conn
	subject string
	timeout time.Duration
}

func NewNATSSink(url, subject string, timeout time.Duration) (*NATSSink, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	nc, err := nats.Connect(url,
		nats.Name("pyrewall"),
		nats.Timeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	log.Info().Str("url", url).Str("subject", subject).Msg("Connected to NATS")
	return &NATSSink{conn: nc, nc: nc, subject: subject, timeout: timeout}, nil
}

func (s *NATSSink) Name() string {
	return "nats"
}

func (s *NATSSink) Insert(ctx context.Context, set, address string, ttl time.Duration, dryRun bool) error {
	_, family, err := domain.ClassifyAddress(address)
	if err != nil {
		return &domain.SinkError{Set: set, Address: address, Reason: "invalid address", Err: err}
	}
	if dryRun {
		logDryRun(s.Name(), set, address, ttl)
		return nil
	}

	data, err := json.Marshal(domain.BlockAction{
		Address: address,
		Family:  family,
		SetName: set,
		TTL:     ttl,
	})
	if err != nil {
		return &domain.SinkError{Set: set, Address: address, Reason: "encoding block action", Err: err}
	}

	subject := s.subject + "." + set
	if err := s.conn.Publish(subject, data); err != nil {
		return &domain.SinkError{Set: set, Address: address, Reason: "publish to " + subject, Err: err}
	}

	timeout := s.timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.conn.FlushWithContext(ctx); err != nil {
		return &domain.SinkError{Set: set, Address: address, Reason: "flush to NATS", Err: err}
	}
	return nil
}

// Close drains and closes the NATS connection.
func (s *NATSSink) Close() error {
	if s.nc == nil {
		return nil
	}
	if err := s.nc.Drain(); err != nil {
		return err
	}
	log.Info().Msg("NATS connection drained and closed")
	return nil
}
