package sink

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mrinfinityjs/pyrewall/internal/domain"
	"github.com/mrinfinityjs/pyrewall/internal/ports"
)

// Backend names accepted in sink.backend.
const (
	BackendIPSet   = "ipset"
	BackendNft     = "nft"
	BackendCommand = "command"
	BackendNATS    = "nats"
)

// Config selects and configures one blocklist backend.
type Config struct {
	Backend string
	Timeout time.Duration

	NftFamily string
	NftTable  string

	Command string

	NATSURL     string
	NATSSubject string
}

// ConfigFromViper reads the sink.* keys.
func ConfigFromViper() (Config, error) {
	cfg := Config{
		Backend:     strings.ToLower(viper.GetString("sink.backend")),
		NftFamily:   viper.GetString("sink.nft.family"),
		NftTable:    viper.GetString("sink.nft.table"),
		Command:     viper.GetString("sink.command"),
		NATSURL:     viper.GetString("sink.nats.url"),
		NATSSubject: viper.GetString("sink.nats.subject"),
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendIPSet
	}

	cfg.Timeout = DefaultTimeout
	if raw := viper.GetString("sink.timeout"); raw != "" {
		timeout, err := domain.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("sink.timeout: %w", err)
		}
		if timeout <= 0 {
			return Config{}, &domain.ConfigValidationError{Field: "sink.timeout", Value: raw, Reason: "must be positive"}
		}
		cfg.Timeout = timeout
	}
	return cfg, nil
}

// New builds the backend named in cfg. Backends holding a connection also
// implement io.Closer.
func New(cfg Config) (ports.BlocklistSink, error) {
	switch cfg.Backend {
	case BackendIPSet, "":
		return NewIPSetSink(cfg.Timeout), nil
	case BackendNft:
		return NewNftSink(cfg.NftFamily, cfg.NftTable, cfg.Timeout), nil
	case BackendCommand:
		if cfg.Command == "" {
			return nil, &domain.ConfigValidationError{Field: "sink.command", Value: cfg.Command, Reason: "required for the command backend"}
		}
		return NewCommandSink(cfg.Command, cfg.Timeout)
	case BackendNATS:
		if cfg.NATSURL == "" {
			return nil, &domain.ConfigValidationError{Field: "sink.nats.url", Value: cfg.NATSURL, Reason: "required for the nats backend"}
		}
		return NewNATSSink(cfg.NATSURL, cfg.NATSSubject, cfg.Timeout)
	default:
		return nil, &domain.ConfigValidationError{Field: "sink.backend", Value: cfg.Backend, Reason: "must be one of ipset, nft, command, nats"}
	}
}
