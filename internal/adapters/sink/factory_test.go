package sink

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrinfinityjs/pyrewall/internal/domain"
)

func TestConfigFromViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := ConfigFromViper()
	require.NoError(t, err)
	assert.Equal(t, BackendIPSet, cfg.Backend)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)

	viper.Set("sink.backend", "NFT")
	viper.Set("sink.timeout", "2m")
	cfg, err = ConfigFromViper()
	require.NoError(t, err)
	assert.Equal(t, BackendNft, cfg.Backend)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)

	viper.Set("sink.timeout", "soon")
	_, err = ConfigFromViper()
	assert.True(t, errors.Is(err, domain.ErrInvalidDuration))
}

func TestNew(t *testing.T) {
	s, err := New(Config{Backend: BackendIPSet})
	require.NoError(t, err)
	assert.Equal(t, "ipset", s.Name())

	s, err = New(Config{Backend: BackendNft})
	require.NoError(t, err)
	assert.Equal(t, "nft", s.Name())

	s, err = New(Config{Backend: BackendCommand, Command: "logger {address}"})
	require.NoError(t, err)
	assert.Equal(t, "command", s.Name())

	var cfgErr *domain.ConfigValidationError
	_, err = New(Config{Backend: BackendCommand})
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "sink.command", cfgErr.Field)

	_, err = New(Config{Backend: BackendNATS})
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "sink.nats.url", cfgErr.Field)

	_, err = New(Config{Backend: "iptables"})
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "sink.backend", cfgErr.Field)
}
