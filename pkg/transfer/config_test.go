package transfer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 1024, cfg.ChunkSize)
	assert.Equal(t, 3*time.Second, cfg.DiscoveryTimeout)
	assert.Equal(t, time.Second, cfg.SettleDelay)
	assert.Zero(t, cfg.AcceptTimeout, "accept must wait forever by default")
	assert.Zero(t, cfg.IOTimeout, "socket io must wait forever by default")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"Zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"Chunk larger than device buffer", func(c *Config) { c.ChunkSize = 4096 }},
		{"Zero discovery timeout", func(c *Config) { c.DiscoveryTimeout = 0 }},
		{"Negative settle delay", func(c *Config) { c.SettleDelay = -time.Second }},
		{"Negative accept timeout", func(c *Config) { c.AcceptTimeout = -1 }},
		{"Negative io timeout", func(c *Config) { c.IOTimeout = -1 }},
		{"TTL too large", func(c *Config) { c.ProbeTTL = 256 }},
		{"No event buffer", func(c *Config) { c.EventBufferSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfiguration)
		})
	}
}
