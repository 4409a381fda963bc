package transfer

import (
	"fmt"
	"time"
)

// Config holds the protocol tunables shared by every phase of a session.
type Config struct {
	// ChunkSize is the largest slice of firmware written per TCP send.
	ChunkSize int `json:"chunk_size"`

	// DiscoveryTimeout bounds the wait for the identify reply.
	DiscoveryTimeout time.Duration `json:"discovery_timeout"`
	// SettleDelay is the pause between the identify reply and the transfer,
	// the device needs it to start its TCP client.
	SettleDelay time.Duration `json:"settle_delay"`

	// AcceptTimeout and IOTimeout bound the TCP phase. Zero waits forever.
	AcceptTimeout time.Duration `json:"accept_timeout"`
	IOTimeout     time.Duration `json:"io_timeout"`

	// ListenHost is the local address the TCP listener binds to; empty means all interfaces.
	ListenHost string `json:"listen_host"`
	// ProbeTTL sets the IP TTL of the identify datagram. Zero keeps the OS default.
	ProbeTTL int `json:"probe_ttl"`

	EventBufferSize int `json:"event_buffer_size"`
}

const (
	DefaultChunkSize        = 1024
	MaxChunkSize            = 1024
	DefaultDiscoveryTimeout = 3 * time.Second
	DefaultSettleDelay      = 1 * time.Second
)

// DefaultConfig returns the configuration the device firmware expects.
func DefaultConfig() *Config {
	return &Config{
		ChunkSize:        DefaultChunkSize,
		DiscoveryTimeout: DefaultDiscoveryTimeout,
		SettleDelay:      DefaultSettleDelay,
		EventBufferSize:  64,
	}
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 || c.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: chunk_size must be between 1 and %d", ErrInvalidConfiguration, MaxChunkSize)
	}
	if c.DiscoveryTimeout <= 0 {
		return fmt.Errorf("%w: discovery_timeout must be positive", ErrInvalidConfiguration)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("%w: settle_delay cannot be negative", ErrInvalidConfiguration)
	}
	if c.AcceptTimeout < 0 || c.IOTimeout < 0 {
		return fmt.Errorf("%w: timeouts cannot be negative", ErrInvalidConfiguration)
	}
	if c.ProbeTTL < 0 || c.ProbeTTL > 255 {
		return fmt.Errorf("%w: probe_ttl must be between 0 and 255", ErrInvalidConfiguration)
	}
	if c.EventBufferSize <= 0 {
		return fmt.Errorf("%w: event_buffer_size must be positive", ErrInvalidConfiguration)
	}
	return nil
}
