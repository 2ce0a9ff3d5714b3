// Package transport provides client-side framing for JSON-RPC 2.0
// communication with MCP servers.
//
// The Transport interface carries whole JSON frames over various backends
// (stdio subprocess, WebSocket) while the mcp package handles request
// correlation and protocol semantics.
package transport

import (
	"encoding/json"

	"github.com/vinayprograms/mcpkeep/errors"
)

// ErrClosed is returned when sending on a closed transport.
var ErrClosed = errors.SessionClosed("transport closed")

// Transport provides bidirectional JSON frame passing.
type Transport interface {
	// Send marshals and writes one frame.
	// Returns ErrClosed if the transport is closed.
	Send(msg interface{}) error

	// Recv returns the channel of incoming raw frames.
	// The channel is closed when the transport shuts down.
	Recv() <-chan json.RawMessage

	// Close initiates shutdown. Idempotent.
	Close() error
}

// Config holds common transport configuration.
type Config struct {
	// RecvBufferSize is the capacity of the receive channel.
	RecvBufferSize int

	// MaxFrameSize limits the size of a single inbound frame in bytes.
	MaxFrameSize int
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RecvBufferSize: 64,
		MaxFrameSize:   1024 * 1024, // 1MB
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.RecvBufferSize <= 0 {
		c.RecvBufferSize = def.RecvBufferSize
	}
	if c.MaxFrameSize <= 0 {
		c.MaxFrameSize = def.MaxFrameSize
	}
}
