package keepalive

import (
	"context"
	"time"

	"github.com/vinayprograms/mcpkeep/credentials"
	"github.com/vinayprograms/mcpkeep/logging"
	"github.com/vinayprograms/mcpkeep/mcp"
)

// Strategy identifies the resolved heartbeat mechanism for a session.
type Strategy string

const (
	// StrategyAuto defers selection until after the handshake.
	StrategyAuto Strategy = "auto"

	// StrategyProbeOp calls a reserved heartbeat tool. Cheapest and
	// side-effect-free when the server cooperates.
	StrategyProbeOp Strategy = "probe-op"

	// StrategyResourceRead reads a known resource. May be costlier.
	StrategyResourceRead Strategy = "resource-read"

	// StrategyCapabilityList re-lists tools. The universal fallback:
	// available on any live session without server cooperation.
	StrategyCapabilityList Strategy = "capability-list"

	// StrategyDisabled means selection found the session already dead;
	// no scheduler runs.
	StrategyDisabled Strategy = "disabled"
)

// Reserved heartbeat tool names. Servers may implement either.
const (
	probeToolPrimary = "ping"
	probeToolAlias   = "heartbeat"
)

// Defaults.
const (
	DefaultInterval    = 30 * time.Second
	DefaultMaxFailures = 3

	// defaultWarmup delays the first probe after the handshake so probing
	// never races session establishment.
	defaultWarmup = 10 * time.Second
)

// Session is the surface keepalive needs from a connected MCP session.
// *mcp.Client satisfies it.
type Session interface {
	Connect(ctx context.Context) error
	ListTools(ctx context.Context) ([]mcp.Tool, error)
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.ToolCallResult, error)
	ListResources(ctx context.Context) ([]mcp.Resource, error)
	ReadResource(ctx context.Context, uri string) (*mcp.ResourceContent, error)
	Close() error
}

// Config configures keep-alive for one wrapped session.
// Immutable once the session is wrapped.
type Config struct {
	// Interval between probes.
	// Default: 30 seconds.
	Interval time.Duration

	// MaxFailures is the consecutive-failure threshold that disables
	// probing. Default: 3.
	MaxFailures int

	// Debug surfaces per-probe diagnostics in logs.
	Debug bool

	// Strategy pins the heartbeat mechanism instead of probing the
	// session's capabilities. Default: StrategyAuto.
	Strategy Strategy

	// Force enables keep-alive even when the endpoint does not classify
	// as platform-managed.
	Force bool

	// Endpoint is the session's remote address, used for classification
	// only. The wrapper never dials it.
	Endpoint string

	// Credentials optionally mark the session as platform-backed when
	// the endpoint alone does not (self-hosted gateways).
	Credentials *credentials.Bundle

	// Logger receives keep-alive diagnostics. Default: logging.New().
	Logger *logging.Logger
}

func (c *Config) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.MaxFailures <= 0 {
		c.MaxFailures = DefaultMaxFailures
	}
	if c.Strategy == "" {
		c.Strategy = StrategyAuto
	}
}

// Status is a point-in-time snapshot of a wrapped session's keep-alive state.
type Status struct {
	// Enabled reports whether keep-alive applies to this session at all.
	// False when classification rejected the endpoint and Force was off.
	Enabled bool

	// Active reports whether the scheduler currently has a probe armed
	// or in flight.
	Active bool

	// Strategy is the resolved mechanism; StrategyAuto until resolution.
	Strategy Strategy

	// FailureCount is the current consecutive-failure count.
	FailureCount int

	// LastSuccessAt is the time of the last successful probe; zero if none.
	LastSuccessAt time.Time

	// Reason explains why keep-alive is disabled, when it is.
	Reason string

	// SessionID identifies the wrapped session.
	SessionID string
}
