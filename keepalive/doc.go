// Package keepalive keeps long-lived MCP client sessions warm against a
// platform that silently drops idle connections.
//
// # Overview
//
// A bare session client has no notion of "keep this connection alive". This
// package wraps an existing session and issues cheap background probes at a
// fixed cadence, self-disabling after consecutive failures. Probing is
// best-effort and advisory: it never blocks, delays, or fails application
// calls, and it never closes or reconnects the underlying session.
//
// # Architecture
//
//	┌─────────────┐  Connect (forwarded)   ┌──────────────┐
//	│ application │ ─────────────────────> │ KeptSession  │ ──> session
//	└─────────────┘                        │  ┌─────────┐ │
//	                                       │  │scheduler│ │  probes at
//	                                       │  └─────────┘ │  Interval
//	                                       └──────────────┘
//
// After a successful handshake and a warm-up delay, the wrapper picks the
// cheapest viable heartbeat mechanism by inspecting the session's
// capabilities, in order of preference:
//
//  1. probe-op — the server exposes a reserved "ping" (or "heartbeat") tool
//  2. resource-read — the server lists at least one readable resource
//  3. capability-list — re-listing tools, always available on a live session
//
// # Usage
//
//	kept := keepalive.Wrap(client, keepalive.Config{
//	    Endpoint: "wss://api.agentgrid.io/mcp",
//	    Interval: 30 * time.Second,
//	})
//	if err := kept.Connect(ctx); err != nil {
//	    // handshake failed; keep-alive never started
//	}
//	// ... use kept exactly like the original session ...
//	st := kept.Status() // {Enabled, Active, Strategy, FailureCount, ...}
//	kept.Stop()
//
// # Recommendations
//
//   - Leave Strategy at auto unless the server is known to misreport tools
//   - Set MaxFailures to tolerate the platform's transient blips
//   - Enable Debug to see per-probe diagnostics; they are silent otherwise
package keepalive
