// Package mcp provides an MCP (Model Context Protocol) client over a
// pluggable transport. MCP allows connecting to external tool servers.
package mcp

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/vinayprograms/mcpkeep/errors"
	"github.com/vinayprograms/mcpkeep/transport"
)

// protocolVersion is the MCP protocol revision this client speaks.
const protocolVersion = "2024-11-05"

// Client is an MCP client that connects to tool servers.
type Client struct {
	transport transport.Transport
	sessionID string

	id      atomic.Int64
	pending map[int64]chan *transport.Response
	pendMu  sync.Mutex

	toolsMu sync.RWMutex
	tools   []Tool

	ready  atomic.Bool
	closed chan struct{}
}

// NewClient creates a client over an established transport and starts
// routing responses. Call Connect to perform the handshake.
func NewClient(t transport.Transport) *Client {
	c := &Client{
		transport: t,
		sessionID: uuid.NewString(),
		pending:   make(map[int64]chan *transport.Response),
		closed:    make(chan struct{}),
	}

	go c.dispatch()
	return c
}

// SessionID returns the client-side identifier for this session.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Connect performs the MCP initialization handshake.
func (c *Client) Connect(ctx context.Context) error {
	result, err := c.call(ctx, "initialize", map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]interface{}{},
		"clientInfo": map[string]interface{}{
			"name":    "mcpkeep",
			"version": "1.0.0",
		},
	})
	if err != nil {
		return errors.Wrap(err, "initialize failed", errors.WithSessionID(c.sessionID))
	}
	_ = result // Could parse server capabilities

	// Send initialized notification
	c.notify("notifications/initialized", nil)

	c.ready.Store(true)
	return nil
}

// ListTools fetches available tools from the server.
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	if !c.ready.Load() {
		return nil, errors.NotInitialized("client not initialized", errors.WithSessionID(c.sessionID))
	}

	result, err := c.call(ctx, "tools/list", nil)
	if err != nil {
		return nil, err
	}

	var listResult ToolsListResult
	if err := json.Unmarshal(result, &listResult); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeProtocol, "failed to parse tools list")
	}

	c.toolsMu.Lock()
	c.tools = listResult.Tools
	c.toolsMu.Unlock()
	return listResult.Tools, nil
}

// CallTool invokes a tool on the server.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]interface{}) (*ToolCallResult, error) {
	if !c.ready.Load() {
		return nil, errors.NotInitialized("client not initialized", errors.WithSessionID(c.sessionID))
	}

	result, err := c.call(ctx, "tools/call", ToolCallParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil, err
	}

	var callResult ToolCallResult
	if err := json.Unmarshal(result, &callResult); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeProtocol, "failed to parse tool result")
	}

	return &callResult, nil
}

// ListResources fetches available resources from the server.
func (c *Client) ListResources(ctx context.Context) ([]Resource, error) {
	if !c.ready.Load() {
		return nil, errors.NotInitialized("client not initialized", errors.WithSessionID(c.sessionID))
	}

	result, err := c.call(ctx, "resources/list", nil)
	if err != nil {
		return nil, err
	}

	var listResult ResourcesListResult
	if err := json.Unmarshal(result, &listResult); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeProtocol, "failed to parse resources list")
	}

	return listResult.Resources, nil
}

// ReadResource reads a resource's contents by URI.
func (c *Client) ReadResource(ctx context.Context, uri string) (*ResourceContent, error) {
	if !c.ready.Load() {
		return nil, errors.NotInitialized("client not initialized", errors.WithSessionID(c.sessionID))
	}

	result, err := c.call(ctx, "resources/read", ResourceReadParams{URI: uri})
	if err != nil {
		return nil, err
	}

	var readResult ResourceReadResult
	if err := json.Unmarshal(result, &readResult); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeProtocol, "failed to parse resource contents")
	}
	if len(readResult.Contents) == 0 {
		return nil, errors.NotFound("resource has no contents", errors.WithMetadata("uri", uri))
	}
	return &readResult.Contents[0], nil
}

// Tools returns cached tools from the last ListTools call.
func (c *Client) Tools() []Tool {
	c.toolsMu.RLock()
	defer c.toolsMu.RUnlock()
	return c.tools
}

// Close shuts down the underlying transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

func (c *Client) call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	id := c.id.Add(1)

	respCh := make(chan *transport.Response, 1)
	c.pendMu.Lock()
	c.pending[id] = respCh
	c.pendMu.Unlock()

	defer func() {
		c.pendMu.Lock()
		delete(c.pending, id)
		c.pendMu.Unlock()
	}()

	if err := c.transport.Send(transport.NewRequest(id, method, params)); err != nil {
		return nil, err
	}

	select {
	case resp := <-respCh:
		if resp.Error != nil {
			return nil, rpcToSessionError(resp.Error, c.sessionID)
		}
		return resp.Result, nil
	case <-c.closed:
		return nil, errors.SessionClosed("transport closed while awaiting response",
			errors.WithSessionID(c.sessionID), errors.WithMetadata("method", method))
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "call "+method)
	}
}

func (c *Client) notify(method string, params interface{}) error {
	return c.transport.Send(transport.NewNotification(method, params))
}

// dispatch routes inbound response frames to pending calls. Server-initiated
// requests and notifications are ignored; this client is request/response only.
func (c *Client) dispatch() {
	defer close(c.closed)

	for frame := range c.transport.Recv() {
		resp, ok := transport.ParseResponse(frame)
		if !ok {
			continue
		}

		c.pendMu.Lock()
		ch, ok := c.pending[resp.ID]
		c.pendMu.Unlock()

		if ok {
			ch <- resp
		}
	}
}

// rpcToSessionError maps a JSON-RPC error onto the structured taxonomy.
func rpcToSessionError(rpcErr *transport.Error, sessionID string) error {
	code := errors.ErrCodeInternal
	switch rpcErr.Code {
	case transport.MethodNotFound:
		code = errors.ErrCodeNotFound
	case transport.InvalidParams, transport.InvalidRequest:
		code = errors.ErrCodeInvalidInput
	case transport.ParseError:
		code = errors.ErrCodeProtocol
	}
	return errors.WrapWithCode(rpcErr, code, rpcErr.Message, errors.WithSessionID(sessionID))
}
