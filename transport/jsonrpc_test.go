package transport

import (
	"encoding/json"
	"testing"
)

func TestNewRequest(t *testing.T) {
	req := NewRequest(7, "tools/list", nil)
	if req.JSONRPC != "2.0" {
		t.Errorf("jsonrpc = %q, want 2.0", req.JSONRPC)
	}
	if req.ID != 7 {
		t.Errorf("id = %d, want 7", req.ID)
	}
	if req.Method != "tools/list" {
		t.Errorf("method = %q", req.Method)
	}
}

func TestNewNotification(t *testing.T) {
	n := NewNotification("notifications/initialized", nil)
	if n.JSONRPC != "2.0" {
		t.Errorf("jsonrpc = %q, want 2.0", n.JSONRPC)
	}

	// Notifications must not carry an id on the wire.
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]interface{}
	json.Unmarshal(data, &m)
	if _, ok := m["id"]; ok {
		t.Errorf("notification should not have id: %s", data)
	}
}

func TestParseResponse_Result(t *testing.T) {
	raw := json.RawMessage(`{"jsonrpc":"2.0","id":3,"result":{"tools":[]}}`)
	resp, ok := ParseResponse(raw)
	if !ok {
		t.Fatal("expected response")
	}
	if resp.ID != 3 {
		t.Errorf("id = %d, want 3", resp.ID)
	}
	if resp.Error != nil {
		t.Errorf("unexpected error: %v", resp.Error)
	}
}

func TestParseResponse_Error(t *testing.T) {
	raw := json.RawMessage(`{"jsonrpc":"2.0","id":5,"error":{"code":-32601,"message":"Method not found"}}`)
	resp, ok := ParseResponse(raw)
	if !ok {
		t.Fatal("expected response")
	}
	if resp.Error == nil {
		t.Fatal("expected RPC error")
	}
	if resp.Error.Code != MethodNotFound {
		t.Errorf("code = %d, want %d", resp.Error.Code, MethodNotFound)
	}
	if got := resp.Error.Error(); got != "RPC error -32601: Method not found" {
		t.Errorf("unexpected error string: %s", got)
	}
}

func TestParseResponse_NotAResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"server request", `{"jsonrpc":"2.0","id":1,"method":"sampling/createMessage"}`},
		{"notification", `{"jsonrpc":"2.0","method":"notifications/progress"}`},
		{"null id", `{"jsonrpc":"2.0","id":null,"result":{}}`},
		{"invalid json", `{nope}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ParseResponse(json.RawMessage(tt.raw)); ok {
				t.Errorf("ParseResponse(%s) should not yield a response", tt.raw)
			}
		})
	}
}
