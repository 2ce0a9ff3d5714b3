package keepalive

import (
	"context"
	"sort"
	"testing"

	"github.com/vinayprograms/mcpkeep/errors"
)

func TestManager_ConnectAndGet(t *testing.T) {
	m := NewManager()
	defer m.Close()

	kept, err := m.Connect(context.Background(), "search", pingSession(), Config{Force: true})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if kept == nil {
		t.Fatal("Connect returned nil wrapper")
	}

	got, ok := m.Get("search")
	if !ok || got != kept {
		t.Error("Get should return the tracked wrapper")
	}
	if m.Count() != 1 {
		t.Errorf("Count = %d, want 1", m.Count())
	}
}

func TestManager_DuplicateName(t *testing.T) {
	m := NewManager()
	defer m.Close()

	if _, err := m.Connect(context.Background(), "a", pingSession(), Config{Force: true}); err != nil {
		t.Fatalf("first Connect: %v", err)
	}
	if _, err := m.Connect(context.Background(), "a", pingSession(), Config{Force: true}); err == nil {
		t.Error("duplicate name should be rejected")
	}
	if m.Count() != 1 {
		t.Errorf("Count = %d, want 1", m.Count())
	}
}

func TestManager_ConnectFailureClosesSession(t *testing.T) {
	m := NewManager()
	defer m.Close()

	sess := &fakeSession{connectErr: errors.FromCode(errors.ErrCodeNetworkErr)}
	if _, err := m.Connect(context.Background(), "broken", sess, Config{Force: true}); err == nil {
		t.Fatal("handshake failure should surface")
	}
	if m.Count() != 0 {
		t.Error("failed session must not be tracked")
	}
	if sess.count("close") != 1 {
		t.Error("failed session should be closed")
	}
}

func TestManager_Disconnect(t *testing.T) {
	m := NewManager()
	defer m.Close()

	sess := pingSession()
	if _, err := m.Connect(context.Background(), "x", sess, Config{Force: true}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := m.Disconnect("x"); err != nil {
		t.Errorf("Disconnect: %v", err)
	}
	if sess.count("close") != 1 {
		t.Error("Disconnect should close the underlying session")
	}
	if err := m.Disconnect("x"); err == nil {
		t.Error("Disconnect on unknown name should error")
	}
}

func TestManager_StatusesAndNames(t *testing.T) {
	m := NewManager()
	defer m.Close()

	for _, name := range []string{"a", "b"} {
		if _, err := m.Connect(context.Background(), name, pingSession(), Config{Force: true}); err != nil {
			t.Fatalf("Connect %s: %v", name, err)
		}
	}

	statuses := m.Statuses()
	if len(statuses) != 2 {
		t.Fatalf("Statuses len = %d, want 2", len(statuses))
	}
	for name, st := range statuses {
		if !st.Enabled {
			t.Errorf("session %s should be enabled", name)
		}
	}

	names := m.Names()
	sort.Strings(names)
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names = %v", names)
	}
}

func TestManager_StopAllLeavesSessionsOpen(t *testing.T) {
	m := NewManager()
	defer m.Close()

	sess := pingSession()
	kept, err := m.Connect(context.Background(), "x", sess, Config{Force: true})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	kept.Start(context.Background())

	m.StopAll()
	if kept.Status().Active {
		t.Error("StopAll should stop probing")
	}
	if sess.count("close") != 0 {
		t.Error("StopAll must not close sessions")
	}
	if m.Count() != 1 {
		t.Error("StopAll must keep sessions tracked")
	}
}

func TestManager_Close(t *testing.T) {
	m := NewManager()

	a, b := pingSession(), pingSession()
	if _, err := m.Connect(context.Background(), "a", a, Config{Force: true}); err != nil {
		t.Fatalf("Connect a: %v", err)
	}
	if _, err := m.Connect(context.Background(), "b", b, Config{Force: true}); err != nil {
		t.Fatalf("Connect b: %v", err)
	}

	if err := m.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if m.Count() != 0 {
		t.Errorf("Count after Close = %d, want 0", m.Count())
	}
	if a.count("close") != 1 || b.count("close") != 1 {
		t.Error("Close should close every session")
	}
}
