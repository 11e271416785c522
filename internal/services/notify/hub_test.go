package notify

import (
	"context"
	"testing"
	"time"

	"github.com/inkduel/inkduel-go/internal/model"
	"github.com/inkduel/inkduel-go/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "balance_changed",
			data:      `{"review_tokens":2}`,
			expected:  "event: balance_changed\ndata: {\"review_tokens\":2}\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "challenge_result",
			data:      "line1\nline2",
			expected:  "event: challenge_result\ndata: line1\ndata: line2\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatSSEMessage(tt.eventName, tt.data)
			if string(result) != tt.expected {
				t.Errorf("formatSSEMessage(%q, %q)\ngot:  %q\nwant: %q",
					tt.eventName, tt.data, string(result), tt.expected)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "single line",
			input:    "hello",
			expected: []string{"hello"},
		},
		{
			name:     "two lines",
			input:    "line1\nline2",
			expected: []string{"line1", "line2"},
		},
		{
			name:     "trailing newline",
			input:    "line1\n",
			expected: []string{"line1"},
		},
		{
			name:     "empty string",
			input:    "",
			expected: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitLines(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("splitLines(%q) returned %d lines, want %d",
					tt.input, len(result), len(tt.expected))
				return
			}
			for i, line := range result {
				if line != tt.expected[i] {
					t.Errorf("splitLines(%q)[%d] = %q, want %q",
						tt.input, i, line, tt.expected[i])
				}
			}
		})
	}
}

func TestHub_SendReachesOnlyTargetPlayer(t *testing.T) {
	hub := NewHub("proj-1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	alice := NewClient(hub, "alice")
	bob := NewClient(hub, "bob")
	hub.Register(alice)
	hub.Register(bob)

	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 2 {
		t.Errorf("ClientCount() = %d, want 2", hub.ClientCount())
	}

	hub.Send("alice", "challenge_incoming", "data")

	select {
	case msg := <-alice.send:
		expected := "event: challenge_incoming\ndata: data\n\n"
		if string(msg) != expected {
			t.Errorf("alice received %q, want %q", string(msg), expected)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("alice did not receive message")
	}

	select {
	case msg := <-bob.send:
		t.Errorf("bob received %q, want nothing", string(msg))
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SendReachesAllConnectionsOfPlayer(t *testing.T) {
	hub := NewHub("proj-1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	// Same player on two devices
	first := NewClient(hub, "alice")
	second := NewClient(hub, "alice")
	hub.Register(first)
	hub.Register(second)

	time.Sleep(10 * time.Millisecond)

	hub.Send("alice", "balance_changed", "data")

	for i, client := range []*Client{first, second} {
		select {
		case <-client.send:
		case <-time.After(100 * time.Millisecond):
			t.Errorf("connection %d did not receive message", i+1)
		}
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub("proj-1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "alice")
	hub.Register(client)

	time.Sleep(10 * time.Millisecond)

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after unregister, want 0", hub.ClientCount())
	}
}

func TestHubManager_GetOrCreateHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Shutdown()

	hub1 := manager.GetOrCreateHub("proj-1")
	if hub1 == nil {
		t.Fatal("GetOrCreateHub returned nil")
	}

	hub2 := manager.GetOrCreateHub("proj-1")
	if hub1 != hub2 {
		t.Error("GetOrCreateHub returned different hub for same project")
	}

	hub3 := manager.GetOrCreateHub("proj-2")
	if hub3 == hub1 {
		t.Error("GetOrCreateHub returned same hub for different project")
	}
}

func TestHubManager_GetHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Shutdown()

	if manager.GetHub("proj-1") != nil {
		t.Error("GetHub returned non-nil for non-existent hub")
	}

	created := manager.GetOrCreateHub("proj-1")
	if manager.GetHub("proj-1") != created {
		t.Error("GetHub returned different hub than GetOrCreateHub")
	}
}

func TestSSENotifier_DeliversEvent(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Shutdown()

	hub := manager.GetOrCreateHub("proj-1")
	client := NewClient(hub, "alice")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	notifier := NewSSENotifier(manager, testutil.NopLogger())
	notifier.Notify(context.Background(), "proj-1", "alice", model.Event{
		Kind:        model.EventBalanceChanged,
		ProjectCode: "proj-1",
		Payload:     map[string]any{"review_tokens": 2},
	})

	select {
	case msg := <-client.send:
		if got := string(msg); got == "" ||
			got[:len("event: balance_changed")] != "event: balance_changed" {
			t.Errorf("unexpected message: %q", got)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive event")
	}
}

func TestSSENotifier_NoHubIsNoOp(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	notifier := NewSSENotifier(manager, testutil.NopLogger())

	// Must not panic or block when no hub exists for the project
	notifier.Notify(context.Background(), "proj-1", "alice", model.Event{
		Kind: model.EventBalanceChanged,
	})
}
