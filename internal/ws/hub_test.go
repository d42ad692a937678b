package ws

import (
	"encoding/json"
	"testing"
	"time"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		send: make(chan []byte, 256),
	}
}

func TestHubRegistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub)

	// Register client
	hub.register <- client

	// Give hub time to process
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if !hub.clients[client] {
		t.Fatal("client not registered")
	}
}

func TestHubUnregistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub)

	// Register client
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	// Unregister client
	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Fatal("client not removed after unregister")
	}

	// Send channel should be closed
	select {
	case _, ok := <-client.send:
		if ok {
			t.Fatal("expected closed send channel")
		}
	default:
		t.Fatal("send channel not closed")
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client1 := mockClient(hub)
	client2 := mockClient(hub)
	client3 := mockClient(hub)

	// Register all clients
	hub.register <- client1
	hub.register <- client2
	hub.register <- client3
	time.Sleep(10 * time.Millisecond)

	// Broadcast event
	testPayload := json.RawMessage(`{"status":"shipped"}`)
	event := Event{
		Type:    "order.status_updated",
		Payload: testPayload,
	}
	hub.BroadcastToAdmins(event)

	// All three clients should receive the message
	clients := []*Client{client1, client2, client3}
	for i, client := range clients {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if received.Type != "order.status_updated" {
				t.Errorf("client%d: expected type 'order.status_updated', got '%s'", i+1, received.Type)
			}
			if string(received.Payload) != string(testPayload) {
				t.Errorf("client%d: expected payload '%s', got '%s'", i+1, testPayload, received.Payload)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestBroadcastWithNoClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Must not block or panic with nobody listening
	hub.BroadcastToAdmins(Event{
		Type:    "order.created",
		Payload: json.RawMessage(`{"test":"data"}`),
	})
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Fatalf("expected 0 clients, got %d", hub.ClientCount())
	}
}

func TestSlowClientDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Client with a full buffer: one-slot channel, pre-filled
	slow := &Client{hub: hub, send: make(chan []byte, 1)}
	slow.send <- []byte("stale")

	fast := mockClient(hub)

	hub.register <- slow
	hub.register <- fast
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastToAdmins(Event{
		Type:    "order.created",
		Payload: json.RawMessage(`{"id":"abc"}`),
	})

	// Fast client still gets the event
	select {
	case <-fast.send:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("fast client did not receive message")
	}

	// Slow client is evicted
	time.Sleep(10 * time.Millisecond)
	if hub.ClientCount() != 1 {
		t.Fatalf("expected slow client to be dropped, have %d clients", hub.ClientCount())
	}
}

func TestEventSerialization(t *testing.T) {
	testCases := []struct {
		name  string
		event Event
	}{
		{
			name: "order created event",
			event: Event{
				Type:    "order.created",
				Payload: json.RawMessage(`{"id":"abc","totalAmount":"59.98"}`),
			},
		},
		{
			name: "order status updated event",
			event: Event{
				Type:    "order.status_updated",
				Payload: json.RawMessage(`{"id":"def","status":"delivered"}`),
			},
		},
		{
			name: "order deleted event",
			event: Event{
				Type:    "order.deleted",
				Payload: json.RawMessage(`{"id":"ghi"}`),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.event)
			if err != nil {
				t.Fatalf("Marshal error: %v", err)
			}

			var decoded Event
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}

			if decoded.Type != tc.event.Type {
				t.Errorf("Type mismatch: got %s, want %s", decoded.Type, tc.event.Type)
			}
			if string(decoded.Payload) != string(tc.event.Payload) {
				t.Errorf("Payload mismatch: got %s, want %s", decoded.Payload, tc.event.Payload)
			}
		})
	}
}
