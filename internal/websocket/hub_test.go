package websocket

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func runHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(zerolog.New(&bytes.Buffer{}))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func testClient(hub *Hub, id string, buf int) *Client {
	return &Client{id: id, hub: hub, send: make(chan []byte, buf)}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatalf("%s did not receive message", c.id)
		return nil
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	if hub.clients == nil {
		t.Error("expected clients map to be initialized")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("expected hub channels to be initialized")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}
}

func TestHubClientCount(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	hub.mu.Lock()
	hub.clients[&Client{id: "test1"}] = struct{}{}
	hub.clients[&Client{id: "test2"}] = struct{}{}
	hub.mu.Unlock()

	if hub.ClientCount() != 2 {
		t.Errorf("expected 2 clients, got %d", hub.ClientCount())
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub, _ := runHub(t)
	client := testClient(hub, "test-client", 1)

	if !hub.Register(client) {
		t.Fatal("expected register to succeed on a running hub")
	}
	waitForClients(t, hub, 1)

	hub.Unregister(client)
	waitForClients(t, hub, 0)

	if _, ok := <-client.send; ok {
		t.Error("expected send channel to be closed after unregister")
	}
}

func TestHubBroadcastToMultipleClients(t *testing.T) {
	hub, _ := runHub(t)

	client1 := testClient(hub, "client1", 10)
	client2 := testClient(hub, "client2", 10)
	hub.Register(client1)
	hub.Register(client2)
	waitForClients(t, hub, 2)

	message := []byte(`{"type":"shift_clock","entries":[]}`)
	hub.Broadcast(message)

	for _, c := range []*Client{client1, client2} {
		if msg := receive(t, c); string(msg) != string(message) {
			t.Errorf("%s expected %s, got %s", c.id, message, msg)
		}
	}
}

func TestHubReplaysLatestOnRegister(t *testing.T) {
	hub, _ := runHub(t)

	early := testClient(hub, "early", 4)
	hub.Register(early)
	waitForClients(t, hub, 1)

	hub.Broadcast([]byte(`{"nowOffset":1}`))
	hub.Broadcast([]byte(`{"nowOffset":2}`))
	receive(t, early)
	receive(t, early)

	late := testClient(hub, "late", 4)
	hub.Register(late)

	if msg := receive(t, late); string(msg) != `{"nowOffset":2}` {
		t.Errorf("expected latest snapshot on register, got %s", msg)
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	slow := testClient(hub, "slow", 0)
	fast := testClient(hub, "fast", 1)

	hub.mu.Lock()
	hub.clients[slow] = struct{}{}
	hub.clients[fast] = struct{}{}
	hub.mu.Unlock()

	hub.fanOut([]byte(`{"type":"shift_clock"}`))

	if hub.ClientCount() != 1 {
		t.Fatalf("expected slow client to be dropped, got %d clients", hub.ClientCount())
	}
	if _, ok := <-slow.send; ok {
		t.Error("expected slow client's send channel to be closed")
	}

	select {
	case msg := <-fast.send:
		if string(msg) != `{"type":"shift_clock"}` {
			t.Errorf("unexpected message %s", msg)
		}
	default:
		t.Error("fast client did not receive message")
	}
}

func TestHubUnregisterUnknownClient(t *testing.T) {
	hub, _ := runHub(t)

	hub.Unregister(testClient(hub, "ghost", 0))

	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}
}

func TestHubStopDisconnectsClients(t *testing.T) {
	hub, cancel := runHub(t)

	client := testClient(hub, "c1", 1)
	hub.Register(client)
	waitForClients(t, hub, 1)

	cancel()

	select {
	case <-hub.done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop after context cancel")
	}

	if hub.ClientCount() != 0 {
		t.Errorf("expected clients removed on stop, got %d", hub.ClientCount())
	}
	if _, ok := <-client.send; ok {
		t.Error("expected send channel to be closed on stop")
	}

	if hub.Register(testClient(hub, "c2", 1)) {
		t.Error("expected register to fail on a stopped hub")
	}

	done := make(chan struct{})
	go func() {
		hub.Broadcast([]byte("x"))
		hub.Unregister(client)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub calls blocked after stop")
	}
}
