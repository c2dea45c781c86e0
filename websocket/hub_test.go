package websocket

import (
	"testing"
	"time"
)

func TestHubBroadcastReachesRegisteredClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.register <- client

	hub.Broadcast([]byte("event"))

	select {
	case msg := <-client.send:
		if string(msg) != "event" {
			t.Errorf("Expected event payload, got %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for broadcast")
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.register <- client
	hub.unregister <- client

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("Expected send channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for channel close")
	}
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := &Client{hub: hub, send: make(chan []byte, 1)}
	slow.send <- []byte("backlog") // buffer full, next delivery cannot proceed
	hub.register <- slow

	hub.Broadcast([]byte("dropped"))

	// Give the hub time to attempt delivery and tear the client down.
	time.Sleep(100 * time.Millisecond)

	if msg := <-slow.send; string(msg) != "backlog" {
		t.Fatalf("Expected backlog message, got %q", msg)
	}
	select {
	case _, ok := <-slow.send:
		if ok {
			t.Error("Expected slow client send channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for slow client teardown")
	}
}
