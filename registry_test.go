/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
)

// newQueuedClient returns a client with no transport, for tests that only
// look at what gets queued.
func newQueuedClient(buffer int) *Client {
	return newClient(nil, buffer)
}

func drain(c *Client) []any {
	var out []any
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return out
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestRegisterSendsConnected(t *testing.T) {
	r := newRegistry(testConfig())
	c := newQueuedClient(8)

	id := r.Register(c)
	if id == "" || c.id != id {
		t.Fatalf("client id not assigned: %q / %q", id, c.id)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 client, got %d", r.Len())
	}

	msgs := drain(c)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
	if got, ok := msgs[0].(ConnectedMessage); !ok || got.ClientID != id || got.Type != "connected" {
		t.Errorf("unexpected greeting %#v", msgs[0])
	}
}

func TestRegisterAssignsDistinctIDs(t *testing.T) {
	r := newRegistry(testConfig())

	seen := map[string]bool{}
	for range 100 {
		id := r.Register(newQueuedClient(4))
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestSendUnknownClientIsNoop(t *testing.T) {
	r := newRegistry(testConfig())

	r.Send("nobody", GameStartedMessage{Type: "game_started"})
}

func TestBroadcastExcludes(t *testing.T) {
	r := newRegistry(testConfig())
	a, b, c := newQueuedClient(8), newQueuedClient(8), newQueuedClient(8)
	ids := []string{r.Register(a), r.Register(b), r.Register(c)}
	drain(a)
	drain(b)
	drain(c)

	r.Broadcast(ids, GameStartedMessage{Type: "game_started"}, ids[1])

	if len(drain(a)) != 1 || len(drain(c)) != 1 {
		t.Error("members did not receive broadcast")
	}
	if len(drain(b)) != 0 {
		t.Error("excluded member received broadcast")
	}
}

func TestSlowConsumerIsDroppedWithoutBlocking(t *testing.T) {
	r := newRegistry(testConfig())
	slow := newQueuedClient(1)
	fast := newQueuedClient(8)
	slowID := r.Register(slow) // fills the queue with "connected"
	fastID := r.Register(fast)
	drain(fast)

	r.Broadcast([]string{slowID, fastID}, GameStartedMessage{Type: "game_started"}, "")

	if got := drain(fast); len(got) != 1 {
		t.Errorf("healthy member got %d messages", len(got))
	}

	// The overflowing message closed the slow client's queue.
	if _, ok := <-slow.send; !ok {
		t.Fatal("expected the queued greeting before close")
	}
	if _, ok := <-slow.send; ok {
		t.Fatal("slow client queue should be closed")
	}

	// Further sends must not panic on the closed queue.
	r.Send(slowID, GameStartedMessage{Type: "game_started"})
}

func TestUnregisterIsIdempotent(t *testing.T) {
	r := newRegistry(testConfig())
	c := newQueuedClient(8)
	id := r.Register(c)

	r.Unregister(id)
	r.Unregister(id)

	if r.Len() != 0 {
		t.Errorf("expected no clients, got %d", r.Len())
	}

	drain(c)
	if _, ok := <-c.send; ok {
		t.Error("queue should be closed after unregister")
	}

	r.Send(id, GameStartedMessage{Type: "game_started"})
}
