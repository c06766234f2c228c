/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Client is one live websocket connection. Everything written to it goes
// through send, which is drained by writePump; gorilla connections only
// support a single concurrent writer.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan any

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn, buffer int) *Client {
	return &Client{
		conn: conn,
		send: make(chan any, buffer),
	}
}

// enqueue queues msg without blocking. A client whose queue is full is
// treated as gone: its queue and connection are closed, so writePump stops
// even if it is stuck mid-write and readPump runs the disconnect path.
func (c *Client) enqueue(msg any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		c.closed = true
		close(c.send)
		if c.conn != nil {
			_ = c.conn.Close()
		}
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) writePump(cfg *Config) {
	ticker := time.NewTicker(cfg.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				logf(cfg, "CONN: Write to %s failed: %v", c.id, err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Registry maps client IDs to their connections. Rooms only ever hold IDs;
// all delivery is routed through here.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	cfg     *Config
}

func newRegistry(cfg *Config) *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		cfg:     cfg,
	}
}

// Register assigns c a fresh ID and greets it with a connected message.
func (r *Registry) Register(c *Client) string {
	r.mu.Lock()
	id := uuid.NewString()
	for {
		if _, taken := r.clients[id]; !taken {
			break
		}
		id = uuid.NewString()
	}
	c.id = id
	r.clients[id] = c
	total := len(r.clients)
	r.mu.Unlock()

	logf(r.cfg, "CONN: Registered %s (%d connected)", id, total)

	r.Send(id, ConnectedMessage{
		Type:     "connected",
		ClientID: id,
	})

	return id
}

// Send queues msg for the named client. Unknown and closed clients are
// skipped; they may have hung up between the caller's decision and now.
func (r *Registry) Send(clientID string, msg any) {
	r.mu.RLock()
	c, ok := r.clients[clientID]
	r.mu.RUnlock()

	if !ok {
		return
	}

	if !c.enqueue(msg) {
		logf(r.cfg, "CONN: Dropped message for %s", clientID)
	}
}

// Broadcast sends msg to every ID in members except exclude.
func (r *Registry) Broadcast(members []string, msg any, exclude string) {
	for _, id := range members {
		if id == exclude {
			continue
		}
		r.Send(id, msg)
	}
}

// Unregister forgets clientID and closes its queue. Calling it again is a
// no-op.
func (r *Registry) Unregister(clientID string) {
	r.mu.Lock()
	c, ok := r.clients[clientID]
	delete(r.clients, clientID)
	total := len(r.clients)
	r.mu.Unlock()

	if !ok {
		return
	}

	c.close()

	logf(r.cfg, "CONN: Unregistered %s (%d connected)", clientID, total)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.clients)
}
