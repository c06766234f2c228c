/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

// Larger frames end the connection like any other transport failure.
const maxMessageSize = 1 << 20

// session handles the messages of one connection. Its fields are only
// touched by that connection's read loop, so messages from a single client
// are applied in the order they arrive.
type session struct {
	cfg      *Config
	rooms    *RoomStore
	registry *Registry
	clientID string
	roomID   string
}

func newSession(cfg *Config, rooms *RoomStore, registry *Registry, clientID string) *session {
	return &session{
		cfg:      cfg,
		rooms:    rooms,
		registry: registry,
		clientID: clientID,
	}
}

func (s *session) reply(msg any) {
	s.registry.Send(s.clientID, msg)
}

func (s *session) replyRoomNotFound() {
	s.reply(ErrorMessage{
		Type:    "error",
		Message: roomNotFoundText,
	})
}

// handle decodes and applies one inbound frame. Nothing a client sends can
// end the connection from here.
func (s *session) handle(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logf(s.cfg, "CONN: Malformed message from %s: %v", s.clientID, err)
		return
	}

	switch msg.Type {
	case msgCreateRoom:
		s.createRoom(msg)
	case msgJoinRoom:
		s.joinRoom(msg)
	case msgListRooms:
		s.listRooms()
	case msgStartGame:
		s.startGame()
	case msgPlayerUpdate:
		s.playerUpdate(msg)
	case msgFootprintCreated:
		s.footprintCreated(msg)
	case msgCatchPlayer:
		s.catchPlayer(msg)
	default:
		logf(s.cfg, "CONN: Ignoring message of type %q from %s", msg.Type, s.clientID)
	}
}

func (s *session) createRoom(msg ClientMessage) {
	roomID := s.rooms.CreateRoom(msg.RoomName)

	s.reply(RoomCreatedMessage{
		Type:   "room_created",
		RoomID: roomID,
	})
}

func (s *session) joinRoom(msg ClientMessage) {
	if _, err := s.rooms.Room(msg.RoomID); err != nil {
		s.replyRoomNotFound()
		return
	}

	if s.roomID != "" && s.roomID != msg.RoomID {
		s.leave()
	}

	if _, err := s.rooms.Join(msg.RoomID, s.clientID, msg.Username, msg.Color); err != nil {
		// The room emptied out while we were leaving our old one.
		s.replyRoomNotFound()
		return
	}

	s.roomID = msg.RoomID
}

func (s *session) listRooms() {
	s.reply(RoomListMessage{
		Type:  "room_list",
		Rooms: s.rooms.ListRooms(),
	})
}

func (s *session) startGame() {
	if s.roomID == "" {
		s.replyRoomNotFound()
		return
	}

	if err := s.rooms.Start(s.roomID); err != nil {
		s.replyRoomNotFound()
	}
}

func (s *session) playerUpdate(msg ClientMessage) {
	if msg.X == nil || msg.Y == nil || msg.Angle == nil {
		logf(s.cfg, "CONN: Incomplete player_update from %s", s.clientID)
		return
	}
	if s.roomID == "" {
		return
	}

	err := s.rooms.UpdatePosition(s.roomID, s.clientID, *msg.X, *msg.Y, *msg.Angle, msg.IsRunning)
	if err != nil {
		logf(s.cfg, "CONN: Dropped player_update from %s: %v", s.clientID, err)
	}
}

func (s *session) footprintCreated(msg ClientMessage) {
	if len(msg.Footprint) == 0 {
		logf(s.cfg, "CONN: Incomplete footprint_created from %s", s.clientID)
		return
	}
	if s.roomID == "" {
		return
	}

	if err := s.rooms.Relay(s.roomID, s.clientID, msg.Footprint); err != nil {
		logf(s.cfg, "CONN: Dropped footprint_created from %s: %v", s.clientID, err)
	}
}

func (s *session) catchPlayer(msg ClientMessage) {
	if msg.CaughtPlayerID == "" {
		logf(s.cfg, "CONN: Incomplete catch_player from %s", s.clientID)
		return
	}
	if s.roomID == "" {
		s.replyRoomNotFound()
		return
	}

	err := s.rooms.ApplyTag(s.roomID, s.clientID, msg.CaughtPlayerID)
	switch {
	case errors.Is(err, ErrRoomNotFound):
		s.replyRoomNotFound()
	case err != nil:
		logf(s.cfg, "CONN: Rejected catch of %s by %s: %v", msg.CaughtPlayerID, s.clientID, err)
	}
}

// leave takes the client out of its current room, if any.
func (s *session) leave() {
	if s.roomID == "" {
		return
	}

	if err := s.rooms.Leave(s.roomID, s.clientID); err != nil {
		logf(s.cfg, "CONN: Leaving %s for %s: %v", s.roomID, s.clientID, err)
	}

	s.roomID = ""
}

// readPump feeds frames to the session until the peer goes away, then runs
// the disconnect path exactly once.
func (c *Client) readPump(cfg *Config, s *session) {
	defer func() {
		s.leave()
		s.registry.Unregister(c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(cfg.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.pongWait()))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logf(cfg, "CONN: Read from %s failed: %v", c.id, err)
			}
			return
		}

		// Any frame proves the peer is alive.
		_ = c.conn.SetReadDeadline(time.Now().Add(cfg.pongWait()))

		s.handle(data)
	}
}
