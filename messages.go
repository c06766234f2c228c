/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import "encoding/json"

// Inbound message types.
const (
	msgCreateRoom       = "create_room"
	msgJoinRoom         = "join_room"
	msgListRooms        = "list_rooms"
	msgStartGame        = "start_game"
	msgPlayerUpdate     = "player_update"
	msgFootprintCreated = "footprint_created"
	msgCatchPlayer      = "catch_player"
)

// ClientMessage is every message a browser may send. Type selects which of
// the remaining fields are meaningful.
type ClientMessage struct {
	Type           string          `json:"type"`
	RoomName       string          `json:"roomName,omitempty"`       // create_room
	RoomID         string          `json:"roomId,omitempty"`         // join_room
	Username       string          `json:"username,omitempty"`       // join_room
	Color          string          `json:"color,omitempty"`          // join_room
	X              *float64        `json:"x,omitempty"`              // player_update
	Y              *float64        `json:"y,omitempty"`              // player_update
	Angle          *float64        `json:"angle,omitempty"`          // player_update
	IsRunning      bool            `json:"isRunning,omitempty"`      // player_update
	Footprint      json.RawMessage `json:"footprint,omitempty"`      // footprint_created
	CaughtPlayerID string          `json:"caughtPlayerId,omitempty"` // catch_player
}

// Player is the wire view of a room member.
type Player struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Angle    float64 `json:"angle"`
	Color    string  `json:"color"`
	IsEbe    bool    `json:"isEbe"`
}

// RoomInfo is one entry of a room listing.
type RoomInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PlayerCount int    `json:"playerCount"`
	GameStarted bool   `json:"gameStarted"`
}

type ConnectedMessage struct {
	Type     string `json:"type"` // "connected"
	ClientID string `json:"clientId"`
}

type RoomCreatedMessage struct {
	Type   string `json:"type"` // "room_created"
	RoomID string `json:"roomId"`
}

// RoomJoinedMessage carries every current member so the newcomer can draw
// players that joined before it.
type RoomJoinedMessage struct {
	Type        string   `json:"type"` // "room_joined"
	RoomID      string   `json:"roomId"`
	IsEbe       bool     `json:"isEbe"`
	Players     []Player `json:"players"`
	GameStarted bool     `json:"gameStarted"`
}

type PlayerJoinedMessage struct {
	Type   string `json:"type"` // "player_joined"
	Player Player `json:"player"`
}

type PlayerLeftMessage struct {
	Type     string `json:"type"` // "player_left"
	ClientID string `json:"clientId"`
}

type RoomListMessage struct {
	Type  string     `json:"type"` // "room_list"
	Rooms []RoomInfo `json:"rooms"`
}

type GameStartedMessage struct {
	Type string `json:"type"` // "game_started"
}

type PlayerPositionMessage struct {
	Type      string  `json:"type"` // "player_position"
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Angle     float64 `json:"angle"`
	IsRunning bool    `json:"isRunning"`
}

type FootprintMessage struct {
	Type      string          `json:"type"` // "footprint_created"
	Footprint json.RawMessage `json:"footprint"`
}

// NewEbeMessage announces a change of the it-role. OldEbeID is only set when
// the change came from a tag.
type NewEbeMessage struct {
	Type     string `json:"type"` // "new_ebe"
	OldEbeID string `json:"oldEbeId,omitempty"`
	EbeID    string `json:"ebeId"`
}

type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}
