/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/rand"
	"encoding/json"
	"math"
	mrand "math/rand/v2"
	"slices"
	"sort"
	"sync"
)

const (
	roomIDLength = 8
	roomIDChars  = "abcdefghijklmnopqrstuvwxyz0123456789"

	spawnWidth  = 800
	spawnHeight = 600
)

var defaultColors = []string{"blue", "green", "yellow", "purple", "orange", "cyan", "magenta"}

// Broadcaster delivers messages to clients by ID. *Registry is the only
// production implementation.
type Broadcaster interface {
	Send(clientID string, msg any)
	Broadcast(members []string, msg any, exclude string)
}

// Member is a room's view of a connected client. Position fields are
// whatever the client last reported.
type Member struct {
	ID        string
	Username  string
	X         float64
	Y         float64
	Angle     float64
	Color     string
	IsRunning bool
}

// Room is guarded by its own mutex. Every mutation, and the broadcast it
// triggers, happens while holding it.
type Room struct {
	mu      sync.Mutex
	id      string
	name    string
	members []*Member
	ebeID   string
	started bool
	closed  bool
}

func (r *Room) memberIDsLocked() []string {
	ids := make([]string, len(r.members))
	for i, m := range r.members {
		ids[i] = m.ID
	}
	return ids
}

func (r *Room) memberLocked(clientID string) *Member {
	for _, m := range r.members {
		if m.ID == clientID {
			return m
		}
	}
	return nil
}

func (r *Room) playerLocked(m *Member) Player {
	return Player{
		ID:       m.ID,
		Username: m.Username,
		X:        m.X,
		Y:        m.Y,
		Angle:    m.Angle,
		Color:    m.Color,
		IsEbe:    m.ID == r.ebeID,
	}
}

func (r *Room) playersLocked() []Player {
	players := make([]Player, len(r.members))
	for i, m := range r.members {
		players[i] = r.playerLocked(m)
	}
	return players
}

// RoomSnapshot is a copy of a room's state at one instant.
type RoomSnapshot struct {
	ID      string
	Name    string
	Players []Player
	EbeID   string
	Started bool
}

// JoinResult is what a newly joined member is told.
type JoinResult struct {
	RoomID  string
	IsEbe   bool
	Players []Player
	Started bool
}

// RoomStore owns every room. Lock order is always store, then room.
type RoomStore struct {
	mu          sync.RWMutex
	rooms       map[string]*Room
	out         Broadcaster
	cfg         *Config
	catchRadius float64
}

func newRoomStore(cfg *Config, out Broadcaster) *RoomStore {
	return &RoomStore{
		rooms:       make(map[string]*Room),
		out:         out,
		cfg:         cfg,
		catchRadius: cfg.catchRadius,
	}
}

// newRoomIDLocked generates a crypto-random room ID that no live room uses.
func (s *RoomStore) newRoomIDLocked() string {
	for {
		buf := make([]byte, roomIDLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, roomIDLength)
		for i := range out {
			out[i] = roomIDChars[int(buf[i])%len(roomIDChars)]
		}
		id := string(out)

		if _, exists := s.rooms[id]; !exists {
			return id
		}
	}
}

func (s *RoomStore) CreateRoom(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newRoomIDLocked()
	if name == "" {
		name = "Oda " + id
	}

	s.rooms[id] = &Room{
		id:   id,
		name: name,
	}

	logf(s.cfg, "ROOMS: Created %s (%q)", id, name)

	return id
}

// lookup returns the room with its lock held. A room that was emptied is
// reported as missing even if a caller still had a pointer to it.
func (s *RoomStore) lookup(roomID string) (*Room, error) {
	s.mu.RLock()
	room, ok := s.rooms[roomID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrRoomNotFound
	}

	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return nil, ErrRoomNotFound
	}

	return room, nil
}

func (s *RoomStore) Room(roomID string) (RoomSnapshot, error) {
	room, err := s.lookup(roomID)
	if err != nil {
		return RoomSnapshot{}, err
	}
	defer room.mu.Unlock()

	return RoomSnapshot{
		ID:      room.id,
		Name:    room.name,
		Players: room.playersLocked(),
		EbeID:   room.ebeID,
		Started: room.started,
	}, nil
}

// ListRooms returns a snapshot of every live room, ordered by ID.
func (s *RoomStore) ListRooms() []RoomInfo {
	s.mu.RLock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	s.mu.RUnlock()

	out := make([]RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		room.mu.Lock()
		if !room.closed {
			out = append(out, RoomInfo{
				ID:          room.id,
				Name:        room.name,
				PlayerCount: len(room.members),
				GameStarted: room.started,
			})
		}
		room.mu.Unlock()
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out
}

// Join adds clientID to the room at a random spot. The newcomer receives
// room_joined with every member; everyone else receives player_joined.
func (s *RoomStore) Join(roomID, clientID, username, color string) (JoinResult, error) {
	room, err := s.lookup(roomID)
	if err != nil {
		return JoinResult{}, err
	}
	defer room.mu.Unlock()

	if username == "" {
		username = "Oyuncu " + clientID
	}
	if color == "" {
		color = defaultColors[mrand.IntN(len(defaultColors))]
	}

	m := room.memberLocked(clientID)
	isNew := m == nil
	if isNew {
		m = &Member{
			ID:       clientID,
			Username: username,
			X:        mrand.Float64() * spawnWidth,
			Y:        mrand.Float64() * spawnHeight,
			Color:    color,
		}
		room.members = append(room.members, m)
	}

	members := room.memberIDsLocked()
	room.ebeID = ebeAfterJoin(room.ebeID, members)

	result := JoinResult{
		RoomID:  room.id,
		IsEbe:   room.ebeID == clientID,
		Players: room.playersLocked(),
		Started: room.started,
	}

	s.out.Send(clientID, RoomJoinedMessage{
		Type:        "room_joined",
		RoomID:      result.RoomID,
		IsEbe:       result.IsEbe,
		Players:     result.Players,
		GameStarted: result.Started,
	})

	if isNew {
		s.out.Broadcast(members, PlayerJoinedMessage{
			Type:   "player_joined",
			Player: room.playerLocked(m),
		}, clientID)
	}

	logf(s.cfg, "ROOMS: %s joined %s as %q (%d players)", clientID, room.id, m.Username, len(members))

	return result, nil
}

// Leave removes clientID from the room. A departing ebe is replaced by the
// first remaining member, and an emptied room is destroyed on the spot.
func (s *RoomStore) Leave(roomID, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	idx := slices.IndexFunc(room.members, func(m *Member) bool {
		return m.ID == clientID
	})
	if idx < 0 {
		return ErrNotMember
	}

	room.members = slices.Delete(room.members, idx, idx+1)
	remaining := room.memberIDsLocked()

	s.out.Broadcast(remaining, PlayerLeftMessage{
		Type:     "player_left",
		ClientID: clientID,
	}, "")

	ebeID, changed := ebeAfterLeave(room.ebeID, clientID, remaining)
	room.ebeID = ebeID
	if changed && ebeID != "" {
		s.out.Broadcast(remaining, NewEbeMessage{
			Type:  "new_ebe",
			EbeID: ebeID,
		}, "")

		logf(s.cfg, "ROOMS: %s is now ebe in %s", ebeID, room.id)
	}

	logf(s.cfg, "ROOMS: %s left %s (%d players)", clientID, room.id, len(remaining))

	if len(remaining) == 0 {
		room.closed = true
		delete(s.rooms, roomID)

		logf(s.cfg, "ROOMS: Removed empty room %s", room.id)
	}

	return nil
}

// Start marks the game as running. Repeated calls only repeat the
// announcement.
func (s *RoomStore) Start(roomID string) error {
	room, err := s.lookup(roomID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	room.started = true

	s.out.Broadcast(room.memberIDsLocked(), GameStartedMessage{
		Type: "game_started",
	}, "")

	logf(s.cfg, "ROOMS: Game started in %s", room.id)

	return nil
}

// UpdatePosition stores what the client reports about itself, unchecked, and
// forwards it to the other members.
func (s *RoomStore) UpdatePosition(roomID, clientID string, x, y, angle float64, running bool) error {
	room, err := s.lookup(roomID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	m := room.memberLocked(clientID)
	if m == nil {
		return ErrNotMember
	}

	m.X, m.Y, m.Angle, m.IsRunning = x, y, angle, running

	s.out.Broadcast(room.memberIDsLocked(), PlayerPositionMessage{
		Type:      "player_position",
		ID:        clientID,
		X:         x,
		Y:         y,
		Angle:     angle,
		IsRunning: running,
	}, clientID)

	return nil
}

// Relay forwards an opaque footprint payload from clientID to the other
// members.
func (s *RoomStore) Relay(roomID, clientID string, footprint json.RawMessage) error {
	room, err := s.lookup(roomID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	if room.memberLocked(clientID) == nil {
		return ErrNotMember
	}

	s.out.Broadcast(room.memberIDsLocked(), FootprintMessage{
		Type:      "footprint_created",
		Footprint: footprint,
	}, clientID)

	return nil
}

// ApplyTag hands the it-role to caughtID on taggerID's word. When a catch
// radius is configured the tagger must be the current ebe, and the two must
// be within that distance of each other by their last reported positions.
func (s *RoomStore) ApplyTag(roomID, taggerID, caughtID string) error {
	room, err := s.lookup(roomID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	if s.catchRadius > 0 {
		tagger := room.memberLocked(taggerID)
		caught := room.memberLocked(caughtID)
		if tagger == nil || caught == nil {
			return ErrNotMember
		}
		if taggerID != room.ebeID {
			return ErrNotEbe
		}
		if math.Hypot(tagger.X-caught.X, tagger.Y-caught.Y) > s.catchRadius {
			return ErrTooFar
		}
	}

	oldEbeID := room.ebeID
	ebeID, err := ebeAfterTag(oldEbeID, room.memberIDsLocked(), caughtID)
	if err != nil {
		return err
	}
	room.ebeID = ebeID

	s.out.Broadcast(room.memberIDsLocked(), NewEbeMessage{
		Type:     "new_ebe",
		OldEbeID: oldEbeID,
		EbeID:    ebeID,
	}, "")

	logf(s.cfg, "ROOMS: %s tagged %s in %s", taggerID, caughtID, room.id)

	return nil
}

// Len reports how many rooms are live.
func (s *RoomStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.rooms)
}
