/*
Copyright © 2026 KmFahimHossain
*/

package main

import (
	"context"
	"crypto/rand"
	mrand "math/rand"
	"sync"
	"time"
)

type GameKind string

const (
	GameTicTacToe GameKind = "tictactoe"
	GameNim       GameKind = "nim"
	GameHotPotato GameKind = "hotpotato"
)

type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
)

const (
	maxPlayers   = 2
	roomIDLength = 6

	symbolX = "X"
	symbolO = "O"
)

// symbolFor maps a participant slot to its symbol. Slot 0 is always X
// and the first mover; the mapping is fixed for the lifetime of a room.
func symbolFor(index int) string {
	if index == 0 {
		return symbolX
	}
	return symbolO
}

// Room is one authoritative match instance. All fields are guarded by
// the owning RoomService mutex; exactly one of the game payloads is
// non-nil, matching Game.
type Room struct {
	ID      string
	Game    GameKind
	Players []string

	TTT    *TTTState
	Nim    *NimState
	Potato *PotatoState

	lastActive time.Time
}

// Sender delivers an outbound message to a single connection. The
// websocket layer implements it over per-client send channels; tests
// substitute a recording fake. Send must never block.
type Sender interface {
	Send(connID string, msg any)
}

// RoomService owns every live room. All mutations run under a single
// mutex in short, non-blocking sections, so per-room operations are
// serialized in arrival order. Time and randomness are injected so the
// service can be constructed per test run.
type RoomService struct {
	mu     sync.Mutex
	cfg    *Config
	clock  Clock
	rng    *mrand.Rand
	sender Sender
	rooms  map[string]*Room
}

func newRoomService(cfg *Config, clock Clock, rng *mrand.Rand, sender Sender) *RoomService {
	return &RoomService{
		cfg:    cfg,
		clock:  clock,
		rng:    rng,
		sender: sender,
		rooms:  make(map[string]*Room),
	}
}

// newRoomIDLocked generates a short random room token, retrying on the
// rare collision with a live room.
func (s *RoomService) newRoomIDLocked() string {
	const letters = "0123456789abcdefghijklmnopqrstuvwxyz"
	for {
		buf := make([]byte, roomIDLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, roomIDLength)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		if _, exists := s.rooms[id]; !exists {
			return id
		}
	}
}

func (s *RoomService) insertLocked(room *Room) string {
	room.ID = s.newRoomIDLocked()
	room.lastActive = s.clock.Now()
	s.rooms[room.ID] = room

	logf(s.cfg, "ROOMS: Created %s room %s", room.Game, room.ID)

	return room.ID
}

// lookupLocked treats a game-kind mismatch the same as a missing room,
// so a nim client can never mutate a tic-tac-toe room with its id.
func (s *RoomService) lookupLocked(roomID string, kind GameKind) (*Room, error) {
	room, ok := s.rooms[roomID]
	if !ok || room.Game != kind {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (s *RoomService) touchLocked(room *Room) {
	room.lastActive = s.clock.Now()
}

func (room *Room) playerIndex(connID string) int {
	for i, id := range room.Players {
		if id == connID {
			return i
		}
	}
	return -1
}

// JoinRoom appends a connection to a room. The second join flips the
// room to playing, and for hot potato arms the first fuse.
func (s *RoomService) JoinRoom(kind GameKind, roomID, connID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.lookupLocked(roomID, kind)
	if err != nil {
		return 0, err
	}
	if len(room.Players) >= maxPlayers {
		return 0, ErrRoomFull
	}

	s.touchLocked(room)
	room.Players = append(room.Players, connID)
	index := len(room.Players) - 1

	if len(room.Players) == maxPlayers {
		switch kind {
		case GameTicTacToe:
			room.TTT.Status = StatusPlaying
		case GameNim:
			room.Nim.Status = StatusPlaying
		case GameHotPotato:
			room.Potato.Status = StatusPlaying
			s.armFuseLocked(room, fuseInitialMin, fuseInitialMax)
		}
	}

	logf(s.cfg, "ROOMS: Connection %s joined %s room %s as player %d", connID, kind, roomID, index)

	if kind == GameTicTacToe {
		s.sender.Send(connID, tttRoomJoinedMessage{
			Type:    "ttt:roomJoined",
			RoomID:  roomID,
			Index:   index,
			Players: len(room.Players),
		})
		s.broadcastLocked(room, tttPlayersMessage{
			Type:    "ttt:players",
			Players: len(room.Players),
		})
	}

	s.broadcastUpdateLocked(room)

	return index, nil
}

// LeaveRoom removes a connection from a single room on explicit request.
func (s *RoomService) LeaveRoom(kind GameKind, roomID, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.lookupLocked(roomID, kind)
	if err != nil {
		return err
	}

	s.removePlayerLocked(room, connID)

	return nil
}

// Disconnect removes a closed connection from every room containing it.
// Rooms it leaves behind revert to waiting; emptied rooms are dropped.
func (s *RoomService) Disconnect(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, room := range s.rooms {
		if room.playerIndex(connID) != -1 {
			s.removePlayerLocked(room, connID)
		}
	}
}

// removePlayerLocked reverts the room to a non-playable state, cancels
// any scheduled timer so a stale callback cannot touch the room later,
// and evicts the room once nobody is left in it.
func (s *RoomService) removePlayerLocked(room *Room, connID string) {
	index := room.playerIndex(connID)
	if index == -1 {
		return
	}

	s.touchLocked(room)
	room.Players = append(room.Players[:index], room.Players[index+1:]...)
	s.cancelTimersLocked(room)

	switch room.Game {
	case GameTicTacToe:
		room.TTT.Status = StatusWaiting
	case GameNim:
		room.Nim.Status = StatusWaiting
	case GameHotPotato:
		room.Potato.Status = StatusWaiting
	}

	logf(s.cfg, "ROOMS: Connection %s left %s room %s", connID, room.Game, room.ID)

	if len(room.Players) == 0 {
		delete(s.rooms, room.ID)
		logf(s.cfg, "ROOMS: Dropped empty %s room %s", room.Game, room.ID)
		return
	}

	if room.Game == GameTicTacToe {
		s.broadcastLocked(room, tttPlayersMessage{
			Type:    "ttt:players",
			Players: len(room.Players),
		})
	}

	s.broadcastUpdateLocked(room)
}

// cancelTimersLocked bumps the room's timer generations and stops any
// scheduled callback. A callback that already fired re-checks its
// generation under the lock and becomes a no-op.
func (s *RoomService) cancelTimersLocked(room *Room) {
	switch room.Game {
	case GameTicTacToe:
		room.TTT.advanceGen++
		if room.TTT.advance != nil {
			room.TTT.advance.Stop()
			room.TTT.advance = nil
		}
	case GameHotPotato:
		room.Potato.fuseGen++
		if room.Potato.fuse != nil {
			room.Potato.fuse.Stop()
			room.Potato.fuse = nil
		}
	}
}

func (s *RoomService) broadcastLocked(room *Room, msg any) {
	for _, connID := range room.Players {
		s.sender.Send(connID, msg)
	}
}

// broadcastUpdateLocked emits the canonical full-state snapshot for the
// room. Every state-changing operation ends here, so a client that
// missed an earlier update self-heals on the next one.
func (s *RoomService) broadcastUpdateLocked(room *Room) {
	s.broadcastLocked(room, room.updateMessage())
}

func (room *Room) updateMessage() any {
	switch room.Game {
	case GameTicTacToe:
		return tttUpdateMessage(room)
	case GameNim:
		return nimUpdateMessage(room)
	default:
		return potatoUpdateMessage(room)
	}
}

// Projection returns the full-state snapshot used both for broadcasts
// and for join/rematch acknowledgements.
func (s *RoomService) Projection(kind GameKind, roomID string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.lookupLocked(roomID, kind)
	if err != nil {
		return nil, err
	}

	return room.updateMessage(), nil
}

// reapIdle drops every room idle since before cutoff and reports how
// many were evicted.
func (s *RoomService) reapIdle(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	reaped := 0
	for id, room := range s.rooms {
		if room.lastActive.Before(cutoff) {
			s.cancelTimersLocked(room)
			delete(s.rooms, id)
			reaped++

			logf(s.cfg, "ROOMS: Reaped idle %s room %s", room.Game, id)
		}
	}

	return reaped
}

// reaperLoop periodically evicts rooms idle longer than the configured
// session timeout.
func (s *RoomService) reaperLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.sessionTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reapIdle(s.clock.Now().Add(-s.cfg.sessionTimeout))
		}
	}
}

func (s *RoomService) roomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.rooms)
}
