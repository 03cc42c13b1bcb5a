/*
Copyright © 2026 KmFahimHossain
*/

package main

import "time"

const (
	// Fuse bounds: shorter on the first pairing, wider on restarts.
	fuseInitialMin = 10 * time.Second
	fuseInitialMax = 20 * time.Second
	fuseRestartMin = 10 * time.Second
	fuseRestartMax = 70 * time.Second
)

// PotatoState is the hot potato payload of a Room. The fuse handle and
// its generation never leave the server.
type PotatoState struct {
	Current    int
	Status     RoomStatus
	Winner     *int
	ExplodesAt int64
	ShowTimer  bool

	fuseGen int
	fuse    Timer
}

// CreateHotPotatoRoom allocates a fresh hot potato room. The fuse is
// not armed until the second participant joins.
func (s *RoomService) CreateHotPotatoRoom(showTimer bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := &Room{
		Game: GameHotPotato,
		Potato: &PotatoState{
			Status:    StatusWaiting,
			ShowTimer: showTimer,
		},
	}

	return s.insertLocked(room)
}

// armFuseLocked schedules the explosion a uniformly random duration
// from [min, max] away. Arming always replaces the previous fuse, so a
// stale timer can never fire against a room that has moved on.
func (s *RoomService) armFuseLocked(room *Room, min, max time.Duration) {
	st := room.Potato

	duration := min + time.Duration(s.rng.Int63n(int64(max-min)+1))
	st.ExplodesAt = s.clock.Now().Add(duration).UnixMilli()

	st.fuseGen++
	if st.fuse != nil {
		st.fuse.Stop()
	}

	gen := st.fuseGen
	roomID := room.ID
	st.fuse = s.clock.AfterFunc(duration, func() {
		s.fuseExpired(roomID, gen)
	})

	logf(s.cfg, "GAMES: Hot potato fuse in %s armed for %s", roomID, duration.Round(time.Millisecond))
}

// fuseExpired ends the round if the room is still playing the round
// the fuse was armed for. The holder at expiry loses.
func (s *RoomService) fuseExpired(roomID string, gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.lookupLocked(roomID, GameHotPotato)
	if err != nil {
		return
	}
	st := room.Potato

	if st.fuseGen != gen || st.Status != StatusPlaying {
		return
	}
	st.fuse = nil

	s.touchLocked(room)
	st.Status = StatusFinished
	winner := 1 - st.Current
	st.Winner = &winner

	logf(s.cfg, "GAMES: Hot potato in %s exploded on player %d", roomID, st.Current)

	s.broadcastUpdateLocked(room)
}

// PotatoPass hands the potato to the other participant. Only the
// current holder may pass; the fuse keeps ticking.
func (s *RoomService) PotatoPass(roomID, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.lookupLocked(roomID, GameHotPotato)
	if err != nil {
		return err
	}
	st := room.Potato

	if st.Status != StatusPlaying {
		return ErrNotPlaying
	}

	playerIndex := room.playerIndex(connID)
	if playerIndex == -1 {
		return ErrNotParticipant
	}
	if st.Current != playerIndex {
		return ErrNotYourTurn
	}

	s.touchLocked(room)
	st.Current = 1 - st.Current

	s.broadcastUpdateLocked(room)

	return nil
}

// PotatoRestart starts a new round in the same room with a fresh fuse.
func (s *RoomService) PotatoRestart(roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.lookupLocked(roomID, GameHotPotato)
	if err != nil {
		return err
	}
	st := room.Potato

	s.touchLocked(room)

	st.Current = 0
	st.Winner = nil

	if len(room.Players) == maxPlayers {
		st.Status = StatusPlaying
	} else {
		st.Status = StatusWaiting
	}

	s.armFuseLocked(room, fuseRestartMin, fuseRestartMax)
	s.broadcastUpdateLocked(room)

	return nil
}
