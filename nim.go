/*
Copyright © 2026 KmFahimHossain
*/

package main

import (
	"fmt"

	"github.com/samber/lo"
)

// NimState is the nim payload of a Room. InitialPiles is an immutable
// snapshot of the configured piles, restored on rematch.
type NimState struct {
	Piles           []int
	InitialPiles    []int
	Turn            string
	Status          RoomStatus
	Winner          string
	Scores          ScoreBoard
	CurrentGame     int
	TotalGames      int
	FirstPlayer     string
	LastRoundWinner string
	LastAction      string
}

// nimFinished reports whether the round is over. Normal-play
// convention: the player who empties the last pile wins.
func nimFinished(piles []int) bool {
	return lo.EveryBy(piles, func(p int) bool {
		return p == 0
	})
}

// pileName labels piles A, B, C... for the human-readable action log.
func pileName(index int) string {
	return string(rune('A' + index))
}

// CreateNimRoom allocates a fresh nim room. Empty piles fall back to
// the configured defaults.
func (s *RoomService) CreateNimRoom(piles []int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(piles) == 0 {
		piles = s.cfg.nimPiles
	}

	initial := make([]int, len(piles))
	copy(initial, piles)

	room := &Room{
		Game: GameNim,
		Nim: &NimState{
			Piles:        append([]int(nil), initial...),
			InitialPiles: initial,
			Turn:         symbolX,
			Status:       StatusWaiting,
			CurrentGame:  1,
			TotalGames:   s.cfg.tttRounds,
			FirstPlayer:  symbolX,
		},
	}

	return s.insertLocked(room)
}

// NimMove validates and applies one take. Emptying the last pile
// finishes the round with the mover as winner; the round then waits
// for an explicit rematch rather than auto-advancing.
func (s *RoomService) NimMove(roomID, connID string, pileIndex, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.lookupLocked(roomID, GameNim)
	if err != nil {
		return err
	}
	st := room.Nim

	if st.Status != StatusPlaying {
		return ErrNotPlaying
	}

	playerIndex := room.playerIndex(connID)
	if playerIndex == -1 {
		return ErrNotParticipant
	}

	symbol := symbolFor(playerIndex)
	if st.Turn != symbol {
		return ErrNotYourTurn
	}

	if pileIndex < 0 || pileIndex >= len(st.Piles) {
		return fmt.Errorf("%w: pile index %d out of range", ErrInvalidMove, pileIndex)
	}
	if count < 1 {
		return fmt.Errorf("%w: must take at least one object", ErrInvalidMove)
	}
	if st.Piles[pileIndex] < count {
		return fmt.Errorf("%w: pile %s only has %d objects", ErrInvalidMove, pileName(pileIndex), st.Piles[pileIndex])
	}

	s.touchLocked(room)
	st.Piles[pileIndex] -= count
	st.LastAction = fmt.Sprintf("%s took %d from pile %s", symbol, count, pileName(pileIndex))

	if nimFinished(st.Piles) {
		st.Status = StatusFinished
		st.Winner = symbol
		st.LastRoundWinner = symbol

		switch symbol {
		case symbolX:
			st.Scores.X++
		default:
			st.Scores.O++
		}

		logf(s.cfg, "GAMES: Nim round in %s won by %s", roomID, symbol)

		s.broadcastUpdateLocked(room)
		s.broadcastLocked(room, nimRoundFinishedMessage{
			Type:   "nim:roundFinished",
			Winner: symbol,
		})

		return nil
	}

	st.Turn = otherSymbol(st.Turn)

	s.broadcastUpdateLocked(room)

	return nil
}

// NimRematch restores the initial piles and zeroes the match scores.
func (s *RoomService) NimRematch(roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.lookupLocked(roomID, GameNim)
	if err != nil {
		return err
	}
	st := room.Nim

	s.touchLocked(room)

	st.Piles = append([]int(nil), st.InitialPiles...)
	st.Turn = symbolX
	st.Winner = ""
	st.Scores = ScoreBoard{}
	st.CurrentGame = 1
	st.FirstPlayer = symbolX
	st.LastRoundWinner = ""
	st.LastAction = ""

	if len(room.Players) == maxPlayers {
		st.Status = StatusPlaying
	} else {
		st.Status = StatusWaiting
	}

	s.broadcastUpdateLocked(room)

	return nil
}
