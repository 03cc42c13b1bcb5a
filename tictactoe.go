/*
Copyright © 2026 KmFahimHossain
*/

package main

import (
	"fmt"

	"github.com/samber/lo"
)

// ScoreBoard tracks cumulative round results for one match.
type ScoreBoard struct {
	X    int `json:"X"`
	O    int `json:"O"`
	Draw int `json:"draw"`
}

// TTTState is the tic-tac-toe payload of a Room.
type TTTState struct {
	Board           [9]string
	Turn            string
	Status          RoomStatus
	Winner          string
	WinningLine     []int
	Scores          ScoreBoard
	CurrentGame     int
	TotalGames      int
	FirstPlayer     string
	LastRoundWinner string

	advanceGen int
	advance    Timer
}

// The 8 fixed lines: 3 rows, 3 columns, 2 diagonals.
var tttLines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// tttOutcome is the result of judging a board: winner is "", "X", "O"
// or "draw", and line holds the winning triple for a decisive board.
type tttOutcome struct {
	winner string
	line   []int
}

func (o tttOutcome) terminal() bool {
	return o.winner != ""
}

// tttEvaluate judges a board. A completed line always wins, even on a
// full board; draw only when no line exists and no cell remains empty.
func tttEvaluate(board [9]string) tttOutcome {
	for _, l := range tttLines {
		a, b, c := l[0], l[1], l[2]
		if board[a] != "" && board[a] == board[b] && board[a] == board[c] {
			return tttOutcome{winner: board[a], line: []int{a, b, c}}
		}
	}

	if !lo.Contains(board[:], "") {
		return tttOutcome{winner: "draw"}
	}

	return tttOutcome{}
}

func otherSymbol(symbol string) string {
	if symbol == symbolX {
		return symbolO
	}
	return symbolX
}

// CreateTicTacToeRoom allocates a fresh tic-tac-toe room. A rounds
// value below 1 falls back to the configured match length.
func (s *RoomService) CreateTicTacToeRoom(rounds int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rounds < 1 {
		rounds = s.cfg.tttRounds
	}

	room := &Room{
		Game: GameTicTacToe,
		TTT: &TTTState{
			Turn:        symbolX,
			Status:      StatusWaiting,
			CurrentGame: 1,
			TotalGames:  rounds,
			FirstPlayer: symbolX,
		},
	}

	return s.insertLocked(room)
}

// TicTacToeMove validates and applies one placement, judges the board,
// and on a terminal board schedules advancement to the next round.
func (s *RoomService) TicTacToeMove(roomID, connID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.lookupLocked(roomID, GameTicTacToe)
	if err != nil {
		return err
	}
	st := room.TTT

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

	if index < 0 || index > 8 {
		return fmt.Errorf("%w: cell index %d out of range", ErrInvalidMove, index)
	}
	if st.Board[index] != "" {
		return fmt.Errorf("%w: cell %d already taken", ErrInvalidMove, index)
	}

	s.touchLocked(room)
	st.Board[index] = symbol

	outcome := tttEvaluate(st.Board)
	if !outcome.terminal() {
		st.Turn = otherSymbol(st.Turn)
		st.Winner = ""
		st.WinningLine = nil

		s.broadcastUpdateLocked(room)

		return nil
	}

	st.Status = StatusFinished
	st.Winner = outcome.winner
	st.WinningLine = outcome.line
	st.LastRoundWinner = outcome.winner

	switch outcome.winner {
	case symbolX:
		st.Scores.X++
	case symbolO:
		st.Scores.O++
	default:
		st.Scores.Draw++
	}

	logf(s.cfg, "GAMES: Tic-tac-toe round %d/%d in %s won by %s", st.CurrentGame, st.TotalGames, roomID, outcome.winner)

	s.broadcastUpdateLocked(room)
	s.broadcastLocked(room, tttRoundFinishedMessage{
		Type:        "ttt:roundFinished",
		Winner:      st.Winner,
		WinningLine: st.WinningLine,
	})

	// Let clients display the result before the board resets.
	gen := st.advanceGen
	st.advance = s.clock.AfterFunc(s.cfg.roundDelay, func() {
		s.advanceTicTacToeRound(roomID, gen)
	})

	return nil
}

// advanceTicTacToeRound runs after the inter-round delay. The
// generation check makes a callback outlived by a reset or disconnect
// a no-op.
func (s *RoomService) advanceTicTacToeRound(roomID string, gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.lookupLocked(roomID, GameTicTacToe)
	if err != nil {
		return
	}
	st := room.TTT

	if st.advanceGen != gen {
		return
	}
	st.advance = nil

	s.touchLocked(room)

	if st.CurrentGame >= st.TotalGames {
		// Match over; leave the aggregated scores on display.
		st.Status = StatusFinished
		s.broadcastUpdateLocked(room)

		return
	}

	st.CurrentGame++
	st.FirstPlayer = otherSymbol(st.FirstPlayer)
	st.Board = [9]string{}
	st.Turn = st.FirstPlayer
	st.Winner = ""
	st.WinningLine = nil
	st.LastRoundWinner = ""

	if len(room.Players) == maxPlayers {
		st.Status = StatusPlaying
	} else {
		st.Status = StatusWaiting
	}

	s.broadcastUpdateLocked(room)
}

// TicTacToeReset clears the current board but keeps scores and round
// progress.
func (s *RoomService) TicTacToeReset(roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.lookupLocked(roomID, GameTicTacToe)
	if err != nil {
		return err
	}
	st := room.TTT

	s.touchLocked(room)
	s.cancelTimersLocked(room)

	st.Board = [9]string{}
	st.Turn = st.FirstPlayer
	st.Winner = ""
	st.WinningLine = nil
	st.LastRoundWinner = ""

	if len(room.Players) == maxPlayers {
		st.Status = StatusPlaying
	} else {
		st.Status = StatusWaiting
	}

	s.broadcastUpdateLocked(room)

	return nil
}

// TicTacToeResetMatch starts the whole match over: board, scores and
// round counter.
func (s *RoomService) TicTacToeResetMatch(roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.lookupLocked(roomID, GameTicTacToe)
	if err != nil {
		return err
	}
	st := room.TTT

	s.touchLocked(room)
	s.cancelTimersLocked(room)

	st.Board = [9]string{}
	st.Turn = symbolX
	st.Winner = ""
	st.WinningLine = nil
	st.Scores = ScoreBoard{}
	st.CurrentGame = 1
	st.FirstPlayer = symbolX
	st.LastRoundWinner = ""

	if len(room.Players) == maxPlayers {
		st.Status = StatusPlaying
	} else {
		st.Status = StatusWaiting
	}

	s.broadcastUpdateLocked(room)

	return nil
}
