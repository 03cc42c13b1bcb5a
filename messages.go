/*
Copyright © 2026 KmFahimHossain
*/

package main

import (
	"encoding/json"
	"fmt"
)

// Inbound requests arrive as one JSON envelope per message. The
// envelope is decoded into exactly one of the typed requests below;
// each namespace accepts a closed set of types, and anything else is
// rejected before it reaches the room service.
type envelope struct {
	Type      string `json:"type"`
	Seq       int    `json:"seq"`
	RoomID    string `json:"roomId,omitempty"`
	Index     *int   `json:"index,omitempty"`
	PileIndex *int   `json:"pileIndex,omitempty"`
	Count     *int   `json:"count,omitempty"`
	Rounds    *int   `json:"rounds,omitempty"`
	Piles     []int  `json:"piles,omitempty"`
	ShowTimer *bool  `json:"showTimer,omitempty"`
}

type request interface {
	isRequest()
}

type createRoomRequest struct {
	Rounds    int
	Piles     []int
	ShowTimer bool
}

type joinRoomRequest struct {
	RoomID string
}

type leaveRoomRequest struct {
	RoomID string
}

type tttMoveRequest struct {
	RoomID string
	Index  int
}

type tttResetRequest struct {
	RoomID string
}

type tttResetMatchRequest struct {
	RoomID string
}

type nimMoveRequest struct {
	RoomID    string
	PileIndex int
	Count     int
}

type nimRematchRequest struct {
	RoomID string
}

type potatoPassRequest struct {
	RoomID string
}

type potatoRestartRequest struct {
	RoomID string
}

func (createRoomRequest) isRequest()    {}
func (joinRoomRequest) isRequest()      {}
func (leaveRoomRequest) isRequest()     {}
func (tttMoveRequest) isRequest()       {}
func (tttResetRequest) isRequest()      {}
func (tttResetMatchRequest) isRequest() {}
func (nimMoveRequest) isRequest()       {}
func (nimRematchRequest) isRequest()    {}
func (potatoPassRequest) isRequest()    {}
func (potatoRestartRequest) isRequest() {}

// Missing numeric fields decode to out-of-range values, so the room
// service rejects them as invalid moves instead of applying zeroes.
func intOr(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}

// decodeRequest parses one inbound message for the given namespace.
func decodeRequest(kind GameKind, data []byte) (request, int, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, 0, fmt.Errorf("malformed request: %w", err)
	}

	switch kind {
	case GameTicTacToe:
		switch env.Type {
		case "ttt:createRoom":
			return createRoomRequest{Rounds: intOr(env.Rounds, 0)}, env.Seq, nil
		case "ttt:joinRoom":
			return joinRoomRequest{RoomID: env.RoomID}, env.Seq, nil
		case "ttt:move":
			return tttMoveRequest{RoomID: env.RoomID, Index: intOr(env.Index, -1)}, env.Seq, nil
		case "ttt:requestReset":
			return tttResetRequest{RoomID: env.RoomID}, env.Seq, nil
		case "ttt:resetMatch":
			return tttResetMatchRequest{RoomID: env.RoomID}, env.Seq, nil
		case "ttt:leaveRoom":
			return leaveRoomRequest{RoomID: env.RoomID}, env.Seq, nil
		}
	case GameNim:
		switch env.Type {
		case "nim:createRoom":
			return createRoomRequest{Piles: env.Piles}, env.Seq, nil
		case "nim:joinRoom":
			return joinRoomRequest{RoomID: env.RoomID}, env.Seq, nil
		case "nim:move":
			return nimMoveRequest{
				RoomID:    env.RoomID,
				PileIndex: intOr(env.PileIndex, -1),
				Count:     intOr(env.Count, 0),
			}, env.Seq, nil
		case "nim:rematch":
			return nimRematchRequest{RoomID: env.RoomID}, env.Seq, nil
		case "nim:leaveRoom":
			return leaveRoomRequest{RoomID: env.RoomID}, env.Seq, nil
		}
	case GameHotPotato:
		switch env.Type {
		case "hotpotato:createRoom":
			showTimer := env.ShowTimer != nil && *env.ShowTimer
			return createRoomRequest{ShowTimer: showTimer}, env.Seq, nil
		case "hotpotato:joinRoom":
			return joinRoomRequest{RoomID: env.RoomID}, env.Seq, nil
		case "hotpotato:pass":
			return potatoPassRequest{RoomID: env.RoomID}, env.Seq, nil
		case "hotpotato:restartRoom":
			return potatoRestartRequest{RoomID: env.RoomID}, env.Seq, nil
		case "hotpotato:leaveRoom":
			return leaveRoomRequest{RoomID: env.RoomID}, env.Seq, nil
		}
	}

	return nil, env.Seq, fmt.Errorf("unknown %s request type %q", kind, env.Type)
}

// ackMessage is the response correlated 1:1 with a request via seq.
type ackMessage struct {
	Type   string `json:"type"`
	Seq    int    `json:"seq"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	RoomID string `json:"roomId,omitempty"`
	Index  *int   `json:"index,omitempty"`
	Symbol string `json:"symbol,omitempty"`
	Room   any    `json:"room,omitempty"`
}

type tttRoomJoinedMessage struct {
	Type    string `json:"type"`
	RoomID  string `json:"roomId"`
	Index   int    `json:"index"`
	Players int    `json:"players"`
}

type tttPlayersMessage struct {
	Type    string `json:"type"`
	Players int    `json:"players"`
}

type tttRoundFinishedMessage struct {
	Type        string `json:"type"`
	Winner      string `json:"winner"`
	WinningLine []int  `json:"winningLine,omitempty"`
}

type nimRoundFinishedMessage struct {
	Type   string `json:"type"`
	Winner string `json:"winner"`
}

// Full-state projections, one per namespace. These are complete
// snapshots, never diffs, and never expose connection ids or the
// internal fuse handle.
type tttRoomView struct {
	Type            string     `json:"type"`
	Board           [9]string  `json:"board"`
	Turn            string     `json:"turn"`
	Status          RoomStatus `json:"status"`
	Winner          string     `json:"winner,omitempty"`
	WinningLine     []int      `json:"winningLine,omitempty"`
	Scores          ScoreBoard `json:"scores"`
	CurrentGame     int        `json:"currentGame"`
	TotalGames      int        `json:"totalGames"`
	FirstPlayer     string     `json:"firstPlayer"`
	LastRoundWinner string     `json:"lastRoundWinner,omitempty"`
	PlayersCount    int        `json:"playersCount"`
}

type nimRoomView struct {
	Type            string     `json:"type"`
	Piles           []int      `json:"piles"`
	InitialPiles    []int      `json:"initialPiles"`
	Turn            string     `json:"turn"`
	Status          RoomStatus `json:"status"`
	Winner          string     `json:"winner,omitempty"`
	Scores          ScoreBoard `json:"scores"`
	CurrentGame     int        `json:"currentGame"`
	TotalGames      int        `json:"totalGames"`
	FirstPlayer     string     `json:"firstPlayer"`
	LastRoundWinner string     `json:"lastRoundWinner,omitempty"`
	LastAction      string     `json:"lastAction,omitempty"`
	PlayersCount    int        `json:"playersCount"`
}

type potatoRoomView struct {
	Type         string     `json:"type"`
	Current      int        `json:"current"`
	Status       RoomStatus `json:"status"`
	Winner       *int       `json:"winner"`
	ExplodesAt   int64      `json:"explodesAt"`
	ShowTimer    bool       `json:"showTimer"`
	PlayersCount int        `json:"playersCount"`
}

func tttUpdateMessage(room *Room) tttRoomView {
	st := room.TTT

	return tttRoomView{
		Type:            "ttt:update",
		Board:           st.Board,
		Turn:            st.Turn,
		Status:          st.Status,
		Winner:          st.Winner,
		WinningLine:     st.WinningLine,
		Scores:          st.Scores,
		CurrentGame:     st.CurrentGame,
		TotalGames:      st.TotalGames,
		FirstPlayer:     st.FirstPlayer,
		LastRoundWinner: st.LastRoundWinner,
		PlayersCount:    len(room.Players),
	}
}

func nimUpdateMessage(room *Room) nimRoomView {
	st := room.Nim

	return nimRoomView{
		Type:            "nim:update",
		Piles:           append([]int(nil), st.Piles...),
		InitialPiles:    append([]int(nil), st.InitialPiles...),
		Turn:            st.Turn,
		Status:          st.Status,
		Winner:          st.Winner,
		Scores:          st.Scores,
		CurrentGame:     st.CurrentGame,
		TotalGames:      st.TotalGames,
		FirstPlayer:     st.FirstPlayer,
		LastRoundWinner: st.LastRoundWinner,
		LastAction:      st.LastAction,
		PlayersCount:    len(room.Players),
	}
}

func potatoUpdateMessage(room *Room) potatoRoomView {
	st := room.Potato

	return potatoRoomView{
		Type:         "hotpotato:update",
		Current:      st.Current,
		Status:       st.Status,
		Winner:       st.Winner,
		ExplodesAt:   st.ExplodesAt,
		ShowTimer:    st.ShowTimer,
		PlayersCount: len(room.Players),
	}
}
