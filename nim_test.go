package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNimFinished(t *testing.T) {
	assert := assert.New(t)

	assert.True(nimFinished([]int{0, 0, 0}))
	assert.True(nimFinished([]int{0}))
	assert.True(nimFinished(nil))
	assert.False(nimFinished([]int{0, 1, 0}))
	assert.False(nimFinished([]int{3, 4, 5}))
}

func TestPileName(t *testing.T) {
	assert.Equal(t, "A", pileName(0))
	assert.Equal(t, "B", pileName(1))
	assert.Equal(t, "E", pileName(4))
}

func nimPair(t *testing.T, svc *RoomService, piles []int) string {
	t.Helper()

	roomID := svc.CreateNimRoom(piles)
	_, err := svc.JoinRoom(GameNim, roomID, "conn1")
	require.NoError(t, err)
	_, err = svc.JoinRoom(GameNim, roomID, "conn2")
	require.NoError(t, err)

	return roomID
}

func TestNimLastToTakeWins(t *testing.T) {
	svc, clock, sender := newTestService(t)
	require := require.New(t)

	roomID := nimPair(t, svc, []int{1, 1})
	st := svc.rooms[roomID].Nim

	require.NoError(svc.NimMove(roomID, "conn1", 0, 1))
	require.Equal(StatusPlaying, st.Status)
	require.Equal(symbolO, st.Turn)
	require.Equal([]int{0, 1}, st.Piles)

	require.NoError(svc.NimMove(roomID, "conn2", 1, 1))
	require.Equal(StatusFinished, st.Status)
	require.Equal(symbolO, st.Winner, "the mover who empties the last pile wins")
	require.Equal([]int{0, 0}, st.Piles)
	require.Equal(1, st.Scores.O)

	finished, ok := sender.last("conn1").(nimRoundFinishedMessage)
	require.True(ok, "last message is %T", sender.last("conn1"))
	require.Equal(symbolO, finished.Winner)

	// Nim never auto-advances; the room stays finished until an
	// explicit rematch.
	clock.Advance(time.Hour)
	require.Equal(StatusFinished, st.Status)
	require.Equal(1, st.CurrentGame)
}

func TestNimDefaultPiles(t *testing.T) {
	svc, _, _ := newTestService(t)

	roomID := svc.CreateNimRoom(nil)

	st := svc.rooms[roomID].Nim
	assert.Equal(t, []int{3, 4, 5}, st.Piles)
	assert.Equal(t, []int{3, 4, 5}, st.InitialPiles)
}

func TestNimLastAction(t *testing.T) {
	svc, _, _ := newTestService(t)
	require := require.New(t)

	roomID := nimPair(t, svc, []int{3, 4, 5})

	require.NoError(svc.NimMove(roomID, "conn1", 1, 2))
	require.Equal("X took 2 from pile B", svc.rooms[roomID].Nim.LastAction)

	require.NoError(svc.NimMove(roomID, "conn2", 0, 3))
	require.Equal("O took 3 from pile A", svc.rooms[roomID].Nim.LastAction)
}

func TestNimMoveValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	require := require.New(t)

	roomID := svc.CreateNimRoom([]int{2, 3})
	_, err := svc.JoinRoom(GameNim, roomID, "conn1")
	require.NoError(err)

	require.ErrorIs(svc.NimMove(roomID, "conn1", 0, 1), ErrNotPlaying)

	_, err = svc.JoinRoom(GameNim, roomID, "conn2")
	require.NoError(err)

	require.ErrorIs(svc.NimMove("nosuch", "conn1", 0, 1), ErrRoomNotFound)
	require.ErrorIs(svc.NimMove(roomID, "stranger", 0, 1), ErrNotParticipant)
	require.ErrorIs(svc.NimMove(roomID, "conn2", 0, 1), ErrNotYourTurn)
	require.ErrorIs(svc.NimMove(roomID, "conn1", -1, 1), ErrInvalidMove)
	require.ErrorIs(svc.NimMove(roomID, "conn1", 2, 1), ErrInvalidMove)
	require.ErrorIs(svc.NimMove(roomID, "conn1", 0, 0), ErrInvalidMove)
	require.ErrorIs(svc.NimMove(roomID, "conn1", 0, 3), ErrInvalidMove)

	// Declined operations left the piles intact.
	st := svc.rooms[roomID].Nim
	require.Equal([]int{2, 3}, st.Piles)
	require.Equal(symbolX, st.Turn)
	require.Empty(st.LastAction)
}

func TestNimTurnAlternation(t *testing.T) {
	svc, _, _ := newTestService(t)
	require := require.New(t)

	roomID := nimPair(t, svc, []int{5, 5})
	st := svc.rooms[roomID].Nim

	moves := []struct {
		conn      string
		pileIndex int
		count     int
		next      string
	}{
		{"conn1", 0, 2, symbolO},
		{"conn2", 0, 3, symbolX},
		{"conn1", 1, 1, symbolO},
		{"conn2", 1, 2, symbolX},
	}
	for _, m := range moves {
		require.NoError(svc.NimMove(roomID, m.conn, m.pileIndex, m.count))
		require.Equal(m.next, st.Turn)
	}
}

func TestNimRematch(t *testing.T) {
	svc, _, sender := newTestService(t)
	require := require.New(t)

	roomID := nimPair(t, svc, []int{1, 2})
	st := svc.rooms[roomID].Nim

	require.NoError(svc.NimMove(roomID, "conn1", 1, 2))
	require.NoError(svc.NimMove(roomID, "conn2", 0, 1))
	require.Equal(StatusFinished, st.Status)
	require.Equal(1, st.Scores.O)

	require.NoError(svc.NimRematch(roomID))

	require.Equal([]int{1, 2}, st.Piles)
	require.Equal([]int{1, 2}, st.InitialPiles)
	require.Equal(symbolX, st.Turn)
	require.Equal(StatusPlaying, st.Status)
	require.Empty(st.Winner)
	require.Equal(ScoreBoard{}, st.Scores)
	require.Empty(st.LastAction)

	update, ok := sender.last("conn2").(nimRoomView)
	require.True(ok)
	require.Equal([]int{1, 2}, update.Piles)
	require.Equal(StatusPlaying, update.Status)
}

func TestNimRematchWhileAlone(t *testing.T) {
	svc, _, _ := newTestService(t)
	require := require.New(t)

	roomID := nimPair(t, svc, []int{1})
	require.NoError(svc.NimMove(roomID, "conn1", 0, 1))

	svc.Disconnect("conn2")
	require.NoError(svc.NimRematch(roomID))

	st := svc.rooms[roomID].Nim
	require.Equal(StatusWaiting, st.Status, "rematch with one participant waits for a second")
}
