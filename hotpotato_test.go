package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func potatoPair(t *testing.T, svc *RoomService, showTimer bool) string {
	t.Helper()

	roomID := svc.CreateHotPotatoRoom(showTimer)
	_, err := svc.JoinRoom(GameHotPotato, roomID, "conn1")
	require.NoError(t, err)
	_, err = svc.JoinRoom(GameHotPotato, roomID, "conn2")
	require.NoError(t, err)

	return roomID
}

func TestHotPotatoFuseNotArmedUntilPaired(t *testing.T) {
	svc, clock, _ := newTestService(t)
	require := require.New(t)

	roomID := svc.CreateHotPotatoRoom(false)
	_, err := svc.JoinRoom(GameHotPotato, roomID, "conn1")
	require.NoError(err)

	st := svc.rooms[roomID].Potato
	require.Equal(StatusWaiting, st.Status)
	require.Zero(st.ExplodesAt)
	require.Zero(clock.pending())
}

func TestHotPotatoScenario(t *testing.T) {
	svc, clock, _ := newTestService(t)
	require := require.New(t)

	roomID := potatoPair(t, svc, true)
	st := svc.rooms[roomID].Potato

	require.Equal(StatusPlaying, st.Status)
	require.True(st.ShowTimer)

	// First pairing draws the fuse from [10s, 20s].
	fuse := st.ExplodesAt - clock.Now().UnixMilli()
	require.GreaterOrEqual(fuse, int64(10000))
	require.LessOrEqual(fuse, int64(20000))

	// A pass before expiry toggles the holder without ending the round.
	require.NoError(svc.PotatoPass(roomID, "conn1"))
	require.Equal(1, st.Current)
	require.Equal(StatusPlaying, st.Status)
	require.Nil(st.Winner)

	// No further pass: the fuse fires and the non-holder wins.
	clock.Advance(21 * time.Second)
	require.Equal(StatusFinished, st.Status)
	require.NotNil(st.Winner)
	require.Equal(0, *st.Winner)
}

func TestHotPotatoPassValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	require := require.New(t)

	roomID := svc.CreateHotPotatoRoom(false)
	_, err := svc.JoinRoom(GameHotPotato, roomID, "conn1")
	require.NoError(err)

	require.ErrorIs(svc.PotatoPass(roomID, "conn1"), ErrNotPlaying)

	_, err = svc.JoinRoom(GameHotPotato, roomID, "conn2")
	require.NoError(err)

	require.ErrorIs(svc.PotatoPass("nosuch", "conn1"), ErrRoomNotFound)
	require.ErrorIs(svc.PotatoPass(roomID, "stranger"), ErrNotParticipant)
	require.ErrorIs(svc.PotatoPass(roomID, "conn2"), ErrNotYourTurn)

	st := svc.rooms[roomID].Potato
	require.Equal(0, st.Current, "declined passes leave the holder unchanged")
}

func TestHotPotatoRestartCancelsStaleFuse(t *testing.T) {
	svc, clock, _ := newPinnedService(t)
	require := require.New(t)

	roomID := potatoPair(t, svc, false)
	st := svc.rooms[roomID].Potato

	// Pinned rng: the initial fuse is exactly 10s out.
	originalDeadline := st.ExplodesAt
	require.Equal(clock.Now().Add(10*time.Second).UnixMilli(), originalDeadline)

	// Restart halfway through; the replacement fuse runs 10s from now,
	// 5s past the original deadline.
	clock.Advance(5 * time.Second)
	require.NoError(svc.PotatoRestart(roomID))
	require.Equal(clock.Now().Add(10*time.Second).UnixMilli(), st.ExplodesAt)
	require.Equal(StatusPlaying, st.Status)

	// Crossing the original deadline must be a no-op on the room.
	clock.Advance(6 * time.Second)
	require.Equal(StatusPlaying, st.Status)
	require.Nil(st.Winner)

	// The replacement fuse still fires on schedule.
	clock.Advance(4 * time.Second)
	require.Equal(StatusFinished, st.Status)
	require.NotNil(st.Winner)
	require.Equal(1, *st.Winner)
}

func TestHotPotatoRestart(t *testing.T) {
	svc, clock, _ := newTestService(t)
	require := require.New(t)

	roomID := potatoPair(t, svc, false)
	st := svc.rooms[roomID].Potato

	require.NoError(svc.PotatoPass(roomID, "conn1"))
	clock.Advance(21 * time.Second)
	require.Equal(StatusFinished, st.Status)

	require.NoError(svc.PotatoRestart(roomID))

	require.Equal(StatusPlaying, st.Status)
	require.Equal(0, st.Current)
	require.Nil(st.Winner)

	// Restarts draw from the wider [10s, 70s] range.
	fuse := st.ExplodesAt - clock.Now().UnixMilli()
	require.GreaterOrEqual(fuse, int64(10000))
	require.LessOrEqual(fuse, int64(70000))

	clock.Advance(71 * time.Second)
	require.Equal(StatusFinished, st.Status)
	require.NotNil(st.Winner)
	require.Equal(1, *st.Winner, "holder 0 loses, so player 1 wins")
}

func TestHotPotatoDisconnectCancelsFuse(t *testing.T) {
	svc, clock, _ := newTestService(t)
	require := require.New(t)

	roomID := potatoPair(t, svc, false)
	st := svc.rooms[roomID].Potato

	svc.Disconnect("conn2")
	require.Equal(StatusWaiting, st.Status)

	clock.Advance(time.Hour)
	require.Equal(StatusWaiting, st.Status, "a fuse from the abandoned round must not fire")
	require.Nil(st.Winner)
}

func TestHotPotatoRejoinArmsFreshFuse(t *testing.T) {
	svc, clock, _ := newTestService(t)
	require := require.New(t)

	roomID := potatoPair(t, svc, false)
	svc.Disconnect("conn2")

	clock.Advance(time.Minute)

	index, err := svc.JoinRoom(GameHotPotato, roomID, "conn3")
	require.NoError(err)
	require.Equal(1, index)

	st := svc.rooms[roomID].Potato
	require.Equal(StatusPlaying, st.Status)

	fuse := st.ExplodesAt - clock.Now().UnixMilli()
	require.GreaterOrEqual(fuse, int64(10000))
	require.LessOrEqual(fuse, int64(20000))
}
