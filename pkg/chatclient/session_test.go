package chatclient

import (
	"context"
	"testing"
	"time"

	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_ResyncAfterReconnect(t *testing.T) {
	srv := newTestServer(t)
	rec := newRecorder()
	s := NewSession(rec.options(srv.url()))
	defer s.Close()

	s.Connect()
	waitState(t, rec, Connected)

	require.NoError(t, s.Register("ana"))
	waitEvent[domain.UserRegistered](t, rec)
	require.NoError(t, s.JoinRoom("General", ""))
	joined := waitEvent[domain.RoomJoined](t, rec)
	assert.Equal(t, "general", joined.RoomID)
	assert.Equal(t, []string{"general"}, s.Rooms())

	srv.dropAll()
	waitState(t, rec, Reconnecting)
	waitState(t, rec, Connected)

	reg := waitEvent[domain.UserRegistered](t, rec)
	assert.Equal(t, "ana", reg.Username)
	rejoined := waitEvent[domain.RoomJoined](t, rec)
	assert.Equal(t, "general", rejoined.RoomID)

	// The old connection is gone; only the new one is a member
	require.Eventually(t, func() bool {
		rooms, err := srv.hub.ListRooms(context.Background())
		if err != nil {
			return false
		}
		for _, r := range rooms {
			if r.ID == "general" {
				return r.MemberCount == 1
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSession_ReplaysJoinRequestedOffline(t *testing.T) {
	srv := newTestServer(t)
	rec := newRecorder()
	s := NewSession(rec.options(srv.url()))
	defer s.Close()

	assert.ErrorIs(t, s.Register("ana"), ErrNotConnected)
	assert.ErrorIs(t, s.JoinRoom("Random", ""), ErrNotConnected)
	assert.Empty(t, s.Rooms())

	s.Connect()
	waitState(t, rec, Connected)

	waitEvent[domain.UserRegistered](t, rec)
	joined := waitEvent[domain.RoomJoined](t, rec)
	assert.Equal(t, "random", joined.RoomID)
	assert.Equal(t, []string{"random"}, s.Rooms())
}

func TestSession_ResyncUsesRoomPassword(t *testing.T) {
	srv := newTestServer(t)
	rec := newRecorder()
	s := NewSession(rec.options(srv.url()))
	defer s.Close()

	s.Connect()
	waitState(t, rec, Connected)
	require.NoError(t, s.Register("ana"))
	require.NoError(t, s.CreateRoom("vault", "Vault", "pw"))
	waitEvent[domain.NewRoom](t, rec)
	require.NoError(t, s.JoinRoom("vault", "pw"))
	waitEvent[domain.RoomJoined](t, rec)

	s.Reconnect()
	waitState(t, rec, Connected)
	rejoined := waitEvent[domain.RoomJoined](t, rec)
	assert.Equal(t, "vault", rejoined.RoomID)
}

func TestSession_JoinErrorIsNotRemembered(t *testing.T) {
	srv := newTestServer(t)
	rec := newRecorder()
	s := NewSession(rec.options(srv.url()))
	defer s.Close()

	s.Connect()
	waitState(t, rec, Connected)
	require.NoError(t, s.Register("ana"))
	require.NoError(t, s.JoinRoom("missing", ""))

	ev := waitEvent[domain.JoinError](t, rec)
	assert.Equal(t, domain.ErrRoomNotFound.Message, ev.Message)
	assert.Empty(t, s.Rooms())
}

func TestSession_LeaveForgetsRoom(t *testing.T) {
	srv := newTestServer(t)
	rec := newRecorder()
	s := NewSession(rec.options(srv.url()))
	defer s.Close()

	s.Connect()
	waitState(t, rec, Connected)
	require.NoError(t, s.Register("ana"))
	require.NoError(t, s.JoinRoom("random", ""))
	waitEvent[domain.RoomJoined](t, rec)

	require.NoError(t, s.LeaveRoom("random"))
	assert.Empty(t, s.Rooms())
}
