package ws

import (
	"context"
	"fmt"
	"log"

	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
	"github.com/mmuslimabdulj/goat-rooms/internal/usecase"
)

// JoinResult is what the joining connection receives
type JoinResult struct {
	RoomID      string
	RoomName    string
	MemberCount int
	History     []*domain.Message
}

// passwordChallenge is returned by the hub when a join needs the stored hash
// checked off the hub goroutine
type passwordChallenge struct {
	hash string
}

// CreateRoom creates a room. The password is hashed on the caller's goroutine;
// the insert itself is an atomic insert-if-absent on the hub.
func (h *Hub) CreateRoom(ctx context.Context, connID, roomID, displayName, password string) (domain.RoomSummary, error) {
	id, err := usecase.NormalizeRoomID(roomID)
	if err != nil {
		return domain.RoomSummary{}, err
	}
	name := usecase.SanitizeRoomName(displayName, id)

	hash, err := h.hasher.Hash(password)
	if err != nil {
		return domain.RoomSummary{}, fmt.Errorf("hash room password: %w", err)
	}

	v, err := h.do(ctx, connID, opCreateRoom{roomID: id, name: name, passwordHash: hash})
	if err != nil {
		return domain.RoomSummary{}, err
	}
	return v.(domain.RoomSummary), nil
}

// JoinRoom adds the connection's user to a room and replays recent history
func (h *Hub) JoinRoom(ctx context.Context, connID, roomID, password string) (*JoinResult, error) {
	id, err := usecase.NormalizeRoomID(roomID)
	if err != nil {
		return nil, err
	}

	v, err := h.do(ctx, connID, opJoin{roomID: id})
	if err != nil {
		return nil, err
	}

	challenge, gated := v.(passwordChallenge)
	if !gated {
		return v.(*JoinResult), nil
	}

	if !h.hasher.Verify(password, challenge.hash) {
		return nil, domain.ErrInvalidPassword
	}

	v, err = h.do(ctx, connID, opJoin{roomID: id, verifiedHash: challenge.hash})
	if err != nil {
		return nil, err
	}
	if _, again := v.(passwordChallenge); again {
		// The stored hash no longer matches the one that was verified
		return nil, domain.ErrInvalidPassword
	}
	return v.(*JoinResult), nil
}

// LeaveRoom removes the user from a room. Leaving a room one is not in is a no-op.
func (h *Hub) LeaveRoom(ctx context.Context, connID, roomID string) error {
	id, err := usecase.NormalizeRoomID(roomID)
	if err != nil {
		return nil
	}
	_, err = h.do(ctx, connID, opLeave{roomID: id})
	return err
}

// ListRooms returns a consistent snapshot of every room
func (h *Hub) ListRooms(ctx context.Context) ([]domain.RoomSummary, error) {
	v, err := h.do(ctx, "", opListRooms{})
	if err != nil {
		return nil, err
	}
	return v.([]domain.RoomSummary), nil
}

func (h *Hub) handleCreateRoom(connID string, o opCreateRoom) (domain.RoomSummary, error) {
	room := h.rooms.NewRoom(o.roomID, o.name, o.passwordHash, connID)
	if !h.rooms.InsertIfAbsent(room) {
		return domain.RoomSummary{}, fmt.Errorf("create %s: %w", o.roomID, domain.ErrRoomAlreadyExists)
	}
	if user, ok := h.users[connID]; ok {
		user.Touch()
	}

	summary := room.Summary()
	log.Printf("[hub] room %s created (password: %t)", room.ID, room.HasPassword())
	h.broadcastAll(domain.NewRoom{RoomSummary: summary})
	return summary, nil
}

func (h *Hub) handleJoin(connID string, o opJoin) (any, error) {
	user, err := h.activeUser(connID)
	if err != nil {
		return nil, err
	}

	room := h.rooms.Get(o.roomID)
	if room == nil {
		return nil, fmt.Errorf("join %s: %w", o.roomID, domain.ErrRoomNotFound)
	}

	if room.HasPassword() && o.verifiedHash != room.PasswordHash {
		return passwordChallenge{hash: room.PasswordHash}, nil
	}

	if h.opts.SingleRoomMode {
		for otherID := range user.MemberRooms {
			if otherID == room.ID {
				continue
			}
			if other := h.rooms.Get(otherID); other != nil {
				h.leave(user, other)
			}
		}
	}

	alreadyMember := room.Members[user.ID]
	room.Members[user.ID] = true
	user.MemberRooms[room.ID] = true

	res := &JoinResult{
		RoomID:      room.ID,
		RoomName:    room.DisplayName,
		MemberCount: len(room.Members),
		History:     room.Log.Last(h.opts.JoinHistorySize),
	}

	h.sendTo(connID, domain.RoomJoined{
		RoomID:           res.RoomID,
		RoomName:         res.RoomName,
		MemberCount:      res.MemberCount,
		PreviousMessages: res.History,
	})

	if alreadyMember {
		return res, nil
	}

	h.broadcastRoom(room, domain.UserJoined{Presence: domain.Presence{
		RoomID:      room.ID,
		UserID:      user.ID,
		Username:    user.DisplayName,
		MemberCount: len(room.Members),
	}}, user.ID)
	h.broadcastAll(roomUpdate(room))

	return res, nil
}

func (h *Hub) handleLeave(connID, roomID string) {
	user, ok := h.users[connID]
	if !ok {
		return
	}
	user.Touch()

	room := h.rooms.Get(roomID)
	if room == nil || !room.Members[user.ID] {
		return
	}
	h.leave(user, room)
}

// leave drops membership on both sides and tells the remaining members.
// Caller has checked membership.
func (h *Hub) leave(user *domain.User, room *Room) {
	delete(room.Members, user.ID)
	delete(user.MemberRooms, room.ID)
	h.clearTyping(typingKey{connID: user.ID, roomID: room.ID}, false)

	h.broadcastRoom(room, domain.UserLeft{Presence: domain.Presence{
		RoomID:      room.ID,
		UserID:      user.ID,
		Username:    user.DisplayName,
		MemberCount: len(room.Members),
	}}, "")
	h.broadcastAll(roomUpdate(room))
}

func (h *Hub) summaries() []domain.RoomSummary {
	rooms := h.rooms.List()
	result := make([]domain.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		result = append(result, room.Summary())
	}
	return result
}

func roomUpdate(room *Room) domain.RoomUpdate {
	return domain.RoomUpdate{
		RoomID:      room.ID,
		MemberCount: len(room.Members),
		HasPassword: room.HasPassword(),
	}
}
