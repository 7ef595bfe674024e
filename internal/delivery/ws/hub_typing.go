package ws

import (
	"context"
	"time"

	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
	"github.com/mmuslimabdulj/goat-rooms/internal/usecase"
)

type typingKey struct {
	connID string
	roomID string
}

// typingEntry is an active indicator. gen identifies the timer that may
// expire it; a callback carrying an older gen is ignored.
type typingEntry struct {
	timer *time.Timer
	gen   uint64
}

// SetTyping updates the typing indicator. Non-members are ignored.
func (h *Hub) SetTyping(ctx context.Context, connID, roomID string, isTyping bool) error {
	id, err := usecase.NormalizeRoomID(roomID)
	if err != nil {
		return nil
	}
	_, err = h.do(ctx, connID, opTyping{roomID: id, isTyping: isTyping})
	return err
}

func (h *Hub) handleTyping(connID, roomID string, isTyping bool) {
	user, ok := h.users[connID]
	if !ok {
		return
	}
	room := h.rooms.Get(roomID)
	if room == nil || !room.Members[user.ID] {
		return
	}
	user.Touch()

	key := typingKey{connID: user.ID, roomID: room.ID}
	entry, active := h.typing[key]

	if !isTyping {
		if active {
			h.clearTyping(key, true)
		}
		return
	}

	if active {
		// Refresh only; the transition was already announced
		entry.timer.Stop()
	} else {
		entry = &typingEntry{}
		h.typing[key] = entry
		h.broadcastRoom(room, typingEvent(user, room, true), user.ID)
	}

	h.typingGen++
	gen := h.typingGen
	entry.gen = gen
	entry.timer = time.AfterFunc(h.opts.TypingTimeout, func() {
		h.post(key.connID, opTypingExpired{key: key, gen: gen})
	})
}

func (h *Hub) handleTypingExpired(o opTypingExpired) {
	entry, ok := h.typing[o.key]
	if !ok || entry.gen != o.gen {
		return
	}
	h.clearTyping(o.key, true)
}

// clearTyping stops the indicator; notify announces isTyping:false to the
// other members
func (h *Hub) clearTyping(key typingKey, notify bool) {
	entry, ok := h.typing[key]
	if !ok {
		return
	}
	entry.timer.Stop()
	delete(h.typing, key)

	if !notify {
		return
	}
	user := h.users[key.connID]
	room := h.rooms.Get(key.roomID)
	if user == nil || room == nil {
		return
	}
	h.broadcastRoom(room, typingEvent(user, room, false), user.ID)
}

func typingEvent(user *domain.User, room *Room, isTyping bool) domain.UserTyping {
	return domain.UserTyping{
		RoomID:   room.ID,
		UserID:   user.ID,
		Username: user.DisplayName,
		IsTyping: isTyping,
	}
}
