package ws

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
	"github.com/mmuslimabdulj/goat-rooms/internal/usecase"
)

// SendMessage appends a text message and fans it out to every member,
// sender included. Text that is empty after trimming is dropped: the
// result is then nil with a nil error.
func (h *Hub) SendMessage(ctx context.Context, connID, roomID, text string) (*domain.Message, error) {
	return h.send(ctx, connID, opSend{roomID: roomID, kind: domain.MessageKindText, text: text})
}

// SendFile appends a file message. The blob is opaque and already size checked.
func (h *Hub) SendFile(ctx context.Context, connID, roomID, fileName, fileType, blob string) (*domain.Message, error) {
	file := &domain.FilePayload{
		FileName: strings.TrimSpace(fileName),
		FileType: strings.TrimSpace(fileType),
		Blob:     blob,
	}
	if file.FileName == "" {
		file.FileName = "file"
	}
	if file.FileType == "" {
		file.FileType = "application/octet-stream"
	}
	return h.send(ctx, connID, opSend{roomID: roomID, kind: domain.MessageKindFile, file: file})
}

// PostSystemMessage appends a server authored message to a room
func (h *Hub) PostSystemMessage(ctx context.Context, roomID, text string) (*domain.Message, error) {
	return h.send(ctx, "", opSend{roomID: roomID, kind: domain.MessageKindSystem, text: text})
}

func (h *Hub) send(ctx context.Context, connID string, o opSend) (*domain.Message, error) {
	id, err := usecase.NormalizeRoomID(o.roomID)
	if err != nil {
		return nil, err
	}
	o.roomID = id

	v, err := h.do(ctx, connID, o)
	if err != nil {
		return nil, err
	}
	return v.(*domain.Message), nil
}

func (h *Hub) handleSend(connID string, o opSend) (*domain.Message, error) {
	authorID, authorName := domain.SystemAuthorID, domain.SystemAuthorID

	var user *domain.User
	if o.kind != domain.MessageKindSystem {
		var err error
		if user, err = h.activeUser(connID); err != nil {
			return nil, err
		}
		authorID, authorName = user.ID, user.DisplayName
	}

	room := h.rooms.Get(o.roomID)
	if room == nil {
		return nil, fmt.Errorf("send to %s: %w", o.roomID, domain.ErrRoomNotFound)
	}
	if user != nil && !room.Members[user.ID] {
		return nil, fmt.Errorf("send to %s: %w", o.roomID, domain.ErrNotMember)
	}

	text := strings.TrimSpace(o.text)
	switch o.kind {
	case domain.MessageKindText, domain.MessageKindSystem:
		if text == "" {
			return nil, nil
		}
	case domain.MessageKindFile:
		if o.file == nil || o.file.Blob == "" {
			return nil, domain.ErrEmptyPayload
		}
		text = ""
	}

	now := time.Now()
	msg := &domain.Message{
		ID:         room.clock.Next(now),
		RoomID:     room.ID,
		AuthorID:   authorID,
		AuthorName: authorName,
		Kind:       o.kind,
		Text:       text,
		File:       o.file,
		Timestamp:  now,
	}

	if room.Log.Append(msg) {
		log.Printf("[hub] room %s history trimmed to %d messages", room.ID, room.Log.Len())
	}

	if user != nil {
		h.clearTyping(typingKey{connID: user.ID, roomID: room.ID}, true)
	}

	h.broadcastRoom(room, domain.ReceiveMessage{Message: msg}, "")
	return msg, nil
}

// sendTo delivers an event to one connection
func (h *Hub) sendTo(connID string, ev domain.Event) {
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	data, err := domain.EncodeEvent(ev)
	if err != nil {
		log.Printf("[hub] encode %s: %v", ev.EventType(), err)
		return
	}
	h.deliver(c, data)
}

// broadcastRoom delivers an event to the room's current members, optionally
// skipping one connection. The member set is read once at call time.
func (h *Hub) broadcastRoom(room *Room, ev domain.Event, exceptID string) {
	data, err := domain.EncodeEvent(ev)
	if err != nil {
		log.Printf("[hub] encode %s: %v", ev.EventType(), err)
		return
	}
	for memberID := range room.Members {
		if memberID == exceptID {
			continue
		}
		if c, ok := h.clients[memberID]; ok {
			h.deliver(c, data)
		}
	}
}

// broadcastAll delivers an event to every attached connection
func (h *Hub) broadcastAll(ev domain.Event) {
	data, err := domain.EncodeEvent(ev)
	if err != nil {
		log.Printf("[hub] encode %s: %v", ev.EventType(), err)
		return
	}
	for _, c := range h.clients {
		h.deliver(c, data)
	}
}

// deliver never blocks the hub. A full queue loses the event.
func (h *Hub) deliver(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		h.dropLog.Do(func() {
			log.Printf("[hub] send buffer full, dropping event for connection %s", c.ID)
		})
	}
}
