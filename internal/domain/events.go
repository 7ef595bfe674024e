package domain

import (
	"encoding/json"
	"fmt"
)

// EventType names a server to client event
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventRoomsList      EventType = "rooms_list"
	EventNewRoom        EventType = "new_room"
	EventRoomJoined     EventType = "room_joined"
	EventRoomUpdate     EventType = "room_update"
	EventReceiveMessage EventType = "receive_message"
	EventUserJoined     EventType = "user_joined"
	EventUserLeft       EventType = "user_left"
	EventUserTyping     EventType = "user_typing"
	EventJoinError      EventType = "join_error"
	EventCreateError    EventType = "create_error"
	EventError          EventType = "error"
	EventPong           EventType = "pong"
)

// Event is a server to client notification. The set of implementations is closed.
type Event interface {
	EventType() EventType
}

type UserRegistered struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type RoomsList struct {
	Rooms []RoomSummary `json:"rooms"`
}

type NewRoom struct {
	RoomSummary
}

type RoomJoined struct {
	RoomID           string     `json:"roomId"`
	RoomName         string     `json:"roomName"`
	MemberCount      int        `json:"memberCount"`
	PreviousMessages []*Message `json:"previousMessages"`
}

type RoomUpdate struct {
	RoomID      string `json:"roomId"`
	MemberCount int    `json:"memberCount"`
	HasPassword bool   `json:"hasPassword"`
}

// ReceiveMessage carries the message fields at the top level of the payload
type ReceiveMessage struct {
	*Message
}

// Presence is shared by user_joined and user_left
type Presence struct {
	RoomID      string `json:"roomId"`
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	MemberCount int    `json:"memberCount"`
}

type UserJoined struct{ Presence }

type UserLeft struct{ Presence }

type UserTyping struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

type JoinError struct {
	RoomID  string `json:"roomId,omitempty"`
	Message string `json:"message"`
}

type CreateError struct {
	RoomID  string `json:"roomId,omitempty"`
	Message string `json:"message"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

// Pong answers a ping; Latency is serverTime - clientTime in milliseconds
type Pong struct {
	ServerTime int64 `json:"serverTime"`
	Latency    int64 `json:"latency"`
}

func (UserRegistered) EventType() EventType { return EventUserRegistered }
func (RoomsList) EventType() EventType      { return EventRoomsList }
func (NewRoom) EventType() EventType        { return EventNewRoom }
func (RoomJoined) EventType() EventType     { return EventRoomJoined }
func (RoomUpdate) EventType() EventType     { return EventRoomUpdate }
func (ReceiveMessage) EventType() EventType { return EventReceiveMessage }
func (UserJoined) EventType() EventType     { return EventUserJoined }
func (UserLeft) EventType() EventType       { return EventUserLeft }
func (UserTyping) EventType() EventType     { return EventUserTyping }
func (JoinError) EventType() EventType      { return EventJoinError }
func (CreateError) EventType() EventType    { return EventCreateError }
func (ErrorEvent) EventType() EventType     { return EventError }
func (Pong) EventType() EventType           { return EventPong }

// EncodeEvent serializes an event into a frame
func EncodeEvent(ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: string(ev.EventType()), Payload: payload})
}

// DecodeEvent parses a frame received from the server
func DecodeEvent(data []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	var err error
	switch EventType(env.Type) {
	case EventUserRegistered:
		var ev UserRegistered
		err = json.Unmarshal(env.Payload, &ev)
		return ev, err
	case EventRoomsList:
		var ev RoomsList
		err = json.Unmarshal(env.Payload, &ev)
		return ev, err
	case EventNewRoom:
		var ev NewRoom
		err = json.Unmarshal(env.Payload, &ev)
		return ev, err
	case EventRoomJoined:
		var ev RoomJoined
		err = json.Unmarshal(env.Payload, &ev)
		return ev, err
	case EventRoomUpdate:
		var ev RoomUpdate
		err = json.Unmarshal(env.Payload, &ev)
		return ev, err
	case EventReceiveMessage:
		ev := ReceiveMessage{Message: &Message{}}
		err = json.Unmarshal(env.Payload, ev.Message)
		return ev, err
	case EventUserJoined:
		var ev UserJoined
		err = json.Unmarshal(env.Payload, &ev)
		return ev, err
	case EventUserLeft:
		var ev UserLeft
		err = json.Unmarshal(env.Payload, &ev)
		return ev, err
	case EventUserTyping:
		var ev UserTyping
		err = json.Unmarshal(env.Payload, &ev)
		return ev, err
	case EventJoinError:
		var ev JoinError
		err = json.Unmarshal(env.Payload, &ev)
		return ev, err
	case EventCreateError:
		var ev CreateError
		err = json.Unmarshal(env.Payload, &ev)
		return ev, err
	case EventError:
		var ev ErrorEvent
		err = json.Unmarshal(env.Payload, &ev)
		return ev, err
	case EventPong:
		var ev Pong
		err = json.Unmarshal(env.Payload, &ev)
		return ev, err
	}
	return nil, fmt.Errorf("decode event: unknown type %q", env.Type)
}
