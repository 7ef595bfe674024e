package domain

import (
	"encoding/json"
	"fmt"
)

// Envelope is the frame shape in both directions
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CommandType names a client to server request
type CommandType string

const (
	CommandRegisterUser CommandType = "register_user"
	CommandCreateRoom   CommandType = "create_room"
	CommandJoinRoom     CommandType = "join_room"
	CommandLeaveRoom    CommandType = "leave_room"
	CommandSendMessage  CommandType = "send_message"
	CommandMessage      CommandType = "message" // simple profile alias of send_message
	CommandFileUpload   CommandType = "file_upload"
	CommandTyping       CommandType = "typing"
	CommandGetRooms     CommandType = "get_rooms"
	CommandPing         CommandType = "ping"
)

// Command is a decoded client request. The set of implementations is closed.
type Command interface {
	CommandType() CommandType
}

type RegisterUser struct {
	Name string `json:"name"`
}

type CreateRoom struct {
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"`
	Password string `json:"password,omitempty"`
	Creator  string `json:"creator,omitempty"`
}

type JoinRoom struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

type LeaveRoom struct {
	RoomID string `json:"roomId"`
}

type SendMessage struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
}

type FileUpload struct {
	RoomID   string `json:"roomId"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	Blob     string `json:"blob"`
}

type Typing struct {
	RoomID   string `json:"roomId"`
	IsTyping bool   `json:"isTyping"`
}

type GetRooms struct{}

// Ping carries the client clock in unix milliseconds
type Ping struct {
	ClientTime int64 `json:"clientTime"`
}

func (RegisterUser) CommandType() CommandType { return CommandRegisterUser }
func (CreateRoom) CommandType() CommandType   { return CommandCreateRoom }
func (JoinRoom) CommandType() CommandType     { return CommandJoinRoom }
func (LeaveRoom) CommandType() CommandType    { return CommandLeaveRoom }
func (SendMessage) CommandType() CommandType  { return CommandSendMessage }
func (FileUpload) CommandType() CommandType   { return CommandFileUpload }
func (Typing) CommandType() CommandType       { return CommandTyping }
func (GetRooms) CommandType() CommandType     { return CommandGetRooms }
func (Ping) CommandType() CommandType         { return CommandPing }

// DecodeCommand parses one inbound frame
func DecodeCommand(data []byte) (Command, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, Invalid("malformed frame")
	}

	var cmd Command
	switch CommandType(env.Type) {
	case CommandRegisterUser:
		cmd = &RegisterUser{}
	case CommandCreateRoom:
		cmd = &CreateRoom{}
	case CommandJoinRoom:
		cmd = &JoinRoom{}
	case CommandLeaveRoom:
		cmd = &LeaveRoom{}
	case CommandSendMessage, CommandMessage:
		cmd = &SendMessage{}
	case CommandFileUpload:
		cmd = &FileUpload{}
	case CommandTyping:
		cmd = &Typing{}
	case CommandGetRooms:
		return GetRooms{}, nil
	case CommandPing:
		cmd = &Ping{}
	default:
		return nil, fmt.Errorf("decode %q: %w", env.Type, ErrUnknownCommand)
	}

	if len(env.Payload) > 0 && string(env.Payload) != "null" {
		if err := json.Unmarshal(env.Payload, cmd); err != nil {
			return nil, Invalid("malformed %s payload", env.Type)
		}
	}
	return deref(cmd), nil
}

// EncodeCommand builds an outbound frame for a client implementation
func EncodeCommand(cmd Command) ([]byte, error) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: string(cmd.CommandType()), Payload: payload})
}

func deref(cmd Command) Command {
	switch c := cmd.(type) {
	case *RegisterUser:
		return *c
	case *CreateRoom:
		return *c
	case *JoinRoom:
		return *c
	case *LeaveRoom:
		return *c
	case *SendMessage:
		return *c
	case *FileUpload:
		return *c
	case *Typing:
		return *c
	case *Ping:
		return *c
	}
	return cmd
}
