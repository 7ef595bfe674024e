package chatclient

import (
	"log"
	"sort"
	"sync"

	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
	"github.com/mmuslimabdulj/goat-rooms/internal/usecase"
)

// Session remembers who the user is and which rooms they are in, and replays
// register_user and join_room after every successful (re)connect. The
// server treats each connection as new, so nothing else restores them.
type Session struct {
	client *Client

	mu      sync.Mutex
	name    string
	rooms   map[string]string // joined room id -> password
	pending map[string]string // requested room id -> password

	onState func(prev, next State)
	onEvent func(domain.Event)
}

// NewSession creates a session over a new Client built from opts. The
// callbacks in opts still fire, after the session has updated itself.
func NewSession(opts Options) *Session {
	s := &Session{
		rooms:   make(map[string]string),
		pending: make(map[string]string),
		onState: opts.OnStateChange,
		onEvent: opts.OnEvent,
	}
	opts.OnStateChange = s.handleState
	opts.OnEvent = s.handleEvent
	s.client = New(opts)
	return s
}

// Client exposes the underlying transport
func (s *Session) Client() *Client {
	return s.client
}

func (s *Session) Connect()     { s.client.Connect() }
func (s *Session) Reconnect()   { s.client.Reconnect() }
func (s *Session) Close() error { return s.client.Close() }

// Register sets the display name and sends it if connected
func (s *Session) Register(name string) error {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
	return s.client.Send(domain.RegisterUser{Name: name})
}

// Name is the display name last requested
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// JoinRoom asks to join. The room is remembered once the server confirms.
func (s *Session) JoinRoom(roomID, password string) error {
	s.mu.Lock()
	if id, err := usecase.NormalizeRoomID(roomID); err == nil {
		s.pending[id] = password
	}
	name := s.name
	s.mu.Unlock()
	return s.client.Send(domain.JoinRoom{RoomID: roomID, Username: name, Password: password})
}

// LeaveRoom forgets the room and tells the server
func (s *Session) LeaveRoom(roomID string) error {
	s.mu.Lock()
	if id, err := usecase.NormalizeRoomID(roomID); err == nil {
		delete(s.rooms, id)
		delete(s.pending, id)
	}
	s.mu.Unlock()
	return s.client.Send(domain.LeaveRoom{RoomID: roomID})
}

func (s *Session) CreateRoom(roomID, roomName, password string) error {
	return s.client.Send(domain.CreateRoom{RoomID: roomID, RoomName: roomName, Password: password, Creator: s.Name()})
}

func (s *Session) SendMessage(roomID, text string) error {
	return s.client.Send(domain.SendMessage{RoomID: roomID, Text: text})
}

func (s *Session) SetTyping(roomID string, isTyping bool) error {
	return s.client.Send(domain.Typing{RoomID: roomID, IsTyping: isTyping})
}

func (s *Session) ListRooms() error {
	return s.client.Send(domain.GetRooms{})
}

// Rooms returns the joined room ids in order
func (s *Session) Rooms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Session) handleState(prev, next State) {
	if next == Connected {
		s.resync()
	}
	if s.onState != nil {
		s.onState(prev, next)
	}
}

// resync replays identity and membership on a fresh connection
func (s *Session) resync() {
	s.mu.Lock()
	name := s.name
	rooms := make(map[string]string, len(s.rooms)+len(s.pending))
	for id, pw := range s.rooms {
		rooms[id] = pw
	}
	// joins still awaiting an answer are replayed too
	for id, pw := range s.pending {
		rooms[id] = pw
	}
	s.mu.Unlock()

	if name != "" {
		if err := s.client.Send(domain.RegisterUser{Name: name}); err != nil {
			log.Printf("[client] re-register failed: %v", err)
			return
		}
	}
	for _, id := range sortedKeys(rooms) {
		if err := s.client.Send(domain.JoinRoom{RoomID: id, Username: name, Password: rooms[id]}); err != nil {
			log.Printf("[client] re-join %s failed: %v", id, err)
			return
		}
	}
}

func (s *Session) handleEvent(ev domain.Event) {
	switch ev := ev.(type) {
	case domain.RoomJoined:
		s.mu.Lock()
		pw, ok := s.pending[ev.RoomID]
		if !ok {
			pw = s.rooms[ev.RoomID]
		}
		delete(s.pending, ev.RoomID)
		s.rooms[ev.RoomID] = pw
		s.mu.Unlock()

	case domain.JoinError:
		s.mu.Lock()
		if id, err := usecase.NormalizeRoomID(ev.RoomID); err == nil {
			delete(s.pending, id)
			// A remembered room that now rejects us is dropped
			delete(s.rooms, id)
		}
		s.mu.Unlock()
	}

	if s.onEvent != nil {
		s.onEvent(ev)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
