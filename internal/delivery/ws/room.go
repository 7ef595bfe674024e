package ws

import (
	"sort"
	"time"

	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
)

// Room is a named channel with optional password gate.
// Members holds live connection ids and is never persisted.
type Room struct {
	ID           string
	DisplayName  string
	PasswordHash string
	CreatorID    string
	CreatedAt    time.Time
	Members      map[string]bool
	Log          *MessageLog

	clock domain.IDClock
}

// HasPassword reports whether joining needs a password
func (r *Room) HasPassword() bool {
	return r.PasswordHash != ""
}

// Summary returns the room discovery view
func (r *Room) Summary() domain.RoomSummary {
	return domain.RoomSummary{
		ID:           r.ID,
		Name:         r.DisplayName,
		MemberCount:  len(r.Members),
		HasPassword:  r.HasPassword(),
		MessageCount: r.Log.Len(),
	}
}

// Record returns the persisted metadata
func (r *Room) Record() domain.RoomRecord {
	return domain.RoomRecord{
		DisplayName:  r.DisplayName,
		PasswordHash: r.PasswordHash,
		CreatorID:    r.CreatorID,
		CreatedAt:    r.CreatedAt,
	}
}

// RoomStore owns every room. It is not safe for concurrent use: only the
// Hub goroutine touches it.
type RoomStore struct {
	rooms   map[string]*Room
	hardCap int
	softCap int
}

// NewRoomStore creates an empty store whose logs use the given caps
func NewRoomStore(hardCap, softCap int) *RoomStore {
	return &RoomStore{
		rooms:   make(map[string]*Room),
		hardCap: hardCap,
		softCap: softCap,
	}
}

// NewRoom builds a room that is not yet stored
func (s *RoomStore) NewRoom(id, displayName, passwordHash, creatorID string) *Room {
	return &Room{
		ID:           id,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatorID:    creatorID,
		CreatedAt:    time.Now(),
		Members:      make(map[string]bool),
		Log:          NewMessageLog(s.hardCap, s.softCap),
	}
}

// Get returns a room by id or nil
func (s *RoomStore) Get(id string) *Room {
	return s.rooms[id]
}

// InsertIfAbsent stores room unless its id is taken
func (s *RoomStore) InsertIfAbsent(room *Room) bool {
	if _, exists := s.rooms[room.ID]; exists {
		return false
	}
	s.rooms[room.ID] = room
	return true
}

// Ensure returns the room with id, creating a public one if missing
func (s *RoomStore) Ensure(id, displayName string) *Room {
	if room, ok := s.rooms[id]; ok {
		return room
	}
	room := s.NewRoom(id, displayName, "", domain.SystemAuthorID)
	s.rooms[id] = room
	return room
}

// List returns every room sorted by id
func (s *RoomStore) List() []*Room {
	result := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		result = append(result, room)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Len returns the number of rooms
func (s *RoomStore) Len() int {
	return len(s.rooms)
}
