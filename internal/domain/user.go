package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity registered on a live connection
type User struct {
	ID             string          `json:"id"`
	DisplayName    string          `json:"username"`
	MemberRooms    map[string]bool `json:"-"`
	ConnectedAt    time.Time       `json:"connected_at"`
	LastActivityAt time.Time       `json:"last_activity_at"`
}

// NewUser creates a user bound to a connection id
func NewUser(connID, displayName string) *User {
	now := time.Now()
	return &User{
		ID:             connID,
		DisplayName:    displayName,
		MemberRooms:    make(map[string]bool),
		ConnectedAt:    now,
		LastActivityAt: now,
	}
}

// NewConnectionID generates an opaque connection-scoped identifier
func NewConnectionID() string {
	return uuid.New().String()
}

// Touch refreshes the activity timestamp
func (u *User) Touch() {
	u.LastActivityAt = time.Now()
}
