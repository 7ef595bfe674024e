package domain

import "time"

// RoomSummary is the read-only view used for room discovery
type RoomSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MemberCount  int    `json:"memberCount"`
	HasPassword  bool   `json:"hasPassword"`
	MessageCount int    `json:"messageCount"`
}

// RoomRecord is the persisted room metadata. Live membership is never stored.
type RoomRecord struct {
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreatorID    string    `json:"creatorId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HistoryDocument maps room id to its most recent messages, oldest first
type HistoryDocument map[string][]*Message

// RoomsDocument maps room id to metadata
type RoomsDocument map[string]RoomRecord

// Snapshot is the pair of durable documents
type Snapshot struct {
	History HistoryDocument
	Rooms   RoomsDocument
}

// NewSnapshot returns an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		History: make(HistoryDocument),
		Rooms:   make(RoomsDocument),
	}
}
