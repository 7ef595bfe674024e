package ws

import (
	"context"
	"log"
	"sort"

	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
	"github.com/mmuslimabdulj/goat-rooms/internal/usecase"
)

// Snapshot captures room metadata and recent history for persistence.
// Messages are immutable once logged, so the copy is shallow.
func (h *Hub) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	v, err := h.do(ctx, "", opSnapshot{})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Snapshot), nil
}

// Restore merges a persisted snapshot into the live rooms. Metadata overlays
// existing rooms or adds new ones; histories are merged by message id.
func (h *Hub) Restore(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return nil
	}
	_, err := h.do(ctx, "", opRestore{snapshot: snap})
	return err
}

func (h *Hub) handleSnapshot() *domain.Snapshot {
	snap := domain.NewSnapshot()
	for _, room := range h.rooms.List() {
		snap.Rooms[room.ID] = room.Record()
		snap.History[room.ID] = room.Log.Last(h.opts.PersistHistorySize)
	}
	return snap
}

func (h *Hub) handleRestore(snap *domain.Snapshot) {
	for rawID, rec := range snap.Rooms {
		id, err := usecase.NormalizeRoomID(rawID)
		if err != nil {
			log.Printf("[hub] skipping stored room %q: %v", rawID, err)
			continue
		}
		room := h.rooms.Ensure(id, id)
		room.DisplayName = usecase.SanitizeRoomName(rec.DisplayName, id)
		room.PasswordHash = rec.PasswordHash
		if rec.CreatorID != "" {
			room.CreatorID = rec.CreatorID
		}
		if !rec.CreatedAt.IsZero() {
			room.CreatedAt = rec.CreatedAt
		}
	}

	restored := 0
	for rawID, msgs := range snap.History {
		id, err := usecase.NormalizeRoomID(rawID)
		if err != nil {
			continue
		}
		room := h.rooms.Ensure(id, id)
		restored += mergeHistory(room, msgs)
	}

	log.Printf("[hub] restored %d rooms, %d messages", h.rooms.Len(), restored)
}

// mergeHistory combines the room's log with loaded messages, dropping
// duplicate ids and keeping id order. It returns how many were added.
func mergeHistory(room *Room, loaded []*domain.Message) int {
	seen := make(map[string]bool, room.Log.Len()+len(loaded))
	merged := make([]*domain.Message, 0, room.Log.Len()+len(loaded))
	for _, m := range room.Log.All() {
		seen[m.ID] = true
		merged = append(merged, m)
	}

	added := 0
	for _, m := range loaded {
		if m == nil || m.ID == "" || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		m.RoomID = room.ID
		merged = append(merged, m)
		added++
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].ID < merged[j].ID })
	room.Log.Reset(merged)
	if newest := room.Log.Newest(); newest != nil {
		room.clock.Observe(newest.ID)
	}
	return added
}
