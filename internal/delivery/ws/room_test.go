package ws

import (
	"testing"
)

func TestRoomStore_InsertIfAbsent(t *testing.T) {
	s := NewRoomStore(1000, 500)

	room := s.NewRoom("gaming", "Gaming", "", "creator-1")
	if !s.InsertIfAbsent(room) {
		t.Fatal("Expected first insert to succeed")
	}

	dup := s.NewRoom("gaming", "Other", "hash", "creator-2")
	if s.InsertIfAbsent(dup) {
		t.Fatal("Expected duplicate insert to fail")
	}

	if got := s.Get("gaming"); got != room || got.DisplayName != "Gaming" || got.HasPassword() {
		t.Error("Duplicate insert must not alter the stored room")
	}
}

func TestRoomStore_GetMissing(t *testing.T) {
	s := NewRoomStore(1000, 500)
	if s.Get("nope") != nil {
		t.Error("Expected nil for unknown room")
	}
}

func TestRoomStore_Ensure(t *testing.T) {
	s := NewRoomStore(1000, 500)

	a := s.Ensure("general", "General")
	b := s.Ensure("general", "Ignored")
	if a != b {
		t.Error("Ensure must return the existing room")
	}
	if a.DisplayName != "General" || a.HasPassword() {
		t.Errorf("Unexpected room %+v", a)
	}
}

func TestRoomStore_ListSorted(t *testing.T) {
	s := NewRoomStore(1000, 500)
	for _, id := range []string{"c", "a", "b"} {
		s.Ensure(id, id)
	}

	list := s.List()
	if len(list) != 3 || list[0].ID != "a" || list[2].ID != "c" {
		t.Errorf("Unexpected order: %v %v %v", list[0].ID, list[1].ID, list[2].ID)
	}
	if s.Len() != 3 {
		t.Errorf("Expected 3 rooms, got %d", s.Len())
	}
}

func TestRoom_Summary(t *testing.T) {
	s := NewRoomStore(1000, 500)
	room := s.NewRoom("secret", "Secret", "$2a$hash", "u1")
	room.Members["u1"] = true
	room.Members["u2"] = true
	room.Log.Append(numbered(1))

	sum := room.Summary()
	if sum.ID != "secret" || sum.Name != "Secret" || sum.MemberCount != 2 || !sum.HasPassword || sum.MessageCount != 1 {
		t.Errorf("Unexpected summary %+v", sum)
	}

	rec := room.Record()
	if rec.PasswordHash != "$2a$hash" || rec.CreatorID != "u1" {
		t.Errorf("Unexpected record %+v", rec)
	}
}
