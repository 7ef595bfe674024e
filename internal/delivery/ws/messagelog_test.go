package ws

import (
	"fmt"
	"testing"

	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
)

func numbered(i int) *domain.Message {
	return &domain.Message{ID: fmt.Sprintf("%06d", i), Kind: domain.MessageKindText, Text: fmt.Sprint(i)}
}

func TestMessageLog_Empty(t *testing.T) {
	l := NewMessageLog(10, 5)
	if l.Len() != 0 {
		t.Errorf("Expected length 0, got %d", l.Len())
	}
	if got := l.Last(3); len(got) != 0 || got == nil {
		t.Errorf("Expected empty non-nil slice, got %v", got)
	}
	if l.Newest() != nil {
		t.Error("Expected nil newest for empty log")
	}
}

func TestMessageLog_HysteresisEviction(t *testing.T) {
	l := NewMessageLog(1000, 500)

	for i := 1; i <= 1000; i++ {
		if l.Append(numbered(i)) {
			t.Fatalf("Unexpected trim at message %d", i)
		}
	}
	if l.Len() != 1000 {
		t.Fatalf("Expected 1000 messages before trim, got %d", l.Len())
	}

	if !l.Append(numbered(1001)) {
		t.Fatal("Expected trim on message 1001")
	}
	if l.Len() != 500 {
		t.Fatalf("Expected 500 after trim, got %d", l.Len())
	}

	all := l.All()
	if all[0].Text != "502" || all[499].Text != "1001" {
		t.Errorf("Expected messages 502..1001, got %s..%s", all[0].Text, all[499].Text)
	}

	if l.Append(numbered(1002)) {
		t.Error("Message 1002 must not trigger another trim")
	}
	if l.Len() != 501 {
		t.Errorf("Expected 501, got %d", l.Len())
	}
}

func TestMessageLog_Last(t *testing.T) {
	l := NewMessageLog(10, 5)
	for i := 1; i <= 4; i++ {
		l.Append(numbered(i))
	}

	last := l.Last(2)
	if len(last) != 2 || last[0].Text != "3" || last[1].Text != "4" {
		t.Errorf("Unexpected last two: %v", last)
	}

	if got := l.Last(100); len(got) != 4 {
		t.Errorf("Expected all 4 when n exceeds length, got %d", len(got))
	}

	// Returned slice is a copy
	last[0] = nil
	if l.All()[2] == nil {
		t.Error("Last must not expose the internal slice")
	}
}

func TestMessageLog_Reset(t *testing.T) {
	l := NewMessageLog(10, 5)
	msgs := make([]*domain.Message, 0, 12)
	for i := 1; i <= 12; i++ {
		msgs = append(msgs, numbered(i))
	}

	l.Reset(msgs)
	if l.Len() > 10 {
		t.Errorf("Reset must honour the hard cap, got %d", l.Len())
	}
	if l.Newest().Text != "12" {
		t.Errorf("Expected newest 12, got %s", l.Newest().Text)
	}
}

func TestNewMessageLog_InvalidCaps(t *testing.T) {
	l := NewMessageLog(0, 0)
	if l.hardCap != domain.HistoryHardCap || l.softCap != domain.HistoryHardCap/2 {
		t.Errorf("Unexpected caps %d/%d", l.hardCap, l.softCap)
	}
}
