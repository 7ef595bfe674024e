package ws

import "github.com/mmuslimabdulj/goat-rooms/internal/domain"

// MessageLog is a room's ordered message history with hysteresis eviction:
// once the length exceeds hardCap it is cut back to the newest softCap entries,
// so trimming happens once per (hardCap - softCap) appends instead of on every one.
type MessageLog struct {
	entries []*domain.Message
	hardCap int
	softCap int
}

// NewMessageLog creates an empty log with the given caps
func NewMessageLog(hardCap, softCap int) *MessageLog {
	if hardCap <= 0 {
		hardCap = domain.HistoryHardCap
	}
	if softCap <= 0 || softCap >= hardCap {
		softCap = hardCap / 2
	}
	return &MessageLog{
		entries: make([]*domain.Message, 0, 64),
		hardCap: hardCap,
		softCap: softCap,
	}
}

// Append adds a message and reports whether the log was trimmed
func (l *MessageLog) Append(msg *domain.Message) bool {
	l.entries = append(l.entries, msg)
	if len(l.entries) <= l.hardCap {
		return false
	}

	// Copy into a fresh slice so the evicted prefix can be collected
	kept := make([]*domain.Message, l.softCap, l.hardCap+1)
	copy(kept, l.entries[len(l.entries)-l.softCap:])
	l.entries = kept
	return true
}

// Last returns up to n of the newest messages, oldest first
func (l *MessageLog) Last(n int) []*domain.Message {
	if n > len(l.entries) {
		n = len(l.entries)
	}
	if n <= 0 {
		return []*domain.Message{}
	}
	result := make([]*domain.Message, n)
	copy(result, l.entries[len(l.entries)-n:])
	return result
}

// All returns every message in chronological order
func (l *MessageLog) All() []*domain.Message {
	return l.Last(len(l.entries))
}

// Newest returns the most recent message or nil
func (l *MessageLog) Newest() *domain.Message {
	if len(l.entries) == 0 {
		return nil
	}
	return l.entries[len(l.entries)-1]
}

// Len returns the current number of messages
func (l *MessageLog) Len() int {
	return len(l.entries)
}

// Reset replaces the content with msgs, applying the caps
func (l *MessageLog) Reset(msgs []*domain.Message) {
	l.entries = make([]*domain.Message, 0, len(msgs))
	for _, m := range msgs {
		l.Append(m)
	}
}
