package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	nanoid "github.com/jaevor/go-nanoid"
)

// MessageKind defines what a room log entry carries
type MessageKind string

const (
	MessageKindText   MessageKind = "text"
	MessageKindFile   MessageKind = "file"
	MessageKindSystem MessageKind = "system"
)

// FilePayload is an uploaded attachment. Blob is an opaque content handle.
type FilePayload struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	Blob     string `json:"blob"`
}

// Message is a single entry of a room log
type Message struct {
	ID         string       `json:"id"`
	RoomID     string       `json:"roomId"`
	AuthorID   string       `json:"authorId"`
	AuthorName string       `json:"author"`
	Kind       MessageKind  `json:"kind"`
	Text       string       `json:"text,omitempty"`
	File       *FilePayload `json:"file,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
}

// tiebreak produces the random suffix of message ids
var tiebreak = mustTiebreak()

func mustTiebreak() func() string {
	gen, err := nanoid.CustomASCII("0123456789abcdefghijklmnopqrstuvwxyz", 8)
	if err != nil {
		panic(err)
	}
	return gen
}

// IDClock issues strictly increasing message ids for one room.
// Ids look like "<13-digit millis>-<4-digit seq>-<8 random chars>" and
// compare correctly as strings.
type IDClock struct {
	lastMillis int64
	seq        int
}

// Next returns a fresh id. A clock that has not advanced reuses the last
// millisecond and bumps the sequence.
func (c *IDClock) Next(now time.Time) string {
	ms := now.UnixMilli()
	if ms > c.lastMillis {
		c.lastMillis = ms
		c.seq = 0
	} else {
		c.seq++
		if c.seq > 9999 {
			c.lastMillis++
			c.seq = 0
		}
	}
	return fmt.Sprintf("%013d-%04d-%s", c.lastMillis, c.seq, tiebreak())
}

// Observe advances the clock past an existing id so restored logs keep ordering
func (c *IDClock) Observe(id string) {
	ms, seq, ok := ParseMessageID(id)
	if !ok {
		return
	}
	if ms > c.lastMillis || (ms == c.lastMillis && seq > c.seq) {
		c.lastMillis = ms
		c.seq = seq
	}
}

// ParseMessageID extracts the millisecond and sequence parts of an id
func ParseMessageID(id string) (millis int64, seq int, ok bool) {
	parts := strings.SplitN(id, "-", 3)
	if len(parts) != 3 {
		return 0, 0, false
	}
	ms, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	s, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return ms, s, true
}
