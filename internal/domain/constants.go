package domain

import "time"

// ==== WebSocket Constants ====

// MaxMessageSize is the maximum allowed WebSocket frame size in bytes.
// File uploads arrive as opaque blobs already checked by the upload boundary,
// so the limit is generous.
const MaxMessageSize = 8 << 20

// SendBufferSize is the per-connection outbound queue length
const SendBufferSize = 256

// ==== History Constants ====

const (
	// HistoryHardCap is the log length that triggers a trim
	HistoryHardCap = 1000

	// HistorySoftCap is the log length kept after a trim
	HistorySoftCap = 500

	// JoinHistorySize is the number of messages replayed to a joining member
	JoinHistorySize = 100

	// PersistHistorySize is the number of messages per room written to storage
	PersistHistorySize = 100
)

// ==== Naming Constants ====

const (
	// MaxRoomIDLength bounds normalized room slugs
	MaxRoomIDLength = 50

	// MaxRoomNameLength bounds room display names (runes)
	MaxRoomNameLength = 50

	// MaxUserNameLength bounds user display names (runes)
	MaxUserNameLength = 32

	// SystemAuthorID is the author of server generated messages
	SystemAuthorID = "system"
)

// ==== Timing Constants ====

const (
	// TypingTimeout is the idle window after which a typing indicator expires
	TypingTimeout = 1000 * time.Millisecond

	// PersistInterval is the period between storage snapshots
	PersistInterval = 30 * time.Second
)

// DefaultRooms are the public rooms every fresh server starts with
var DefaultRooms = []string{"general", "random", "help"}
