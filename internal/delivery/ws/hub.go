package ws

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mmuslimabdulj/goat-rooms/internal/config"
	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
	"github.com/mmuslimabdulj/goat-rooms/internal/usecase"
	"golang.org/x/time/rate"
)

// Options tunes the hub
type Options struct {
	DefaultRooms       []string
	SingleRoomMode     bool
	HistoryHardCap     int
	HistorySoftCap     int
	JoinHistorySize    int
	PersistHistorySize int
	TypingTimeout      time.Duration
	SendBufferSize     int
	MaxMessageSize     int64
}

// DefaultOptions mirrors the package constants
func DefaultOptions() Options {
	return Options{
		DefaultRooms:       domain.DefaultRooms,
		HistoryHardCap:     domain.HistoryHardCap,
		HistorySoftCap:     domain.HistorySoftCap,
		JoinHistorySize:    domain.JoinHistorySize,
		PersistHistorySize: domain.PersistHistorySize,
		TypingTimeout:      domain.TypingTimeout,
		SendBufferSize:     domain.SendBufferSize,
		MaxMessageSize:     domain.MaxMessageSize,
	}
}

// OptionsFromConfig builds hub options from application config
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DefaultRooms:       cfg.DefaultRooms,
		SingleRoomMode:     cfg.SingleRoomMode,
		HistoryHardCap:     cfg.HistoryHardCap,
		HistorySoftCap:     cfg.HistorySoftCap,
		JoinHistorySize:    cfg.JoinHistorySize,
		PersistHistorySize: cfg.PersistHistorySize,
		TypingTimeout:      cfg.TypingTimeout,
		SendBufferSize:     cfg.SendBufferSize,
		MaxMessageSize:     int64(cfg.MaxMessageSize),
	}
}

// Hub is the single writer for connections, users, rooms and typing state.
// Everything it owns is touched only by the Run goroutine; other goroutines
// reach it through requests on a channel.
type Hub struct {
	opts   Options
	hasher *usecase.PasswordHasher

	requests chan request
	done     chan struct{}
	stopOnce sync.Once

	// owned by Run
	clients   map[string]*Client
	users     map[string]*domain.User
	rooms     *RoomStore
	typing    map[typingKey]*typingEntry
	typingGen uint64
	dropLog   rate.Sometimes
}

// request is one unit of work for the Run goroutine
type request struct {
	connID string
	op     op
	reply  chan result
}

type result struct {
	value any
	err   error
}

// op is the closed set of operations the hub executes
type op interface {
	isOp()
}

type (
	opConnect struct {
		client *Client
	}
	opDisconnect struct{}
	opRegister   struct {
		name         string
		onlyIfAbsent bool
	}
	opCreateRoom struct {
		roomID, name, passwordHash string
	}
	opJoin struct {
		roomID       string
		verifiedHash string
	}
	opLeave struct {
		roomID string
	}
	opSend struct {
		roomID string
		kind   domain.MessageKind
		text   string
		file   *domain.FilePayload
	}
	opTyping struct {
		roomID   string
		isTyping bool
	}
	opTypingExpired struct {
		key typingKey
		gen uint64
	}
	opListRooms struct{}
	opSnapshot  struct{}
	opRestore   struct {
		snapshot *domain.Snapshot
	}
	opNotify struct {
		event domain.Event
	}
	opStats struct{}
)

func (opConnect) isOp()       {}
func (opDisconnect) isOp()    {}
func (opRegister) isOp()      {}
func (opCreateRoom) isOp()    {}
func (opJoin) isOp()          {}
func (opLeave) isOp()         {}
func (opSend) isOp()          {}
func (opTyping) isOp()        {}
func (opTypingExpired) isOp() {}
func (opListRooms) isOp()     {}
func (opSnapshot) isOp()      {}
func (opRestore) isOp()       {}
func (opNotify) isOp()        {}
func (opStats) isOp()         {}

// NewHub creates a hub seeded with the default public rooms
func NewHub(opts Options, hasher *usecase.PasswordHasher) *Hub {
	if hasher == nil {
		hasher = usecase.NewPasswordHasher(0)
	}
	if opts.TypingTimeout <= 0 {
		opts.TypingTimeout = domain.TypingTimeout
	}
	if opts.SendBufferSize <= 0 {
		opts.SendBufferSize = domain.SendBufferSize
	}
	if opts.JoinHistorySize <= 0 {
		opts.JoinHistorySize = domain.JoinHistorySize
	}
	if opts.PersistHistorySize <= 0 {
		opts.PersistHistorySize = domain.PersistHistorySize
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = domain.MaxMessageSize
	}

	h := &Hub{
		opts:     opts,
		hasher:   hasher,
		requests: make(chan request, 64),
		done:     make(chan struct{}),
		clients:  make(map[string]*Client),
		users:    make(map[string]*domain.User),
		rooms:    NewRoomStore(opts.HistoryHardCap, opts.HistorySoftCap),
		typing:   make(map[typingKey]*typingEntry),
		dropLog:  rate.Sometimes{First: 3, Interval: 10 * time.Second},
	}

	for _, id := range opts.DefaultRooms {
		slug, err := usecase.NormalizeRoomID(id)
		if err != nil {
			log.Printf("[hub] skipping default room %q: %v", id, err)
			continue
		}
		h.rooms.Ensure(slug, usecase.SanitizeRoomName(id, slug))
	}

	return h
}

// Run processes requests until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-h.requests:
			value, err := h.dispatch(req.connID, req.op)
			if req.reply != nil {
				req.reply <- result{value: value, err: err}
			}
		}
	}
}

// Done is closed once Run has returned
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) dispatch(connID string, o op) (any, error) {
	switch o := o.(type) {
	case opConnect:
		return nil, h.handleConnect(o.client)
	case opDisconnect:
		return h.handleDisconnect(connID), nil
	case opRegister:
		return h.handleRegister(connID, o.name, o.onlyIfAbsent)
	case opCreateRoom:
		return h.handleCreateRoom(connID, o)
	case opJoin:
		return h.handleJoin(connID, o)
	case opLeave:
		h.handleLeave(connID, o.roomID)
		return nil, nil
	case opSend:
		return h.handleSend(connID, o)
	case opTyping:
		h.handleTyping(connID, o.roomID, o.isTyping)
		return nil, nil
	case opTypingExpired:
		h.handleTypingExpired(o)
		return nil, nil
	case opListRooms:
		return h.summaries(), nil
	case opSnapshot:
		return h.handleSnapshot(), nil
	case opRestore:
		h.handleRestore(o.snapshot)
		return nil, nil
	case opNotify:
		h.sendTo(connID, o.event)
		return nil, nil
	case opStats:
		return Stats{Rooms: h.rooms.Len(), Connections: len(h.clients), Users: len(h.users)}, nil
	}
	return nil, domain.ErrUnknownCommand
}

// do submits an operation and waits for its result
func (h *Hub) do(ctx context.Context, connID string, o op) (any, error) {
	req := request{connID: connID, op: o, reply: make(chan result, 1)}

	select {
	case h.requests <- req:
	case <-h.done:
		return nil, domain.ErrHubStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-req.reply:
		return res.value, res.err
	case <-h.done:
		select {
		case res := <-req.reply:
			return res.value, res.err
		default:
			return nil, domain.ErrHubStopped
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// post submits an operation without waiting for it
func (h *Hub) post(connID string, o op) {
	select {
	case h.requests <- request{connID: connID, op: o}:
	case <-h.done:
	}
}

// shutdown releases timers and closes every connection's send queue
func (h *Hub) shutdown() {
	h.stopOnce.Do(func() {
		for key, entry := range h.typing {
			entry.timer.Stop()
			delete(h.typing, key)
		}
		for id, c := range h.clients {
			close(c.send)
			delete(h.clients, id)
		}
		close(h.done)
	})
}

// Stats is a point-in-time count taken on the hub goroutine
type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
	Users       int `json:"users"`
}

// Stats returns current counts
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	v, err := h.do(ctx, "", opStats{})
	if err != nil {
		return Stats{}, err
	}
	return v.(Stats), nil
}

// Notify queues an event for a single connection
func (h *Hub) Notify(connID string, ev domain.Event) {
	h.post(connID, opNotify{event: ev})
}
