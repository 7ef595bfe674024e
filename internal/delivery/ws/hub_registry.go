package ws

import (
	"context"
	"log"
	"sort"

	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
	"github.com/mmuslimabdulj/goat-rooms/internal/usecase"
)

// Connect attaches a live transport to the hub
func (h *Hub) Connect(ctx context.Context, c *Client) error {
	_, err := h.do(ctx, c.ID, opConnect{client: c})
	return err
}

// Disconnect removes the connection, unregisters its user and leaves every
// room it was in. It returns the removed user, or nil if none was registered.
func (h *Hub) Disconnect(ctx context.Context, connID string) (*domain.User, error) {
	v, err := h.do(ctx, connID, opDisconnect{})
	if err != nil {
		return nil, err
	}
	user, _ := v.(*domain.User)
	return user, nil
}

// Register creates or replaces the user record for a connection.
// Re-registering keeps room memberships.
func (h *Hub) Register(ctx context.Context, connID, name string) (*domain.User, error) {
	return h.register(ctx, connID, name, false)
}

// RegisterIfAbsent registers only when the connection has no user yet
func (h *Hub) RegisterIfAbsent(ctx context.Context, connID, name string) (*domain.User, error) {
	return h.register(ctx, connID, name, true)
}

func (h *Hub) register(ctx context.Context, connID, name string, onlyIfAbsent bool) (*domain.User, error) {
	v, err := h.do(ctx, connID, opRegister{name: name, onlyIfAbsent: onlyIfAbsent})
	if err != nil {
		return nil, err
	}
	return v.(*domain.User), nil
}

func (h *Hub) handleConnect(c *Client) error {
	if _, exists := h.clients[c.ID]; exists {
		return nil
	}
	h.clients[c.ID] = c
	log.Printf("[hub] connection attached. Total connections: %d", len(h.clients))
	return nil
}

func (h *Hub) handleDisconnect(connID string) *domain.User {
	c, attached := h.clients[connID]
	user := h.users[connID]

	if user != nil {
		// Leave rooms in a stable order so presence events are deterministic
		roomIDs := make([]string, 0, len(user.MemberRooms))
		for id := range user.MemberRooms {
			roomIDs = append(roomIDs, id)
		}
		sort.Strings(roomIDs)

		for _, id := range roomIDs {
			if room := h.rooms.Get(id); room != nil {
				h.leave(user, room)
			}
		}
		delete(h.users, connID)
	}

	if attached {
		delete(h.clients, connID)
		close(c.send)
		log.Printf("[hub] connection detached. Total connections: %d", len(h.clients))
	}

	if user == nil {
		return nil
	}
	return cloneUser(user)
}

func (h *Hub) handleRegister(connID, name string, onlyIfAbsent bool) (*domain.User, error) {
	if _, attached := h.clients[connID]; !attached {
		return nil, domain.ErrUnknownConnection
	}

	user, exists := h.users[connID]
	if exists && onlyIfAbsent {
		return cloneUser(user), nil
	}

	name = usecase.SanitizeUserName(name, connID)
	if exists {
		user.DisplayName = name
		user.Touch()
	} else {
		user = domain.NewUser(connID, name)
		h.users[connID] = user
	}

	h.sendTo(connID, domain.UserRegistered{UserID: user.ID, Username: user.DisplayName})
	return cloneUser(user), nil
}

// activeUser returns the registered user and refreshes its activity time
func (h *Hub) activeUser(connID string) (*domain.User, error) {
	user, ok := h.users[connID]
	if !ok {
		return nil, domain.ErrNotRegistered
	}
	user.Touch()
	return user, nil
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.MemberRooms = make(map[string]bool, len(u.MemberRooms))
	for id := range u.MemberRooms {
		c.MemberRooms[id] = true
	}
	return &c
}
