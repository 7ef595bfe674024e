package ws

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10
)

// Client is the transport adapter for one websocket connection. It decodes
// frames into commands for the hub and writes whatever the hub queues.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewClient creates a Client with a fresh connection id
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:   domain.NewConnectionID(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.opts.SendBufferSize),
	}
}

// ReadPump pumps frames from the websocket connection to the hub
func (c *Client) ReadPump() {
	ctx := context.Background()
	defer func() {
		c.hub.Disconnect(ctx, c.ID)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[client] %s read: %v", c.ID, err)
			}
			return
		}

		cmd, err := domain.DecodeCommand(data)
		if err != nil {
			c.hub.Notify(c.ID, domain.ErrorEvent{Message: domain.PublicMessage(err)})
			continue
		}

		if errors.Is(c.handle(ctx, cmd), domain.ErrHubStopped) {
			return
		}
	}
}

// handle runs one command and reports failures to this connection only
func (c *Client) handle(ctx context.Context, cmd domain.Command) error {
	var err error

	switch cmd := cmd.(type) {
	case domain.RegisterUser:
		_, err = c.hub.Register(ctx, c.ID, cmd.Name)

	case domain.CreateRoom:
		if _, err = c.hub.CreateRoom(ctx, c.ID, cmd.RoomID, cmd.RoomName, cmd.Password); err != nil {
			c.hub.Notify(c.ID, domain.CreateError{RoomID: cmd.RoomID, Message: domain.PublicMessage(err)})
			return err
		}

	case domain.JoinRoom:
		if name := strings.TrimSpace(cmd.Username); name != "" {
			if _, err = c.hub.RegisterIfAbsent(ctx, c.ID, name); err != nil {
				break
			}
		}
		if _, err = c.hub.JoinRoom(ctx, c.ID, cmd.RoomID, cmd.Password); err != nil {
			c.hub.Notify(c.ID, domain.JoinError{RoomID: cmd.RoomID, Message: domain.PublicMessage(err)})
			return err
		}

	case domain.LeaveRoom:
		err = c.hub.LeaveRoom(ctx, c.ID, cmd.RoomID)

	case domain.SendMessage:
		_, err = c.hub.SendMessage(ctx, c.ID, cmd.RoomID, cmd.Text)

	case domain.FileUpload:
		_, err = c.hub.SendFile(ctx, c.ID, cmd.RoomID, cmd.FileName, cmd.FileType, cmd.Blob)

	case domain.Typing:
		err = c.hub.SetTyping(ctx, c.ID, cmd.RoomID, cmd.IsTyping)

	case domain.GetRooms:
		var rooms []domain.RoomSummary
		if rooms, err = c.hub.ListRooms(ctx); err == nil {
			c.hub.Notify(c.ID, domain.RoomsList{Rooms: rooms})
		}

	case domain.Ping:
		now := time.Now().UnixMilli()
		pong := domain.Pong{ServerTime: now}
		if cmd.ClientTime > 0 {
			pong.Latency = now - cmd.ClientTime
		}
		c.hub.Notify(c.ID, pong)

	default:
		err = domain.ErrUnknownCommand
	}

	if err != nil && !errors.Is(err, domain.ErrHubStopped) {
		c.hub.Notify(c.ID, domain.ErrorEvent{Message: domain.PublicMessage(err)})
	}
	return err
}

// WritePump pumps queued frames to the websocket connection, one frame per
// event
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
