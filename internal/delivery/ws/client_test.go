package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
)

func TestNewClient(t *testing.T) {
	hub := NewHub(DefaultOptions(), nil)

	client := NewClient(hub, nil)

	if client.ID == "" {
		t.Error("Expected client ID to be generated")
	}
	if client.hub != hub {
		t.Error("Expected client.hub to be the same as input hub")
	}
	if cap(client.send) != hub.opts.SendBufferSize {
		t.Errorf("Expected send buffer of %d, got %d", hub.opts.SendBufferSize, cap(client.send))
	}
	if other := NewClient(hub, nil); other.ID == client.ID {
		t.Error("Expected unique connection ids")
	}
}

func TestClient_JoinErrorGoesToSender(t *testing.T) {
	hub := newTestHub(t, nil)
	ctx := context.Background()
	c := attach(t, hub, "user")
	other := attach(t, hub, "other")

	c.handle(ctx, domain.JoinRoom{RoomID: "missing"})

	ev, ok := waitEvent(t, c, time.Second).(domain.JoinError)
	if !ok || ev.RoomID != "missing" || ev.Message != domain.ErrRoomNotFound.Message {
		t.Fatalf("Expected join_error, got %+v", ev)
	}
	if evs := drain(t, other); len(evs) != 0 {
		t.Errorf("Errors must not reach other connections, got %+v", evs)
	}
}

func TestClient_JoinWithUsernameRegisters(t *testing.T) {
	hub := newTestHub(t, nil)
	ctx := context.Background()
	c := newMockClient(hub)
	hub.Connect(ctx, c)

	if err := c.handle(ctx, domain.JoinRoom{RoomID: "general", Username: "walkin"}); err != nil {
		t.Fatal(err)
	}

	evs := drain(t, c)
	reg := only[domain.UserRegistered](evs)
	joined := only[domain.RoomJoined](evs)
	if len(reg) != 1 || reg[0].Username != "walkin" {
		t.Errorf("Expected implicit registration, got %+v", reg)
	}
	if len(joined) != 1 || joined[0].RoomID != "general" {
		t.Errorf("Expected room_joined, got %+v", joined)
	}
}

func TestClient_CreateErrorOnDuplicate(t *testing.T) {
	hub := newTestHub(t, nil)
	c := attach(t, hub, "user")

	c.handle(context.Background(), domain.CreateRoom{RoomID: "general", RoomName: "Again"})

	var got domain.CreateError
	for got.Message == "" {
		if ev, ok := waitEvent(t, c, time.Second).(domain.CreateError); ok {
			got = ev
		}
	}
	if got.Message != domain.ErrRoomAlreadyExists.Message {
		t.Errorf("Unexpected create_error: %+v", got)
	}
}

func TestClient_OtherErrorsUseErrorEvent(t *testing.T) {
	hub := newTestHub(t, nil)
	c := attach(t, hub, "user")

	c.handle(context.Background(), domain.SendMessage{RoomID: "general", Text: "hi"})

	ev, ok := waitEvent(t, c, time.Second).(domain.ErrorEvent)
	if !ok || ev.Message != domain.ErrNotMember.Message {
		t.Fatalf("Expected error event, got %+v", ev)
	}
}

func TestClient_PingAndRooms(t *testing.T) {
	hub := newTestHub(t, nil)
	ctx := context.Background()
	c := attach(t, hub, "user")

	sent := time.Now().Add(-20 * time.Millisecond).UnixMilli()
	c.handle(ctx, domain.Ping{ClientTime: sent})
	pong, ok := waitEvent(t, c, time.Second).(domain.Pong)
	if !ok || pong.ServerTime < sent || pong.Latency < 20 {
		t.Errorf("Unexpected pong: %+v", pong)
	}

	c.handle(ctx, domain.GetRooms{})
	list, ok := waitEvent(t, c, time.Second).(domain.RoomsList)
	if !ok || len(list.Rooms) != 3 {
		t.Errorf("Expected rooms_list with default rooms, got %+v", list)
	}
}

func TestClient_Pumps(t *testing.T) {
	hub := newTestHub(t, nil)

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn)
		if err := hub.Connect(r.Context(), client); err != nil {
			conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	read := func() domain.Event {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		ev, err := domain.DecodeEvent(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		return ev
	}

	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus","payload":{}}`))
	if ev, ok := read().(domain.ErrorEvent); !ok || ev.Message != domain.ErrUnknownCommand.Message {
		t.Errorf("Expected unknown command error, got %+v", ev)
	}

	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"register_user","payload":{"name":"piper"}}`))
	if ev, ok := read().(domain.UserRegistered); !ok || ev.Username != "piper" {
		t.Errorf("Expected user_registered, got %+v", ev)
	}

	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"join_room","payload":{"roomId":"general"}}`))
	if _, ok := read().(domain.RoomJoined); !ok {
		t.Error("Expected room_joined")
	}
	read() // room_update

	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"message","payload":{"roomId":"general","text":"one"}}`))
	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"send_message","payload":{"roomId":"general","text":"two"}}`))
	first, _ := read().(domain.ReceiveMessage)
	second, _ := read().(domain.ReceiveMessage)
	if first.Message == nil || second.Message == nil || first.Text != "one" || second.Text != "two" {
		t.Fatalf("Expected messages as separate frames in order, got %+v %+v", first, second)
	}

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		stats, _ := hub.Stats(context.Background())
		if stats.Connections == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("Expected connection to be detached after close")
}
