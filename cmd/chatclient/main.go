package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
	"github.com/mmuslimabdulj/goat-rooms/pkg/chatclient"
)

const usage = `commands:
  /join <room> [password]    join a room and make it current
  /leave [room]              leave a room (default: current)
  /create <room> [password]  create a room
  /rooms                     list rooms
  /reconnect                 reconnect now
  /quit                      exit
anything else is sent to the current room`

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "server websocket url")
	name := flag.String("name", "", "display name")
	retries := flag.Int("retries", 5, "reconnect attempts before giving up")
	flag.Parse()

	out := log.New(os.Stdout, "", log.Ltime)

	var current string
	session := chatclient.NewSession(chatclient.Options{
		URL:        *url,
		MaxRetries: *retries,
		OnStateChange: func(_, next chatclient.State) {
			out.Printf("* %s", next)
			if next == chatclient.Failed {
				out.Printf("* giving up, type /reconnect to try again")
			}
		},
		OnEvent: func(ev domain.Event) { printEvent(out, ev) },
	})
	session.Connect()
	defer session.Close()

	if *name != "" {
		// Sent now if the dial already finished, otherwise replayed on connect
		session.Register(*name)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	fmt.Println(usage)
	for {
		select {
		case <-sig:
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := run(session, &current, strings.TrimSpace(line)); quit {
				return
			}
		}
	}
}

// run executes one input line. It reports true on /quit.
func run(s *chatclient.Session, current *string, line string) bool {
	if line == "" {
		return false
	}

	var err error
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit":
		return true
	case "/reconnect":
		s.Reconnect()
	case "/rooms":
		err = s.ListRooms()
	case "/join":
		if len(fields) < 2 {
			fmt.Println(usage)
			return false
		}
		err = s.JoinRoom(fields[1], arg(fields, 2))
		*current = fields[1]
	case "/leave":
		room := arg(fields, 1)
		if room == "" {
			room = *current
		}
		err = s.LeaveRoom(room)
	case "/create":
		if len(fields) < 2 {
			fmt.Println(usage)
			return false
		}
		err = s.CreateRoom(fields[1], fields[1], arg(fields, 2))
	default:
		if strings.HasPrefix(line, "/") {
			fmt.Println(usage)
			return false
		}
		if *current == "" {
			fmt.Println("join a room first")
			return false
		}
		err = s.SendMessage(*current, line)
	}

	if err != nil {
		fmt.Printf("! %v\n", err)
	}
	return false
}

func arg(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

func printEvent(out *log.Logger, ev domain.Event) {
	switch ev := ev.(type) {
	case domain.UserRegistered:
		out.Printf("* you are %s", ev.Username)
	case domain.RoomsList:
		for _, r := range ev.Rooms {
			lock := ""
			if r.HasPassword {
				lock = " (locked)"
			}
			out.Printf("  #%s %s, %d online%s", r.ID, r.Name, r.MemberCount, lock)
		}
	case domain.NewRoom:
		out.Printf("* new room #%s", ev.ID)
	case domain.RoomJoined:
		out.Printf("* joined #%s (%d online)", ev.RoomID, ev.MemberCount)
		for _, m := range ev.PreviousMessages {
			printMessage(out, m)
		}
	case domain.ReceiveMessage:
		printMessage(out, ev.Message)
	case domain.UserJoined:
		out.Printf("* %s joined #%s", ev.Username, ev.RoomID)
	case domain.UserLeft:
		out.Printf("* %s left #%s", ev.Username, ev.RoomID)
	case domain.UserTyping:
		if ev.IsTyping {
			out.Printf("* %s is typing in #%s", ev.Username, ev.RoomID)
		}
	case domain.JoinError:
		out.Printf("! cannot join #%s: %s", ev.RoomID, ev.Message)
	case domain.CreateError:
		out.Printf("! cannot create #%s: %s", ev.RoomID, ev.Message)
	case domain.ErrorEvent:
		out.Printf("! %s", ev.Message)
	}
}

func printMessage(out *log.Logger, m *domain.Message) {
	switch m.Kind {
	case domain.MessageKindFile:
		if m.File != nil {
			out.Printf("[#%s] %s shared %s (%s)", m.RoomID, m.AuthorName, m.File.FileName, m.File.FileType)
		}
	case domain.MessageKindSystem:
		out.Printf("[#%s] -- %s", m.RoomID, m.Text)
	default:
		out.Printf("[#%s] %s: %s", m.RoomID, m.AuthorName, m.Text)
	}
}
