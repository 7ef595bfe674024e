package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/joho/godotenv"
	"github.com/mmuslimabdulj/goat-rooms/internal/config"
	httpHandler "github.com/mmuslimabdulj/goat-rooms/internal/delivery/http"
	"github.com/mmuslimabdulj/goat-rooms/internal/delivery/ws"
	"github.com/mmuslimabdulj/goat-rooms/internal/middleware"
	"github.com/mmuslimabdulj/goat-rooms/internal/storage"
	"github.com/mmuslimabdulj/goat-rooms/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load .env file (ignore error if not exists, e.g. in production)
	_ = godotenv.Load()

	// Reload config after loading .env
	config.AppConfig = config.LoadFromEnv()
	cfg := config.AppConfig

	// Configuring Logging
	if cfg.LogLevel == "silent" || cfg.LogLevel == "off" {
		log.SetOutput(io.Discard)
	}

	// Initialize dependencies
	hub := ws.NewHub(ws.OptionsFromConfig(cfg), usecase.NewPasswordHasher(cfg.BcryptCost))
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	store, err := storage.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Storage error: %v", err)
	}
	if err := restore(hub, store, cfg); err != nil {
		log.Fatalf("Restore error: %v", err)
	}

	scheduler := storage.NewScheduler(hub, store, cfg.PersistInterval)
	schedCtx, stopScheduler := context.WithCancel(context.Background())
	schedDone := make(chan struct{})
	go func() {
		scheduler.Run(schedCtx)
		close(schedDone)
	}()

	handler := httpHandler.NewHandler(hub, cfg.AllowedOrigins)

	// Setup routes
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.HandleWebSocket)
	mux.HandleFunc("/api/rooms", handler.HandleRooms)
	mux.HandleFunc("/healthz", handler.HandleHealth)

	// Create server with timeouts. No write timeout: websocket
	// connections are long lived and manage their own deadlines.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.SecurityHeaders(mux),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("goat-rooms running at http://localhost:%s (storage: %s)", cfg.Port, store.Driver())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown runs as one ordered operation so the final flush
	// sees every message accepted before the listener closed
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"server": func(ctx context.Context) error {
				log.Println("Shutting down server...")
				var errs []string
				if err := server.Shutdown(ctx); err != nil {
					errs = append(errs, fmt.Sprintf("http: %v", err))
				}

				stopScheduler()
				<-schedDone
				if err := scheduler.Flush(ctx); err != nil {
					errs = append(errs, fmt.Sprintf("flush: %v", err))
				}

				stopHub()
				<-hub.Done()

				if err := store.Close(); err != nil {
					errs = append(errs, fmt.Sprintf("store: %v", err))
				}

				if len(errs) > 0 {
					return fmt.Errorf("shutdown: %s", strings.Join(errs, "; "))
				}
				return nil
			},
		},
	)

	exitCode := <-wait
	log.Printf("Server exited with code: %d", exitCode)
	os.Exit(exitCode)
}

// restore loads persisted rooms and history into the hub and greets empty
// default rooms
func restore(hub *ws.Hub, store *storage.Store, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if err := hub.Restore(ctx, snap); err != nil {
		return err
	}

	rooms, err := hub.ListRooms(ctx)
	if err != nil {
		return err
	}
	defaults := make(map[string]bool, len(cfg.DefaultRooms))
	for _, id := range cfg.DefaultRooms {
		if slug, err := usecase.NormalizeRoomID(id); err == nil {
			defaults[slug] = true
		}
	}
	for _, room := range rooms {
		if defaults[room.ID] && room.MessageCount == 0 {
			text := fmt.Sprintf("Welcome to #%s!", room.Name)
			if _, err := hub.PostSystemMessage(ctx, room.ID, text); err != nil {
				return err
			}
		}
	}
	return nil
}
