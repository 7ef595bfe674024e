package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port string

	// Security
	AllowedOrigins []string
	BcryptCost     int

	// Logging
	LogLevel string

	// WebSocket
	MaxMessageSize int
	SendBufferSize int

	// Rooms
	DefaultRooms       []string
	SingleRoomMode     bool
	HistoryHardCap     int
	HistorySoftCap     int
	JoinHistorySize    int
	PersistHistorySize int
	TypingTimeout      time.Duration

	// Persistence
	PersistInterval time.Duration
	StorageDriver   string // file, sqlite, redis
	DataDir         string
	SQLitePath      string
	RedisURL        string
	RedisPrefix     string
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Port:               "8080",
		AllowedOrigins:     []string{"http://localhost:8080", "http://localhost:3000"},
		BcryptCost:         bcrypt.DefaultCost,
		LogLevel:           "info", // Options: debug, info, silent
		MaxMessageSize:     domain.MaxMessageSize,
		SendBufferSize:     domain.SendBufferSize,
		DefaultRooms:       append([]string(nil), domain.DefaultRooms...),
		HistoryHardCap:     domain.HistoryHardCap,
		HistorySoftCap:     domain.HistorySoftCap,
		JoinHistorySize:    domain.JoinHistorySize,
		PersistHistorySize: domain.PersistHistorySize,
		TypingTimeout:      domain.TypingTimeout,
		PersistInterval:    domain.PersistInterval,
		StorageDriver:      "file",
		DataDir:            "./data",
		SQLitePath:         "./data/chat.db",
		RedisURL:           "redis://localhost:6379/0",
		RedisPrefix:        "goat-rooms:",
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	cfg := DefaultConfig()

	// Server
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	// Security
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = parseList(origins)
	}

	if cost := os.Getenv("BCRYPT_COST"); cost != "" {
		if val, err := strconv.Atoi(cost); err == nil && val >= bcrypt.MinCost && val <= bcrypt.MaxCost {
			cfg.BcryptCost = val
		}
	}

	// Logging
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	// WebSocket
	if size := os.Getenv("MAX_MESSAGE_SIZE"); size != "" {
		if val, err := strconv.Atoi(size); err == nil && val > 0 {
			cfg.MaxMessageSize = val
		}
	}

	if size := os.Getenv("SEND_BUFFER_SIZE"); size != "" {
		if val, err := strconv.Atoi(size); err == nil && val > 0 {
			cfg.SendBufferSize = val
		}
	}

	// Rooms
	if rooms := os.Getenv("DEFAULT_ROOMS"); rooms != "" {
		cfg.DefaultRooms = parseList(rooms)
	}

	if single := os.Getenv("SINGLE_ROOM_MODE"); single != "" {
		if val, err := strconv.ParseBool(single); err == nil {
			cfg.SingleRoomMode = val
		}
	}

	if size := os.Getenv("HISTORY_HARD_CAP"); size != "" {
		if val, err := strconv.Atoi(size); err == nil && val > 0 {
			cfg.HistoryHardCap = val
		}
	}

	if size := os.Getenv("HISTORY_SOFT_CAP"); size != "" {
		if val, err := strconv.Atoi(size); err == nil && val > 0 {
			cfg.HistorySoftCap = val
		}
	}

	// The soft cap must leave room below the hard cap or every append trims
	if cfg.HistorySoftCap >= cfg.HistoryHardCap {
		cfg.HistorySoftCap = cfg.HistoryHardCap / 2
	}

	if size := os.Getenv("JOIN_HISTORY_SIZE"); size != "" {
		if val, err := strconv.Atoi(size); err == nil && val > 0 {
			cfg.JoinHistorySize = val
		}
	}

	if size := os.Getenv("PERSIST_HISTORY_SIZE"); size != "" {
		if val, err := strconv.Atoi(size); err == nil && val > 0 {
			cfg.PersistHistorySize = val
		}
	}

	if ms := os.Getenv("TYPING_TIMEOUT_MS"); ms != "" {
		if val, err := strconv.Atoi(ms); err == nil && val > 0 {
			cfg.TypingTimeout = time.Duration(val) * time.Millisecond
		}
	}

	// Persistence
	if secs := os.Getenv("PERSIST_INTERVAL_SECONDS"); secs != "" {
		if val, err := strconv.Atoi(secs); err == nil && val > 0 {
			cfg.PersistInterval = time.Duration(val) * time.Second
		}
	}

	if driver := os.Getenv("STORAGE_DRIVER"); driver != "" {
		cfg.StorageDriver = strings.ToLower(driver)
	}

	if dir := os.Getenv("DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	if path := os.Getenv("SQLITE_PATH"); path != "" {
		cfg.SQLitePath = path
	}

	if url := os.Getenv("REDIS_URL"); url != "" {
		cfg.RedisURL = url
	}

	if prefix := os.Getenv("REDIS_PREFIX"); prefix != "" {
		cfg.RedisPrefix = prefix
	}

	return cfg
}

// parseList parses comma-separated values
func parseList(values string) []string {
	parts := strings.Split(values, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Global configuration instance
var AppConfig = LoadFromEnv()
