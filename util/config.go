package util

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Server config
type Config struct {
	// Listening port of the HTTP and websocket server
	Port string

	// Interval between two liveness probes of every connection
	HeartbeatInterval time.Duration

	// Websocket URL advertised to clients (QR code)
	PublicWSURL string

	// Redis config, empty disables deferred notifications
	RedisAddr string

	// Recurring announcement broadcast, disabled if schedule is empty
	AnnounceSchedule string
	AnnounceTitle    string
	AnnounceMessage  string

	// Schedule of the connected clients log line
	StatsSchedule string
}

// Client config
type ClientConfig struct {
	WebsocketURL string

	// Reconnect policy: "fixed" waits ReconnectInterval between attempts,
	// "exponential" starts at ReconnectInterval and doubles up to ReconnectMaxInterval
	ReconnectInterval    time.Duration
	ReconnectMaxInterval time.Duration
	ReconnectBackoff     string

	// Send an acknowledgement back for every displayed notification
	Acknowledge bool

	// Initial permission: "prompt", "granted" or "denied"
	Permission string

	// Pretend the terminal can't display notifications (alert fallback)
	Unsupported bool
}

// Load server config from the .env file at path, falling back to the process
// environment when the file doesn't exist.
func LoadConfig(path string) *Config {
	// The .env file is optional, variables may come from the environment
	_ = godotenv.Load(path)

	port := getEnv("PORT", "5000")

	return &Config{
		Port:              port,
		HeartbeatInterval: getSeconds("HEARTBEAT_INTERVAL", 30),
		PublicWSURL:       getEnv("PUBLIC_WS_URL", fmt.Sprintf("ws://localhost:%s", port)),
		RedisAddr:         os.Getenv("REDIS_ADDRESS"),
		AnnounceSchedule:  os.Getenv("ANNOUNCE_SCHEDULE"),
		AnnounceTitle:     getEnv("ANNOUNCE_TITLE", "Announcement"),
		AnnounceMessage:   os.Getenv("ANNOUNCE_MESSAGE"),
		StatsSchedule:     getEnv("STATS_SCHEDULE", "@every 1m"),
	}
}

// Load client config the same way as the server config
func LoadClientConfig(path string) *ClientConfig {
	_ = godotenv.Load(path)

	return &ClientConfig{
		WebsocketURL:         getEnv("NOTIFY_WS_URL", "ws://localhost:5000"),
		ReconnectInterval:    getSeconds("RECONNECT_INTERVAL", 5),
		ReconnectMaxInterval: getSeconds("RECONNECT_MAX_INTERVAL", 60),
		ReconnectBackoff:     getEnv("RECONNECT_BACKOFF", "fixed"),
		Acknowledge:          getBool("NOTIFY_ACK", true),
		Permission:           getEnv("NOTIFY_PERMISSION", "prompt"),
		Unsupported:          getBool("NOTIFY_UNSUPPORTED", false),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// Read a whole number of seconds, fallback on missing or invalid values
func getSeconds(key string, fallback int) time.Duration {
	seconds, err := strconv.Atoi(os.Getenv(key))
	if err != nil || seconds <= 0 {
		seconds = fallback
	}
	return time.Second * time.Duration(seconds)
}

func getBool(key string, fallback bool) bool {
	val, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return val
}
