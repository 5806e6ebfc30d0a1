package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App           AppConfig
	Backend       BackendConfig
	Storage       StorageConfig
	Events        EventsConfig
	Session       SessionConfig
	Transcription TranscriptionConfig
	Channel       ChannelConfig
	Tracing       TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	StateLogFilePath   string
	CorsAllowedOrigins string
}

type BackendConfig struct {
	APIURL         string
	WebSocketURL   string
	RequestTimeout time.Duration
}

type StorageConfig struct {
	Driver     string // "memory", "sqlite", "redis" or "postgres"
	SQLitePath string
	RedisURL   string
	Connection string
}

type EventsConfig struct {
	NatsURL string // empty disables the NATS mirror
	Topic   string
}

type SessionConfig struct {
	TTL time.Duration
}

type TranscriptionConfig struct {
	MaxUploadBytes     int64
	HistoryLimit       int
	ProgressClearDelay time.Duration
	FFprobePath        string
}

type ChannelConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	apiURL := getEnv("BACKEND_API_URL", "http://localhost:8000/api/v1")

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3100"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "whisper-client.log"),
			StateLogFilePath:   getEnv("STATE_LOG_FILE_PATH", "logs/state_feed.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Backend: BackendConfig{
			APIURL:         apiURL,
			WebSocketURL:   getEnv("BACKEND_WS_URL", deriveWebSocketURL(apiURL)),
			RequestTimeout: getEnvAsDuration("BACKEND_REQUEST_TIMEOUT", 10*time.Minute),
		},
		Storage: StorageConfig{
			Driver:     getEnv("STORAGE_DRIVER", "sqlite"),
			SQLitePath: getEnv("STORAGE_SQLITE_PATH", "whisper-client.sqlite"),
			RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Events: EventsConfig{
			NatsURL: getEnv("NATS_URL", ""),
			Topic:   getEnv("EVENTS_TOPIC", "state.changed"),
		},
		Session: SessionConfig{
			TTL: getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		},
		Transcription: TranscriptionConfig{
			MaxUploadBytes:     int64(getEnvAsInt("MAX_UPLOAD_BYTES", 100*1024*1024)),
			HistoryLimit:       getEnvAsInt("HISTORY_LIMIT", 50),
			ProgressClearDelay: getEnvAsDuration("PROGRESS_CLEAR_DELAY", 2*time.Second),
			FFprobePath:        getEnv("FFPROBE_PATH", "ffprobe"),
		},
		Channel: ChannelConfig{
			MaxAttempts: getEnvAsInt("CHANNEL_MAX_ATTEMPTS", 5),
			BaseDelay:   getEnvAsDuration("CHANNEL_BASE_DELAY", time.Second),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "whisper-client"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// deriveWebSocketURL turns http://host:port/api/v1 into ws://host:port.
func deriveWebSocketURL(apiURL string) string {
	u := apiURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	if idx := strings.Index(u, "/api"); idx > 0 {
		u = u[:idx]
	}
	return strings.TrimRight(u, "/")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
