package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Chat     ChatConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	SocketLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	ShutdownTimeout    time.Duration
}

type DatabaseConfig struct {
	Connection      string
	Debug           bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	JwtSecret string
}

type ChatConfig struct {
	HistoryDefaultSize int
	HistoryMaxSize     int
	RateLimit          int
	RateWindow         time.Duration
	RoomCacheTTL       time.Duration
	EventTopic         string
	ReceiptDurable     string
	SendBuffer         int
}

func (c AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			SocketLogFilePath:  getEnv("SOCKET_LOG_FILE_PATH", "logs/chat_ws.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			ShutdownTimeout:    getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Connection:      getEnv("DB_CONNECTION_STRING", ""),
			Debug:           getEnvAsBool("DB_DEBUG", false),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Auth: AuthConfig{
			JwtSecret: getEnv("JWT_SECRET", ""),
		},
		Chat: ChatConfig{
			HistoryDefaultSize: getEnvAsInt("CHAT_HISTORY_DEFAULT_SIZE", 50),
			HistoryMaxSize:     getEnvAsInt("CHAT_HISTORY_MAX_SIZE", 200),
			RateLimit:          getEnvAsInt("CHAT_RATE_LIMIT", 30),
			RateWindow:         getEnvAsDuration("CHAT_RATE_WINDOW", 10*time.Second),
			RoomCacheTTL:       getEnvAsDuration("CHAT_ROOM_CACHE_TTL", time.Hour),
			EventTopic:         getEnv("CHAT_EVENT_TOPIC", "chat_events"),
			ReceiptDurable:     getEnv("CHAT_RECEIPT_DURABLE", "chat-read-receipts"),
			SendBuffer:         getEnvAsInt("CHAT_SEND_BUFFER", 256),
		},
	}
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

// getEnvAsDuration accepts Go duration strings ("10s", "1h").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
