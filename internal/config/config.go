package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig PostgreSQL 连接配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN returns the lib/pq keyword/value connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis Streams 事件发布配置
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Stream   string
}

// MQTTConfig MQTT 事件发布配置（默认禁用）
type MQTTConfig struct {
	Enabled  bool
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// ScreeningConfig moderation API settings. An empty APIKey disables screening.
type ScreeningConfig struct {
	APIKey          string
	BaseURL         string
	ModerationModel string
	ChatModel       string
	Timeout         time.Duration
}

// Enabled reports whether a credential is configured.
func (c ScreeningConfig) Enabled() bool { return c.APIKey != "" }

// SuggestConfig name autocomplete settings
type SuggestConfig struct {
	Debounce time.Duration
	Limit    int
}

// Config cake-tracker (HTTP API) 配置
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  DatabaseConfig
	Redis     RedisConfig
	MQTT      MQTTConfig
	Log       struct {
		Level  string
		Format string
	}
	Screening ScreeningConfig
	Suggest   SuggestConfig
	Dashboard struct {
		LeaderboardSize int
		RecentSize      int
		RankingSize     int
	}
	Timezone *time.Location
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// DB disabled falls back to the in-memory repository.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "cake_tracker")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Enabled = getEnv("REDIS_ENABLED", "false") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)
	cfg.Redis.Stream = getEnv("REDIS_STREAM", "cake:incidents")

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "cake-tracker")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "cake/incidents")
	cfg.MQTT.QoS = byte(parseInt(getEnv("MQTT_QOS", "1"), 1))

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Screening.APIKey = getEnv("SCREENING_API_KEY", os.Getenv("OPENAI_API_KEY"))
	cfg.Screening.BaseURL = getEnv("SCREENING_BASE_URL", "https://api.openai.com/v1")
	cfg.Screening.ModerationModel = getEnv("SCREENING_MODERATION_MODEL", "omni-moderation-latest")
	cfg.Screening.ChatModel = getEnv("SCREENING_CHAT_MODEL", "gpt-4o-mini")
	cfg.Screening.Timeout = parseDuration(getEnv("SCREENING_TIMEOUT", "15s"), 15*time.Second)

	cfg.Suggest.Debounce = parseDuration(getEnv("SUGGEST_DEBOUNCE", "500ms"), 500*time.Millisecond)
	cfg.Suggest.Limit = parseInt(getEnv("SUGGEST_LIMIT", "5"), 5)

	cfg.Dashboard.LeaderboardSize = 5
	cfg.Dashboard.RecentSize = 10
	cfg.Dashboard.RankingSize = 10

	cfg.Timezone = time.Local
	if tz := getEnv("APP_TIMEZONE", ""); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			cfg.Timezone = loc
		}
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
