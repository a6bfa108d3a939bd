package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr       string
	AppEnv     string
	Store      StoreConfig
	Logger     LoggerConfig
	Admin      AdminConfig
	JWTSecret  string
	TokenTTL   time.Duration
	NodeID     int64
	AllowReset bool
	// LocalSession makes the stored currentUser/adminUser pointers authoritative
	// for requests that carry no token (single-user kiosk deployments).
	LocalSession bool
}

type StoreConfig struct {
	Driver        string
	BoltPath      string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Namespace     string
}

type LoggerConfig struct {
	Mode       string
	Level      string
	FileEnable bool
	Filename   string
}

// AdminConfig is the single admin credential pair of the console.
type AdminConfig struct {
	Email    string
	Password string
}

const (
	DriverMemory   = "memory"
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Load reads configuration from an optional .env file and the environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:   getEnv("GROCERY_ADDR", ":8080"),
		AppEnv: getEnv("APP_ENV", "development"),
		Store: StoreConfig{
			Driver:        strings.ToLower(getEnv("STORE_DRIVER", DriverBolt)),
			BoltPath:      getEnv("STORE_BOLT_PATH", "grocery.db"),
			DatabaseURL:   getEnv("DATABASE_URL", ""),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			Namespace:     getEnv("STORE_NAMESPACE", "grocery"),
		},
		Logger: LoggerConfig{
			Mode:       getEnv("LOGGER_MODE", "development"),
			Level:      getEnv("LOGGER_LEVEL", "debug"),
			FileEnable: getEnvBool("LOGGER_FILE_ENABLE", false),
			Filename:   getEnv("LOGGER_FILENAME", "logs/grocery.log"),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@grocery.com"),
			Password: getEnv("ADMIN_PASSWORD", "admin123"),
		},
		JWTSecret:    getEnv("JWT_SECRET", "change-me-in-production"),
		TokenTTL:     time.Duration(getEnvInt("JWT_TTL_HOURS", 72)) * time.Hour,
		NodeID:       int64(getEnvInt("NODE_ID", 1)),
		AllowReset:   getEnvBool("ALLOW_RESET", false),
		LocalSession: getEnvBool("LOCAL_SESSION", false),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := cast.ToIntE(strings.TrimSpace(value)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := cast.ToBoolE(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return fallback
}
