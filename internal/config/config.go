package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// 永続化バックエンド
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Backend API
	APIBaseURL   string
	APITimeout   time.Duration
	APIRateLimit float64
	APIRateBurst int
	StrictEgress bool

	// Client
	AppVersion  string
	AppPlatform string
	PushToken   string
	PageSize    int

	// Local storage
	StoreBackend  string
	StorePath     string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Session
	SessionRefreshInterval time.Duration

	// Logging
	LogLevel string

	// Server
	ServerHost string
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// LoadEnvFile は.envファイルを環境変数に読み込む。
// 既に設定されている環境変数は上書きしない。ファイルが存在しない場合は何もしない。
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	var missing []string

	cfg.APIBaseURL = strings.TrimRight(os.Getenv("API_BASE_URL"), "/")
	if cfg.APIBaseURL == "" {
		missing = append(missing, "API_BASE_URL")
	}

	cfg.StoreBackend = strings.ToLower(getEnvString("STORE_BACKEND", StoreFile))
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.StoreBackend == StorePostgres && cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	switch cfg.StoreBackend {
	case StoreFile, StoreMemory, StorePostgres, StoreRedis:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND: %q (want file, memory, postgres or redis)", cfg.StoreBackend)
	}

	// Optional fields with defaults
	cfg.APITimeout = getEnvDuration("API_TIMEOUT", 0)
	cfg.APIRateLimit = getEnvFloat("API_RATE_LIMIT", 10)
	cfg.APIRateBurst = getEnvInt("API_RATE_BURST", 20)
	cfg.StrictEgress = getEnvBool("STRICT_EGRESS", false)
	cfg.AppVersion = getEnvString("APP_VERSION", "1.0.0")
	cfg.AppPlatform = getEnvString("APP_PLATFORM", "android")
	cfg.PushToken = os.Getenv("PUSH_TOKEN")
	cfg.PageSize = getEnvInt("PAGE_SIZE", 20)
	cfg.StorePath = getEnvString("STORE_PATH", "giftdesk-state.json")
	cfg.RedisAddr = getEnvString("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)
	cfg.SessionRefreshInterval = getEnvDuration("SESSION_REFRESH_INTERVAL", 10*time.Minute)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.ServerHost = getEnvString("SERVER_HOST", "127.0.0.1")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8787")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
