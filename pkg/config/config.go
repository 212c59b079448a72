package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Upstream UpstreamConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Cache    CacheConfig
	Search   SearchConfig
	Flyers   FlyersConfig
}

// UpstreamConfig points at the remote captives registry API.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig tunes the short-lived list cache in front of the upstream.
type CacheConfig struct {
	Enabled bool
	ListTTL time.Duration
}

// SearchConfig governs remote-search working sets.
type SearchConfig struct {
	SessionTTL time.Duration
	CookieName string
}

// FlyersConfig configures asynchronous flyer PDF generation.
type FlyersConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Upstream = UpstreamConfig{
		BaseURL: v.GetString("UPSTREAM_BASE_URL"),
		Timeout: parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 15*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_LIST_CACHE"),
		ListTTL: parseDuration(v.GetString("LIST_CACHE_TTL"), time.Minute),
	}

	cfg.Search = SearchConfig{
		SessionTTL: parseDuration(v.GetString("SEARCH_SESSION_TTL"), 30*time.Minute),
		CookieName: v.GetString("SEARCH_SESSION_COOKIE"),
	}

	cfg.Flyers = FlyersConfig{
		Enabled:           v.GetBool("ENABLE_FLYERS"),
		StorageDir:        v.GetString("FLYERS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("FLYERS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("FLYERS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("FLYERS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("FLYERS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("FLYERS_WORKER_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("UPSTREAM_BASE_URL", "http://localhost:8000")
	v.SetDefault("UPSTREAM_TIMEOUT", "15s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_LIST_CACHE", false)
	v.SetDefault("LIST_CACHE_TTL", "1m")

	v.SetDefault("SEARCH_SESSION_TTL", "30m")
	v.SetDefault("SEARCH_SESSION_COOKIE", "search_session")

	v.SetDefault("ENABLE_FLYERS", false)
	v.SetDefault("FLYERS_STORAGE_DIR", "./flyers")
	v.SetDefault("FLYERS_SIGNED_URL_SECRET", "dev_flyers_secret")
	v.SetDefault("FLYERS_SIGNED_URL_TTL", "24h")
	v.SetDefault("FLYERS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("FLYERS_WORKER_CONCURRENCY", 1)
	v.SetDefault("FLYERS_WORKER_RETRIES", 3)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
