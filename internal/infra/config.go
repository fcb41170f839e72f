package infra

import (
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	StoragePath      string
	GeoIPDBPath      string
	OpenAIAPIKey     string
	OpenAIImageModel string
	OpenAIChatModel  string
	OpenAIBaseURL    string
	OpenAIOrg        string

	SyncGenerateTimeout time.Duration
	WorkerTimeout       time.Duration
	PollInterval        time.Duration
	PollTimeout         time.Duration
	JobTTL              time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	MaxUploadBytes   int64
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. DATABASE_URL is optional: without it the API runs in
// synchronous-only mode and the worker refuses to start.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		StoragePath:      getEnv("STORAGE_PATH", "./storage"),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIImageModel: getEnv("OPENAI_IMAGE_MODEL", "gpt-image-1"),
		OpenAIChatModel:  getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:        os.Getenv("OPENAI_ORG"),

		SyncGenerateTimeout: time.Second * time.Duration(getEnvInt("SYNC_GENERATE_TIMEOUT_SECONDS", 170)),
		WorkerTimeout:       time.Second * time.Duration(getEnvInt("WORKER_TIMEOUT_SECONDS", 180)),
		PollInterval:        time.Second * time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 3)),
		PollTimeout:         time.Second * time.Duration(getEnvInt("POLL_TIMEOUT_SECONDS", 120)),
		JobTTL:              time.Second * time.Duration(getEnvInt("JOB_TTL_SECONDS", 3600)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_BYTES", 8<<20)),
	}

	// The submit handler blocks for the full synchronous ceiling before it can
	// write the failed-with-fallbacks body, so the sync timeout must leave room
	// inside the server's write budget or the connection is cut mid-generation.
	margin := cfg.HTTPWriteTimeout - syncResponseMargin
	if margin < time.Second {
		margin = time.Second
	}
	if cfg.SyncGenerateTimeout > margin {
		cfg.SyncGenerateTimeout = margin
	}

	return cfg, nil
}

// syncResponseMargin is the slice of the write budget reserved for encoding and
// flushing the submit response after a synchronous generation finishes.
const syncResponseMargin = 10 * time.Second

// AsyncEnabled reports whether the async job backend can be configured.
func (c *Config) AsyncEnabled() bool {
	return c.DatabaseURL != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
