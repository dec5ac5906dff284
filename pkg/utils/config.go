package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type ServerConfig struct {
	HTTPAddr   string
	SyncAddr   string
	SeedPath   string
	Persist    bool
	ConfirmTTL time.Duration
	LogLevel   string
	LogFormat  string
}

func LoadServerConfig() ServerConfig {
	return ServerConfig{
		HTTPAddr:   getenv("BOOKSWAP_HTTP_ADDR", ":8080"),
		SyncAddr:   getenv("BOOKSWAP_SYNC_ADDR", ":7070"),
		SeedPath:   os.Getenv("BOOKSWAP_SEED_PATH"),
		Persist:    getbool("BOOKSWAP_PERSIST", false),
		ConfirmTTL: getduration("BOOKSWAP_CONFIRM_TTL", 2*time.Minute),
		LogLevel:   getenv("BOOKSWAP_LOG_LEVEL", "info"),
		LogFormat:  getenv("BOOKSWAP_LOG_FORMAT", "console"),
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getbool falls back to def when the value does not parse.
func getbool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// getduration accepts Go durations ("90s", "2m"); anything else falls back to def.
func getduration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def
	}
	return d
}
