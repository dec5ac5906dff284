package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type LogFormat string

const (
	FormatJSON    LogFormat = "json"
	FormatConsole LogFormat = "console"
)

// ParseLogFormat falls back to JSON for anything it does not recognize.
func ParseLogFormat(format string) LogFormat {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "console":
		return FormatConsole
	default:
		return FormatJSON
	}
}

type Config struct {
	Level      string    // debug, info, warn, error
	Format     LogFormat // json or console
	Output     io.Writer // default os.Stdout
	TimeFormat string    // default time.RFC3339
}

// Logger wraps zerolog.Logger so callers keep zerolog's event API.
type Logger struct {
	zerolog.Logger
}

var (
	mu     sync.RWMutex
	global *Logger
)

// Setup replaces the process-wide logger.
func Setup(cfg Config) *Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	var zl zerolog.Logger
	switch cfg.Format {
	case FormatConsole:
		zl = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: cfg.TimeFormat})
	default:
		zl = zerolog.New(out)
	}

	l := &Logger{Logger: zl.Level(level).With().Timestamp().Logger()}

	mu.Lock()
	global = l
	mu.Unlock()
	return l
}

// Get returns the process-wide logger, creating an info-level JSON logger on
// first use if Setup was never called.
func Get() *Logger {
	mu.RLock()
	l := global
	mu.RUnlock()
	if l != nil {
		return l
	}
	return Setup(Config{Level: "info", Format: FormatJSON})
}

// Component returns a child logger tagged with the component name.
func Component(name string) *Logger {
	return &Logger{Logger: Get().With().Str("component", name).Logger()}
}

// GinMiddleware logs one line per request.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l := Get()
		ev := l.Info()
		if status := c.Writer.Status(); status >= 500 {
			ev = l.Error()
		} else if status >= 400 {
			ev = l.Warn()
		}
		ev.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", c.Writer.Status()).
			Str("ip", c.ClientIP()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}
