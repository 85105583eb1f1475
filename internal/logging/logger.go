package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the global logger instance used throughout the application.
var Logger *slog.Logger

func init() {
	InitLogger("")
}

// InitLogger initializes the global logger writing to stderr.
// Log level is controlled by the argument, falling back to the LOG_LEVEL
// environment variable (debug, info, warn, error) and then to info.
func InitLogger(logLevel string) {
	InitLoggerTo(os.Stderr, logLevel)
}

// InitLoggerTo is InitLogger with an explicit destination.
func InitLoggerTo(w io.Writer, logLevel string) {
	if logLevel == "" {
		logLevel = os.Getenv("LOG_LEVEL")
	}

	Logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(logLevel),
	}))
}

// ParseLevel maps a level name to a slog level. Unknown names are info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
