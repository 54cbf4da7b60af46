package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Log is the process logger. It is usable before Init with slog defaults.
var Log = slog.Default()

// Init installs a text handler at the requested level and makes it the slog default.
func Init(level, service string) {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	Log = slog.New(handler).With("service", service)
	slog.SetDefault(Log)
}
