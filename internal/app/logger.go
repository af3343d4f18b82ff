package app

import (
	"log/slog"
	"os"
	"strings"

	"github.com/jaqb8/lingocheck/internal/config"
)

// NewLogger builds the process-wide slog logger from LogConfig and
// installs it as the slog default, so library code that grabs
// slog.Default ends up on the same handler.
//
// "json" format is for deployments; "text" adds source locations for
// local work. Unknown levels fall back to info. Everything goes to
// stderr, keeping stdout free for the process itself.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: strings.EqualFold(cfg.Format, "text"),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
