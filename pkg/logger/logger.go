package logger

import (
	"fmt"
	"log/slog"
	"os"
)

// Loggers bundles the application loggers. Info and Debug write to stdout,
// Error writes to stderr so operators can split the streams.
type Loggers struct {
	InfoLogger  *slog.Logger
	DebugLogger *slog.Logger
	ErrorLogger *slog.Logger
}

func SetupLogger(level string) (*Loggers, error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info", "":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	out := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	errOut := slog.New(slog.NewJSONHandler(os.Stderr, opts))

	return &Loggers{
		InfoLogger:  out,
		DebugLogger: out,
		ErrorLogger: errOut,
	}, nil
}
