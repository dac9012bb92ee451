package logging

import (
	"io"
	"log/slog"
)

// OrDiscard - Returns logger, or a logger discarding everything if logger is nil
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}

	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(1000)}))
}
