package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger builds the JSON logger for the service. When LogFile is set,
// records also go to a size-rotated file.
func (c *Config) NewLogger() (*slog.Logger, io.Closer) {
	var w io.Writer = os.Stdout
	var closer io.Closer = io.NopCloser(nil)

	if c.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   c.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		w = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     parseLevel(c.LogLevel),
		AddSource: true,
	})
	return slog.New(handler), closer
}
