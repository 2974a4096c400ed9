// Package logging builds the zerolog logger shared by the CLI, the use cases
// and the adapters.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the level, the console format and an optional log file.
type Config struct {
	Level  string
	Format string // "text" or "json"
	File   string
}

// New returns a logger writing to out, and to a rotated file when
// cfg.File is set. The returned closer releases the file.
func New(cfg Config, out io.Writer) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	var w io.Writer
	switch cfg.Format {
	case "", "text":
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	case "json":
		w = out
	default:
		return zerolog.Nop(), nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		w = io.MultiWriter(w, file)
		closer = file
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), closer, nil
}

// Init builds the logger for stderr and installs it as the global logger.
func Init(cfg Config) (zerolog.Logger, io.Closer, error) {
	logger, closer, err := New(cfg, os.Stderr)
	if err != nil {
		return logger, nil, err
	}
	log.Logger = logger
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
