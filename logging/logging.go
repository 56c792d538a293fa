// Package logging configures the logger shared by the dispatcher and the
// loops: a human-readable console stream, optionally teed into a
// size-rotated log file.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Defaults for file rotation.
const (
	// DefaultMaxSizeMB is the file size that triggers a rotation.
	DefaultMaxSizeMB = 5
	// DefaultMaxBackups is how many rotated files are kept.
	DefaultMaxBackups = 3
)

// Config selects log destinations and verbosity.
type Config struct {
	// File is the log file path. Empty disables file logging.
	File string

	// MaxSizeMB is the rotation threshold. Zero means DefaultMaxSizeMB.
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept. Zero means
	// DefaultMaxBackups.
	MaxBackups int

	// Level is the minimum level; empty means info.
	Level string

	// Console enables the human-readable stderr stream.
	Console bool
}

// New builds a logger from the configuration. With neither file nor
// console enabled it returns a no-op logger.
func New(cfg Config) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02 15:04:05",
		})
	}
	if cfg.File != "" {
		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = DefaultMaxSizeMB
		}
		maxBackups := cfg.MaxBackups
		if maxBackups <= 0 {
			maxBackups = DefaultMaxBackups
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
		})
	}
	if len(writers) == 0 {
		return zerolog.Nop()
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var out io.Writer = writers[0]
	if len(writers) > 1 {
		out = zerolog.MultiLevelWriter(writers...)
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
