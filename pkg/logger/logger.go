// Package logger builds the process-wide zerolog logger. cmd/backoffice calls
// Init once and hands the result to every component.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls how Init builds the logger.
type Options struct {
	// Level is trace, debug, info, warn or error; anything else means info.
	Level string
	// Pretty switches stdout to zerolog's console format. Production keeps JSON.
	Pretty bool
	// Output replaces os.Stdout.
	Output io.Writer
	// File tees JSON entries into a rotated file (LOG_FILE).
	File string
	// Service is stamped on every entry when set.
	Service string
}

// Rotation limits for Options.File.
const (
	fileMaxSizeMB  = 100
	fileMaxBackups = 5
	fileMaxAgeDays = 28
)

var (
	mu      sync.Mutex
	current *zerolog.Logger
)

// Init builds the process logger from opts. Later calls return the logger
// built by the first one.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		l := build(opts)
		current = &l
	}
	return *current
}

// Reset forgets the logger so the next Init builds a fresh one. Tests only.
func Reset() {
	mu.Lock()
	current = nil
	mu.Unlock()
}

func build(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var out io.Writer = os.Stdout
	if opts.Output != nil {
		out = opts.Output
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	if opts.File != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    fileMaxSizeMB,
			MaxBackups: fileMaxBackups,
			MaxAge:     fileMaxAgeDays,
			Compress:   true,
		})
	}

	level := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(level)

	ctx := zerolog.New(out).Level(level).With().Timestamp().Caller()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	return ctx.Logger()
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	switch s {
	case "trace", "debug", "warn", "error":
		level, _ := zerolog.ParseLevel(s)
		return level
	}
	return zerolog.InfoLevel
}
