package telemetry

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stdout, "json", zerolog.InfoLevel)
)

// Configure replaces the process logger. format is "json" or "console".
func Configure(out io.Writer, format, level string) {
	if out == nil {
		out = os.Stdout
	}
	l := newLogger(out, format, ParseLevel(level))
	mu.Lock()
	logger = l
	mu.Unlock()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write(current().Info(), msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write(current().Warn(), msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write(current().Error(), msg, fields)
}

func write(event *zerolog.Event, msg string, fields map[string]any) {
	if event == nil {
		return
	}
	for k, v := range fields {
		if err, ok := v.(error); ok {
			event = event.AnErr(k, err)
			continue
		}
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func newLogger(out io.Writer, format string, level zerolog.Level) *zerolog.Logger {
	if strings.EqualFold(strings.TrimSpace(format), "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	zerolog.TimeFieldFormat = time.RFC3339
	l := zerolog.New(out).With().Timestamp().Logger().Level(level)
	return &l
}
