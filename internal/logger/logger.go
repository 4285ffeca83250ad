// Package logger builds the application's zerolog logger.
//
// Every component receives a zerolog.Logger through its constructor and adds
// its own context fields (component, resource, ...) with With().
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"peopleapi/internal/config"
)

// New creates a logger writing to stdout according to cfg.
// Timestamps are rendered in loc; a nil loc means UTC.
func New(cfg config.LogConfig, loc *time.Location) zerolog.Logger {
	return NewWithWriter(os.Stdout, cfg, loc)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, cfg config.LogConfig, loc *time.Location) zerolog.Logger {
	if loc == nil {
		loc = time.UTC
	}

	if strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(ParseLevel(cfg.Level)).
		Hook(timestampHook{loc: loc})
}

// timestampHook stamps each event in its own location, leaving the
// zerolog package globals alone.
type timestampHook struct {
	loc *time.Location
}

func (h timestampHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str(zerolog.TimestampFieldName, time.Now().In(h.loc).Format(time.RFC3339Nano))
}

// ParseLevel converts a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Location loads the named time zone, falling back to UTC.
func Location(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
