// ABOUTME: Configured zerolog logger shared by the CLI and MCP server
// ABOUTME: Adds pkg/errors stack marshaling and console or JSON output
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

// Options controls level, output format and destination
type Options struct {
	Level  string // trace, debug, info, warn, error; defaults to warn
	Format string // console or json; defaults to console
	Out    io.Writer
}

type stackTracer interface{ StackTrace() pkgerrors.StackTrace }

// New returns a logger tagged with the service name.
// Call sites should use .Stack() on error events to include stacks.
func New(service string, opts Options) zerolog.Logger {
	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		if _, ok := err.(stackTracer); !ok {
			err = pkgerrors.WithStack(err)
		}
		return zpkgerrors.MarshalStack(err)
	}

	out := opts.Out
	if out == nil {
		// stdout carries command output
		out = os.Stderr
	}
	if strings.EqualFold(opts.Format, "console") || opts.Format == "" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: !isTerminal(out)}
	}

	return zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().
		Str("service", service).
		Timestamp().
		Logger()
}

// ParseLevel maps a level name to a zerolog level, falling back to warn
func ParseLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.WarnLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.WarnLevel
	}
	return lvl
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
