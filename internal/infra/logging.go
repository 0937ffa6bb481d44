package infra

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns the process logger: human-readable console output in
// development, plain JSON everywhere else so log collectors can parse it.
func NewLogger(env string, out io.Writer) zerolog.Logger {
	if env != "production" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}
