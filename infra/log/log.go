package log

import (
	"os"

	"github.com/rs/zerolog"
)

type Logger = zerolog.Logger

// New builds the process logger. Unknown levels fall back to info.
func New(level string, pretty bool) Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var out = os.Stderr
	l := zerolog.New(out).With().Timestamp().Logger()
	if pretty {
		l = l.Output(zerolog.ConsoleWriter{Out: out})
	}
	return l.Level(lvl)
}
