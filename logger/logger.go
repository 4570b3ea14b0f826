// Package logger configures the global zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const milliTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Init sets the global level and output. Logs go to stderr so tables printed
// on stdout stay clean. An unknown level falls back to info.
func Init(level, format string) {
	InitWithWriter(level, format, os.Stderr)
}

func InitWithWriter(level, format string, out io.Writer) {
	zerolog.TimeFieldFormat = milliTimeFormat
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }

	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	output := out
	if format != "json" {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: milliTimeFormat,
			NoColor:    true,
		}
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()

	log.Debug().
		Str("level", parsed.String()).
		Str("format", format).
		Msg("Logger initialized")
}
