package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls the process-wide logger. With the LOG prefix the fields
// map to LOG_DEBUG and LOG_PRETTY_FORMAT.
type Config struct {
	Debug        bool `split_words:"true" default:"false"`
	PrettyFormat bool `split_words:"true" default:"false"`
}

// Init replaces the global zerolog logger. Call once at startup before any
// log statement runs; the autoload package does this from its init.
func Init(opts ...Config) {
	var conf Config
	if len(opts) > 0 {
		conf = opts[0]
	}

	writer := io.Writer(os.Stdout)
	if conf.PrettyFormat {
		writer = zerolog.NewConsoleWriter()
	}

	level := zerolog.InfoLevel
	if conf.Debug {
		level = zerolog.DebugLevel
	}

	log.Logger = zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Caller().
		Stack().
		Logger()
}
