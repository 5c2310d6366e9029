package applog

import (
	"os"

	"github.com/rs/zerolog"
)

// Log is the debug logger. User-facing output goes through color prints;
// this channel carries traces of the external side effects (mounts, service
// control, file rewrites).
var Log zerolog.Logger

// Setup configures the logger. Debug output is enabled with PXELAB_DEBUG.
func Setup() {
	level := zerolog.InfoLevel
	if os.Getenv("PXELAB_DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func init() {
	Setup()
}
