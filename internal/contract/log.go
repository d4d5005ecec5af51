package contract

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// LogOptions configures the process logger.
type LogOptions struct {
	Level  string
	Format string
	Writer io.Writer
}

var (
	logOnce sync.Once
	rootLog atomic.Pointer[zerolog.Logger]
)

// InitLogger configures the root logger. Only the first call has an effect.
// Logs go to stderr so stdout stays a clean data channel.
func InitLogger(opt LogOptions) {
	logOnce.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		var w io.Writer = os.Stderr
		if opt.Writer != nil {
			w = opt.Writer
		}
		if strings.ToLower(opt.Format) != "json" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}

		log := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp().Str("app", "govscope").Logger()
		rootLog.Store(&log)
	})
}

// Logger returns the root logger, initializing it with defaults on first use.
func Logger() *zerolog.Logger {
	if l := rootLog.Load(); l != nil {
		return l
	}
	InitLogger(LogOptions{Level: "info"})
	return rootLog.Load()
}

// Named returns a child logger with a component field.
func Named(component string) *zerolog.Logger {
	l := Logger().With().Str("component", component).Logger()
	return &l
}

// parseLevel supports string-only levels.
func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger().Error().Err(err).Msg(msg)
	os.Exit(1)
}

// LogWarn logs a warning message.
func LogWarn(msg string, err error) {
	Logger().Warn().Err(err).Msg(msg)
}
