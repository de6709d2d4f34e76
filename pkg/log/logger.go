package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

type LoggerType uint8

const (
	ConsoleLogger LoggerType = iota
	JSONLogger
)

var (
	Root      zerolog.Logger
	Client    zerolog.Logger
	RPC       zerolog.Logger
	Registrar zerolog.Logger
	Store     zerolog.Logger
)

// Options for the root logger.
type Options struct {
	// Enable Debug loglevel, default Info
	LogLevel zerolog.Level
	Type     LoggerType
}

func ParseLogLevel(loglevel string) (zerolog.Level, error) {
	return zerolog.ParseLevel(loglevel)
}

func Init(opts Options) {
	switch opts.Type {
	case ConsoleLogger:
		cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		Root = zerolog.New(cw).Level(opts.LogLevel).
			With().Timestamp().Logger()
	default:
		Root = zerolog.New(os.Stderr).Level(opts.LogLevel).
			With().Timestamp().Logger()
	}
	Client = Root.With().Str("component", "client").Logger()
	RPC = Root.With().Str("component", "rpc").Logger()
	Registrar = Root.With().Str("component", "registrar").Logger()
	Store = Root.With().Str("component", "store").Logger()
}
