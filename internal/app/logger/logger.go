package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

type Logger struct {
	zerolog.Logger
}

// Component is implemented by types that want a named component logger.
type Component interface {
	LoggerComponent() string
}

// New configures the global log level and output and returns the root logger.
func New(verbose, pretty bool) Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return Logger{log.Logger}
}

// Global returns the current global logger.
func Global() *Logger {
	return &Logger{log.Logger}
}

// Get returns the context logger scoped to the given component.
func Get(ctx context.Context, c interface{}) Logger {
	return Ctx(ctx).Component(c)
}

// Ctx extracts the logger attached to ctx.
func Ctx(ctx context.Context) Logger {
	return Logger{Logger: *zerolog.Ctx(ctx)}
}

// Component scopes the logger to c when c implements Component. Plain
// strings are accepted as component names.
func (l Logger) Component(c interface{}) Logger {
	if v, ok := c.(Component); ok {
		return l.WithComponent(v.LoggerComponent())
	}
	if s, ok := c.(string); ok {
		return l.WithComponent(s)
	}
	return l
}

// WithComponent returns a child logger tagged with the component name.
func (l Logger) WithComponent(name string) Logger {
	return Logger{Logger: l.With().Str("component", name).Logger()}
}
