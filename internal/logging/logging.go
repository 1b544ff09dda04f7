// Package logging provides a single process-wide zerolog logger, built as
// a singleton with a console fallback before Init runs.
package logging

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	global zerolog.Logger
	once   sync.Once
	mu     sync.RWMutex
	inited bool
)

func fallback() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}).
		With().Timestamp().Logger().
		Level(zerolog.InfoLevel)
}

// Get returns the global logger. If Init hasn't been called yet, it
// returns a console fallback logger at info level so early startup code
// (before flags are parsed) can still log.
func Get() zerolog.Logger {
	mu.RLock()
	if inited {
		defer mu.RUnlock()
		return global
	}
	mu.RUnlock()

	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if !inited {
			global = fallback()
		}
	})
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Init configures the global logger at the given level ("debug", "info",
// "warn", or "error"; anything else falls back to "info") and stores it
// as the process-wide singleton.
func Init(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}).
		With().Timestamp().Logger().
		Level(lvl)

	mu.Lock()
	global = logger
	inited = true
	mu.Unlock()
	return logger
}
