package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// The TUI owns the terminal, so all logging goes to a file. Until Init is
// called every helper is a no-op.
var (
	mu   sync.Mutex
	log  = zerolog.Nop()
	file *os.File
)

// Init opens (or creates) the log file and configures the package logger.
// Calling Init again replaces the previous destination.
func Init(path, level string) error {
	mu.Lock()
	defer mu.Unlock()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	if file != nil {
		file.Close()
	}
	file = f
	log = zerolog.New(f).Level(lvl).With().Timestamp().Logger()
	return nil
}

// Close flushes and releases the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
	}
	log = zerolog.Nop()
}

func Debugf(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	log.Debug().Msgf(format, v...)
}

func Infof(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	log.Info().Msgf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	log.Warn().Msgf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	log.Error().Msgf(format, v...)
}
