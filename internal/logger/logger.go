// Package logger is the process-wide leveled log for the trading pipeline.
// Cycles, gates and transports all write through the package-level printf
// helpers; main points the output at a file once the config is loaded.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	level slog.LevelVar

	mu   sync.RWMutex
	root *slog.Logger
)

func init() {
	level.Set(slog.LevelInfo)
	root = build(os.Stdout)
}

func build(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: &level}))
}

// SetOutput redirects all subsequent log lines, typically to a MultiWriter
// over stdout and the configured log file.
func SetOutput(w io.Writer) {
	mu.Lock()
	root = build(w)
	mu.Unlock()
}

// SetLevel applies the configured log level. Unknown names fall back to info
// rather than failing startup over a typo.
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}

func active() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

func Debugf(format string, v ...any) { active().Debug(fmt.Sprintf(format, v...)) }
func Infof(format string, v ...any)  { active().Info(fmt.Sprintf(format, v...)) }
func Warnf(format string, v ...any)  { active().Warn(fmt.Sprintf(format, v...)) }
func Errorf(format string, v ...any) { active().Error(fmt.Sprintf(format, v...)) }
