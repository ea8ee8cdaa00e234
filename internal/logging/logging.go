package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

var (
	mu     sync.Mutex
	logger *slog.Logger
)

// Logger returns the process logger. Until Configure is called it writes
// info-level terminal output to stderr.
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = slog.New(log.NewTerminalHandlerWithLevel(os.Stderr, slog.LevelInfo, false))
	}
	return logger
}

// Configure installs a logger writing to stderr and, when filePath is set, to
// that file as well. The returned func closes the file.
func Configure(level, format, filePath string) (*slog.Logger, func(), error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, func() {}, err
	}

	var (
		out     io.Writer = os.Stderr
		closeFn           = func() {}
	)
	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, func() {}, err
		}
		out = io.MultiWriter(os.Stderr, f)
		closeFn = func() { _ = f.Close() }
	}

	h, err := NewHandler(out, lvl, format)
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}

	l := slog.New(h)
	mu.Lock()
	logger = l
	mu.Unlock()
	return l, closeFn, nil
}

// NewHandler returns a handler for one of the formats terminal, json or logfmt.
func NewHandler(w io.Writer, lvl slog.Level, format string) (slog.Handler, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "terminal":
		return log.NewTerminalHandlerWithLevel(w, lvl, false), nil
	case "json":
		return log.JSONHandlerWithLevel(w, lvl), nil
	case "logfmt":
		return log.LogfmtHandlerWithLevel(w, lvl), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// ParseLevel accepts trace, debug, info, warn and error. An empty level is info.
func ParseLevel(level string) (slog.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return slog.LevelInfo, nil
	}
	lvl, err := log.LvlFromString(level)
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
	return lvl, nil
}
