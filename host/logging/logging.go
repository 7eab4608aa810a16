// Package logging provides module-scoped slog loggers for the host tools.
// Logs go to stderr so they never mix with command responses on stdout.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config represents logging configuration.
type Config struct {
	Level   string            `toml:"level" yaml:"level"`
	Format  string            `toml:"format" yaml:"format"`
	Modules map[string]string `toml:"modules" yaml:"modules"`
}

var (
	moduleLoggers   = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	globalConfig    Config
	output          io.Writer = os.Stderr
	mutex           sync.RWMutex
)

// Initialize sets up the logging system. Loggers handed out earlier pick up
// the new level and format.
func Initialize(config Config) {
	mutex.Lock()
	defer mutex.Unlock()

	globalConfig = config

	for module, levelVar := range moduleLevelVars {
		levelVar.Set(moduleLevel(module))
		moduleLoggers[module] = newModuleLogger(module, levelVar)
	}

	slog.SetDefault(slog.New(createHandler(config.Format, levelOrInfo(config.Level))))
}

// SetOutput redirects all loggers created afterwards to w
func SetOutput(w io.Writer) {
	mutex.Lock()
	defer mutex.Unlock()
	output = w
	for module, levelVar := range moduleLevelVars {
		moduleLoggers[module] = newModuleLogger(module, levelVar)
	}
}

// GetLogger returns a logger for the specified module, creating it if needed.
func GetLogger(module string) *slog.Logger {
	mutex.RLock()
	if logger, exists := moduleLoggers[module]; exists {
		mutex.RUnlock()
		return logger
	}
	mutex.RUnlock()

	mutex.Lock()
	defer mutex.Unlock()

	// Double-check in case another goroutine created it
	if logger, exists := moduleLoggers[module]; exists {
		return logger
	}

	levelVar := &slog.LevelVar{}
	levelVar.Set(moduleLevel(module))

	logger := newModuleLogger(module, levelVar)
	moduleLoggers[module] = logger
	moduleLevelVars[module] = levelVar
	return logger
}

// ValidLevel reports whether level names a known log level
func ValidLevel(level string) bool {
	return parseLevel(level) != nil
}

func newModuleLogger(module string, level slog.Leveler) *slog.Logger {
	return slog.New(createHandler(globalConfig.Format, level)).With("module", module)
}

// moduleLevel resolves the level for module: module override, then global,
// then info. Callers hold the mutex.
func moduleLevel(module string) slog.Level {
	if levelStr, exists := globalConfig.Modules[module]; exists {
		if parsed := parseLevel(levelStr); parsed != nil {
			return *parsed
		}
	}
	return levelOrInfo(globalConfig.Level)
}

func levelOrInfo(level string) slog.Level {
	if parsed := parseLevel(level); parsed != nil {
		return *parsed
	}
	return slog.LevelInfo
}

func createHandler(format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(output, opts)
	}
	return slog.NewTextHandler(output, opts)
}

// parseLevel converts string level to slog.Level.
func parseLevel(level string) *slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		l := slog.LevelDebug
		return &l
	case "info":
		l := slog.LevelInfo
		return &l
	case "warn", "warning":
		l := slog.LevelWarn
		return &l
	case "error":
		l := slog.LevelError
		return &l
	default:
		return nil
	}
}
