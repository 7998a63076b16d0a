package logging

import (
	"fmt"
	"sort"
	"sync"
)

// Registry tracks named loggers and the level patterns that apply to them.
type Registry struct {
	mu        sync.RWMutex
	loggers   map[string]Logger
	logConfig []LoggerPatternConfig
}

var globalLoggerRegistry = newRegistry()

func newRegistry() *Registry {
	return &Registry{
		loggers: make(map[string]Logger),
	}
}

// register stores the logger under its name, replacing any previous logger with that name, and
// applies the first matching level pattern.
func (lr *Registry) register(name string, logger Logger) {
	lr.mu.Lock()
	lr.loggers[name] = logger
	cfg := lr.logConfig
	lr.mu.Unlock()

	if level, ok := levelForName(cfg, name); ok {
		logger.SetLevel(level)
	}
}

func (lr *Registry) loggerNamed(name string) (logger Logger, ok bool) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	logger, ok = lr.loggers[name]
	return
}

func (lr *Registry) updateLoggerLevel(name string, level Level) error {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	logger, ok := lr.loggers[name]
	if !ok {
		return fmt.Errorf("logger named %s not recognized", name)
	}
	logger.SetLevel(level)
	return nil
}

func (lr *Registry) registeredLoggerNames() []string {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	registeredNames := make([]string, 0, len(lr.loggers))
	for name := range lr.loggers {
		registeredNames = append(registeredNames, name)
	}
	sort.Strings(registeredNames)
	return registeredNames
}

// UpdateConfig replaces the level patterns and re-levels every registered logger. Loggers that
// match no pattern are set to INFO. Invalid patterns are skipped with a warning.
func (lr *Registry) UpdateConfig(logConfig []LoggerPatternConfig, errorLogger Logger) error {
	valid := make([]LoggerPatternConfig, 0, len(logConfig))
	for _, lpc := range logConfig {
		if !validatePattern(lpc.Pattern) {
			errorLogger.Warnw("failed to validate a pattern", "pattern", lpc.Pattern)
			continue
		}
		if _, err := LevelFromString(lpc.Level); err != nil {
			return err
		}
		valid = append(valid, lpc)
	}

	lr.mu.Lock()
	lr.logConfig = valid
	lr.mu.Unlock()

	for _, name := range lr.registeredLoggerNames() {
		level, ok := levelForName(valid, name)
		if !ok {
			level = INFO
		}
		if err := lr.updateLoggerLevel(name, level); err != nil {
			return err
		}
	}
	return nil
}

// levelForName returns the level of the last pattern matching name. Later patterns override
// earlier ones.
func levelForName(logConfig []LoggerPatternConfig, name string) (Level, bool) {
	var (
		found bool
		level Level
	)
	for _, lpc := range logConfig {
		r, err := patternMatcher(lpc.Pattern)
		if err != nil || !r.MatchString(name) {
			continue
		}
		parsed, err := LevelFromString(lpc.Level)
		if err != nil {
			continue
		}
		level, found = parsed, true
	}
	return level, found
}

// RegisterLogger registers a new logger with a given name.
func RegisterLogger(name string, logger Logger) {
	globalLoggerRegistry.register(name, logger)
}

// LoggerNamed returns logger with specified name if exists.
func LoggerNamed(name string) (logger Logger, ok bool) {
	return globalLoggerRegistry.loggerNamed(name)
}

// UpdateLoggerLevel assigns level to appropriate logger in the registry.
func UpdateLoggerLevel(name string, level Level) error {
	return globalLoggerRegistry.updateLoggerLevel(name, level)
}

// RegisteredLoggerNames returns the sorted names of all loggers in the registry.
func RegisteredLoggerNames() []string {
	return globalLoggerRegistry.registeredLoggerNames()
}

// UpdateLoggerRegistryConfig applies level patterns to every registered logger.
func UpdateLoggerRegistryConfig(logConfig []LoggerPatternConfig, errorLogger Logger) error {
	return globalLoggerRegistry.UpdateConfig(logConfig, errorLogger)
}
