// Package obslog holds the translate/rvm/store packages' shared logger.
// Adapted from engine/logger.go: a package-level *zap.Logger behind
// sync.Once, defaulting to a no-op logger so the core stays silent until
// an embedder opts in.
package obslog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
	mu         sync.RWMutex
)

// Logger returns the shared logger, initializing it to a no-op logger on
// first use if SetLogger was never called.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger installs l as the shared logger. Embedders call this before
// translating or executing anything to capture fusion/trap/fuel
// diagnostics.
func SetLogger(l *zap.Logger) {
	loggerOnce.Do(func() {})
	mu.Lock()
	defer mu.Unlock()
	logger = l
}
