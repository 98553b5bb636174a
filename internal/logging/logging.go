// Package logging provides categorized logging for the mdflow library.
// The library is silent by default (a nop logger); callers inject a
// *zap.Logger through mdflow.WithLogger and every subsystem logs under
// its own category field.
package logging

import (
	"sync"

	"go.uber.org/zap"
)

// Category identifies the subsystem a log line belongs to.
type Category string

const (
	CategoryParser   Category = "parser"   // Block splitting, directive parsing
	CategoryStream   Category = "stream"   // Incremental JSON extraction
	CategoryAction   Category = "action"   // Step validation
	CategoryEngine   Category = "engine"   // Flow processing
	CategoryProvider Category = "provider" // Model-calling collaborator
)

var (
	mu   sync.RWMutex
	root = zap.NewNop()
)

// SetLogger installs the process-wide root logger. Passing nil restores
// the nop logger.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	root = l
}

// For returns a logger tagged with the given category.
func For(c Category) *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.With(zap.String("category", string(c)))
}
