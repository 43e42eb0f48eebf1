// Package gate provides a counting admission gate for translation work.
package gate

import (
	"lingo-relay/internal/types"

	"github.com/sirupsen/logrus"
)

// Gate limits the number of concurrent translation jobs. Admission is
// non-blocking: callers that cannot acquire a slot reply busy instead of
// queueing.
type Gate struct {
	slots chan struct{}
}

// New creates a gate with the given capacity. A capacity below 1 falls
// back to 1.
func New(capacity int) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{
		slots: make(chan struct{}, capacity),
	}
}

// NewFromConfig creates a gate sized from the performance configuration.
func NewFromConfig(configManager types.ConfigManager) *Gate {
	capacity := configManager.GetPerformanceConfig().MaxConcurrentTranslations
	return New(capacity)
}

// TryAcquire attempts to take a slot without blocking.
func (g *Gate) TryAcquire() bool {
	select {
	case g.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release frees a slot. Must be called exactly once per successful acquire.
func (g *Gate) Release() {
	select {
	case <-g.slots:
	default:
		logrus.Warn("Gate release without matching acquire")
	}
}

// InUse returns the number of currently held slots.
func (g *Gate) InUse() int {
	return len(g.slots)
}

// Capacity returns the total number of slots.
func (g *Gate) Capacity() int {
	return cap(g.slots)
}
