package discovery

import (
	"strings"
	"sync"
)

// History counts successful connections per device address. Implementations
// must make increments atomic with respect to reads.
type History interface {
	Successes(address string) int
	RecordSuccess(address string)
}

// MemoryHistory is the process-lifetime History used by default. The
// caller owns the instance; sharing one across selectors shares the
// learned preferences.
type MemoryHistory struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{counts: make(map[string]int)}
}

func (h *MemoryHistory) Successes(address string) int {
	key := normalizeAddress(address)
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts[key]
}

func (h *MemoryHistory) RecordSuccess(address string) {
	key := normalizeAddress(address)
	if key == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counts[key]++
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
