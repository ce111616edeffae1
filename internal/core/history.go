package core

import (
	"sync"
	"time"
)

// DefaultHistorySize is the number of spawn results kept when none is
// configured.
const DefaultHistorySize = 50

// History keeps the most recent spawn results in a ring.
type History struct {
	mu      sync.RWMutex
	entries []*SpawnResult
	next    int
	full    bool
}

// NewHistory creates a history holding up to size results.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{entries: make([]*SpawnResult, size)}
}

// Add stores r, evicting the oldest entry when full.
func (h *History) Add(r *SpawnResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[h.next] = r
	h.next = (h.next + 1) % len(h.entries)
	if h.next == 0 {
		h.full = true
	}
}

// List returns the stored results, newest first.
func (h *History) List() []*SpawnResult {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := h.lenLocked()
	out := make([]*SpawnResult, 0, n)
	for i := 1; i <= n; i++ {
		idx := (h.next - i + len(h.entries)) % len(h.entries)
		out = append(out, h.entries[idx])
	}
	return out
}

// Latest returns the most recent result.
func (h *History) Latest() (*SpawnResult, bool) {
	list := h.List()
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}

// Len returns the number of stored results.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lenLocked()
}

func (h *History) lenLocked() int {
	if h.full {
		return len(h.entries)
	}
	return h.next
}

// Prune drops results that finished before cutoff and returns how many were
// removed.
func (h *History) Prune(cutoff time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := h.lenLocked()
	kept := make([]*SpawnResult, 0, n)
	for i := n; i >= 1; i-- {
		idx := (h.next - i + len(h.entries)) % len(h.entries)
		if r := h.entries[idx]; !r.FinishedAt.Before(cutoff) {
			kept = append(kept, r)
		}
	}

	removed := n - len(kept)
	if removed == 0 {
		return 0
	}

	h.entries = make([]*SpawnResult, len(h.entries))
	copy(h.entries, kept)
	h.next = len(kept) % len(h.entries)
	h.full = len(kept) == len(h.entries)
	return removed
}
