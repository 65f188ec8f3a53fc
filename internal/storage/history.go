package storage

import (
	"sync"

	"github.com/safetrail/engine/internal/alert"
)

// DefaultHistoryCap is how many alerts the local history retains.
// One unified ring across all alert categories.
const DefaultHistoryCap = 50

// AlertHistory is the capped local record of everything dispatched,
// most-recent first.
type AlertHistory interface {
	Append(a alert.Alert) error
	Recent() ([]alert.Alert, error)
	Clear() error
}

// MemoryHistory is an in-memory ring used when no durable store is wired.
type MemoryHistory struct {
	mu     sync.Mutex
	cap    int
	alerts []alert.Alert // most-recent first
}

// NewMemoryHistory creates an in-memory history with the given cap.
// A cap of zero or less falls back to DefaultHistoryCap.
func NewMemoryHistory(capacity int) *MemoryHistory {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	return &MemoryHistory{cap: capacity}
}

// Append prepends a and evicts the oldest entry once the cap is reached.
func (h *MemoryHistory) Append(a alert.Alert) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.alerts = append([]alert.Alert{a}, h.alerts...)
	if len(h.alerts) > h.cap {
		h.alerts = h.alerts[:h.cap]
	}
	return nil
}

// Recent returns a copy of the retained alerts, most-recent first.
func (h *MemoryHistory) Recent() ([]alert.Alert, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]alert.Alert, len(h.alerts))
	copy(out, h.alerts)
	return out, nil
}

// Clear discards all retained alerts.
func (h *MemoryHistory) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.alerts = nil
	return nil
}
