package monitor

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/safetrail/engine/internal/alert"
)

// InactivityThreshold is how long the stream may stay silent before an
// inactivity alert fires.
const InactivityThreshold = 15 * time.Minute

// ActivityMonitor tracks when activity was last observed and raises an
// inactivity alert once the silence exceeds the threshold.
//
// Deliberately no alerted flag: while the silence persists, every check
// re-alerts. A single missed alert on a possibly-unreachable tourist is
// worse than repeats, and repeats are rate-limited by the tick period.
type ActivityMonitor struct {
	mu           sync.Mutex
	threshold    time.Duration
	lastActivity time.Time
}

// NewActivityMonitor creates a monitor with the given silence threshold.
// A threshold of zero or less falls back to InactivityThreshold.
func NewActivityMonitor(threshold time.Duration) *ActivityMonitor {
	if threshold <= 0 {
		threshold = InactivityThreshold
	}
	return &ActivityMonitor{threshold: threshold}
}

// Touch records that activity was observed at now.
func (m *ActivityMonitor) Touch(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = now
}

// LastActivity returns when activity was last observed, zero if never.
func (m *ActivityMonitor) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity
}

// Check returns a MEDIUM inactivity alert if the silence since the last
// recorded activity exceeds the threshold, nil otherwise. loc, when
// known, is attached to the alert.
func (m *ActivityMonitor) Check(now time.Time, loc *alert.Location) *alert.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastActivity.IsZero() {
		return nil
	}

	silence := now.Sub(m.lastActivity)
	if silence <= m.threshold {
		return nil
	}

	minutes := int(math.Round(silence.Minutes()))
	a := alert.New(
		alert.CategoryInactivity,
		alert.SeverityMedium,
		fmt.Sprintf("No activity detected for %d minutes", minutes),
		now,
	)
	a.Location = loc
	a.Metadata = map[string]any{
		"duration": silence.Milliseconds(),
	}
	return &a
}

// Reset forgets the last observed activity.
func (m *ActivityMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = time.Time{}
}
