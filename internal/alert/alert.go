package alert

import (
	"time"

	"github.com/google/uuid"
)

// Category identifies which monitor produced an alert.
type Category string

const (
	CategoryGeofenceViolation Category = "GEOFENCE_VIOLATION"
	CategoryInactivity        Category = "INACTIVITY"
	CategoryRouteDeviation    Category = "ROUTE_DEVIATION"
	CategoryAnomaly           Category = "ANOMALY"
	CategoryPanicButton       Category = "PANIC_BUTTON"
)

// Severity is the urgency level attached to an alert.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Location is the geographic position an alert refers to.
type Location struct {
	// Latitude is the geographic latitude coordinate in degrees
	Latitude float64 `json:"latitude"`

	// Longitude is the geographic longitude coordinate in degrees
	Longitude float64 `json:"longitude"`
}

// Alert is the normalized record every monitor produces.
// This is the common format the dispatcher delivers and the history stores.
type Alert struct {
	// ID is the unique identifier for this alert
	ID string `json:"id"`

	// Category identifies the producing monitor
	Category Category `json:"category"`

	// Severity is LOW, MEDIUM or HIGH
	Severity Severity `json:"severity"`

	// Message is the human-readable alert summary
	Message string `json:"message"`

	// Location is where the alert occurred, if known
	Location *Location `json:"location,omitempty"`

	// OccurredAt is when the triggering condition was observed
	OccurredAt time.Time `json:"occurredAt"`

	// Metadata carries scalar context values (geofence id, raw distance, ...)
	Metadata map[string]any `json:"metadata,omitempty"`
}

// New builds an alert with a fresh UUID and the given occurrence time.
func New(category Category, severity Severity, message string, occurredAt time.Time) Alert {
	return Alert{
		ID:         uuid.NewString(),
		Category:   category,
		Severity:   severity,
		Message:    message,
		OccurredAt: occurredAt,
	}
}

// Clone returns a deep copy so that a dispatched alert can be read
// off the mutation path without racing the caller.
func (a Alert) Clone() Alert {
	clone := a
	if a.Location != nil {
		loc := *a.Location
		clone.Location = &loc
	}
	if a.Metadata != nil {
		clone.Metadata = make(map[string]any, len(a.Metadata))
		for k, v := range a.Metadata {
			clone.Metadata[k] = v
		}
	}
	return clone
}
