package monitor

import (
	"fmt"
	"math"
	"sync"

	"github.com/safetrail/engine/internal/alert"
	"github.com/safetrail/engine/internal/geo"
	"github.com/safetrail/engine/internal/location"
	"github.com/safetrail/engine/internal/storage"
)

// GeofenceEngine evaluates location samples against the configured
// geofences. It remembers per-fence containment across calls so that a
// zone entry alerts exactly once per contiguous inside interval:
// staying inside is quiet, leaving and re-entering triggers again.
type GeofenceEngine struct {
	mu     sync.Mutex
	inside map[string]bool // fence id -> last known containment
}

// NewGeofenceEngine creates an engine with empty containment state.
func NewGeofenceEngine() *GeofenceEngine {
	return &GeofenceEngine{
		inside: make(map[string]bool),
	}
}

// Evaluate checks sample against fences and returns a HIGH severity
// violation alert for every fence the sample just entered.
func (e *GeofenceEngine) Evaluate(sample location.Sample, fences []storage.Geofence) []alert.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	point := sample.Point()
	var alerts []alert.Alert

	for _, fence := range fences {
		center := geo.Point{Latitude: fence.CenterLatitude, Longitude: fence.CenterLongitude}
		distance := geo.DistanceMeters(point, center)
		inside := distance <= fence.RadiusMeters

		if inside && !e.inside[fence.ID] {
			a := alert.New(
				alert.CategoryGeofenceViolation,
				alert.SeverityHigh,
				fmt.Sprintf("Entered restricted area: %s", fence.Name),
				sample.CapturedAt,
			)
			a.Location = &alert.Location{Latitude: sample.Latitude, Longitude: sample.Longitude}
			a.Metadata = map[string]any{
				"geofenceId":   fence.ID,
				"geofenceName": fence.Name,
				"distance":     math.Round(distance),
			}
			alerts = append(alerts, a)
		}

		e.inside[fence.ID] = inside
	}

	return alerts
}

// Reset discards all containment state. Called when monitoring stops so
// a later session starts fresh.
func (e *GeofenceEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inside = make(map[string]bool)
}
