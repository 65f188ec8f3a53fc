package monitor

import (
	"fmt"
	"math"

	"github.com/safetrail/engine/internal/alert"
	"github.com/safetrail/engine/internal/geo"
	"github.com/safetrail/engine/internal/location"
)

// RouteDeviationThresholdMeters is the maximum allowed distance from the
// expected route before a deviation alert fires.
const RouteDeviationThresholdMeters = 500.0

// RouteMonitor compares location samples against an expected route.
// Stateless between samples: every over-threshold sample re-alerts, so
// the alert stream tracks the deviation for as long as it lasts.
type RouteMonitor struct {
	threshold float64
}

// NewRouteMonitor creates a monitor with the given deviation threshold
// in meters. Zero or negative falls back to the default.
func NewRouteMonitor(threshold float64) *RouteMonitor {
	if threshold <= 0 {
		threshold = RouteDeviationThresholdMeters
	}
	return &RouteMonitor{threshold: threshold}
}

// Check returns a HIGH deviation alert when sample is farther than the
// threshold from every waypoint of route. A nil or empty route disables
// the check.
func (m *RouteMonitor) Check(sample location.Sample, route []geo.Point) *alert.Alert {
	if len(route) == 0 {
		return nil
	}

	deviation := geo.NearestVertexDistance(sample.Point(), route)
	if deviation <= m.threshold {
		return nil
	}

	a := alert.New(
		alert.CategoryRouteDeviation,
		alert.SeverityHigh,
		fmt.Sprintf("Deviated %dm from expected route", int(math.Round(deviation))),
		sample.CapturedAt,
	)
	a.Location = &alert.Location{Latitude: sample.Latitude, Longitude: sample.Longitude}
	a.Metadata = map[string]any{
		"deviation": deviation,
	}
	return &a
}
