package geo

import (
	"fmt"
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is Earth's mean radius used for all great-circle math.
const EarthRadiusMeters = 6371000.0

// Point is a geographic coordinate in degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceMeters calculates the great-circle distance between two points
// in meters using the haversine formula (via S2 angular distance).
func DistanceMeters(a, b Point) float64 {
	p1 := s2.LatLngFromDegrees(a.Latitude, a.Longitude)
	p2 := s2.LatLngFromDegrees(b.Latitude, b.Longitude)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// IsInside reports whether p lies within radiusMeters of center.
// The boundary counts as inside.
func IsInside(p, center Point, radiusMeters float64) bool {
	return DistanceMeters(p, center) <= radiusMeters
}

// NearestVertexDistance returns the distance in meters from p to the
// closest waypoint of route. Returns +Inf for an empty route.
//
// This is a nearest-vertex approximation, not a true segment projection:
// a point alongside a long straight leg reads as farther than it is.
// Acceptable for the deviation threshold in use; revisit if routes with
// sparse waypoints need tighter bounds.
func NearestVertexDistance(p Point, route []Point) float64 {
	min := math.Inf(1)
	for _, wp := range route {
		if d := DistanceMeters(p, wp); d < min {
			min = d
		}
	}
	return min
}

// FormatDistance renders a distance for display, meters below 1 km
// and one-decimal kilometers above.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%dm", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1fkm", meters/1000)
}

// Status describes a point's relationship to a circular zone.
type Status struct {
	Inside    bool    `json:"inside"`
	Distance  float64 `json:"distance"`
	Formatted string  `json:"formatted"`
}

// ZoneStatus computes containment and formatted distance from current to
// a zone center, for display at the UI boundary.
func ZoneStatus(current *Point, center Point, radiusMeters float64) Status {
	if current == nil {
		return Status{Formatted: "Unknown"}
	}
	d := DistanceMeters(*current, center)
	return Status{
		Inside:    d <= radiusMeters,
		Distance:  d,
		Formatted: FormatDistance(d),
	}
}
