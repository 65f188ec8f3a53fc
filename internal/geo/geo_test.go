package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMeters(t *testing.T) {
	t.Run("coincident points have zero distance", func(t *testing.T) {
		points := []Point{
			{Latitude: 0, Longitude: 0},
			{Latitude: 12.34, Longitude: 56.78},
			{Latitude: -89.9, Longitude: 179.9},
		}
		for _, p := range points {
			assert.InDelta(t, 0, DistanceMeters(p, p), 1e-6)
		}
	})

	t.Run("distance is symmetric", func(t *testing.T) {
		a := Point{Latitude: 12.34, Longitude: 56.78}
		b := Point{Latitude: -3.21, Longitude: 101.5}
		assert.InDelta(t, DistanceMeters(a, b), DistanceMeters(b, a), 1e-6)
	})

	t.Run("one degree of longitude at the equator", func(t *testing.T) {
		a := Point{Latitude: 0, Longitude: 0}
		b := Point{Latitude: 0, Longitude: 1}
		d := DistanceMeters(a, b)
		// ~111195m, allow 1%
		assert.InDelta(t, 111195, d, 111195*0.01)
	})

	t.Run("larger angular separation means larger distance", func(t *testing.T) {
		origin := Point{Latitude: 0, Longitude: 0}
		near := Point{Latitude: 0, Longitude: 0.5}
		far := Point{Latitude: 0, Longitude: 1.5}
		assert.Less(t, DistanceMeters(origin, near), DistanceMeters(origin, far))
	})
}

func TestIsInside(t *testing.T) {
	center := Point{Latitude: 0, Longitude: 0}

	t.Run("point on the boundary counts as inside", func(t *testing.T) {
		p := Point{Latitude: 0, Longitude: 0.001}
		radius := DistanceMeters(p, center)
		assert.True(t, IsInside(p, center, radius))
	})

	t.Run("point just past the boundary is outside", func(t *testing.T) {
		p := Point{Latitude: 0, Longitude: 0.001}
		radius := DistanceMeters(p, center)
		assert.False(t, IsInside(p, center, radius-0.01))
	})

	t.Run("center is always inside", func(t *testing.T) {
		assert.True(t, IsInside(center, center, 1))
	})
}

func TestNearestVertexDistance(t *testing.T) {
	t.Run("empty route yields infinity", func(t *testing.T) {
		d := NearestVertexDistance(Point{Latitude: 1, Longitude: 1}, nil)
		assert.True(t, math.IsInf(d, 1))
	})

	t.Run("single waypoint route", func(t *testing.T) {
		p := Point{Latitude: 0, Longitude: 0.01}
		route := []Point{{Latitude: 0, Longitude: 0}}
		d := NearestVertexDistance(p, route)
		assert.InDelta(t, 1112, d, 1112*0.01)
	})

	t.Run("picks the closest of several waypoints", func(t *testing.T) {
		p := Point{Latitude: 0, Longitude: 0}
		route := []Point{
			{Latitude: 1, Longitude: 1},
			{Latitude: 0, Longitude: 0.001},
			{Latitude: -2, Longitude: 3},
		}
		d := NearestVertexDistance(p, route)
		expected := DistanceMeters(p, route[1])
		assert.InDelta(t, expected, d, 1e-6)
	})
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "842m", FormatDistance(842.3))
	assert.Equal(t, "0m", FormatDistance(0))
	assert.Equal(t, "1.3km", FormatDistance(1300))
	assert.Equal(t, "12.0km", FormatDistance(12000))
}

func TestZoneStatus(t *testing.T) {
	center := Point{Latitude: 0, Longitude: 0}

	t.Run("unknown location", func(t *testing.T) {
		s := ZoneStatus(nil, center, 100)
		assert.False(t, s.Inside)
		assert.Equal(t, "Unknown", s.Formatted)
	})

	t.Run("inside with formatted distance", func(t *testing.T) {
		p := Point{Latitude: 0, Longitude: 0.0001}
		s := ZoneStatus(&p, center, 100)
		assert.True(t, s.Inside)
		assert.InDelta(t, 11, s.Distance, 1)
		assert.Equal(t, "11m", s.Formatted)
	})
}
