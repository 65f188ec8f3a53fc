package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetrail/engine/internal/alert"
	"github.com/safetrail/engine/internal/geo"
)

func TestRouteMonitor_Check(t *testing.T) {
	route := []geo.Point{{Latitude: 0, Longitude: 0}}

	t.Run("nil route disables the check", func(t *testing.T) {
		m := NewRouteMonitor(500)
		assert.Nil(t, m.Check(sampleAt(10, 10), nil))
	})

	t.Run("sample ~1.1km from the route alerts", func(t *testing.T) {
		m := NewRouteMonitor(500)

		a := m.Check(sampleAt(0, 0.01), route)
		require.NotNil(t, a)
		assert.Equal(t, alert.CategoryRouteDeviation, a.Category)
		assert.Equal(t, alert.SeverityHigh, a.Severity)
		assert.Contains(t, a.Message, "Deviated")
		assert.Contains(t, a.Message, "from expected route")

		deviation, ok := a.Metadata["deviation"].(float64)
		require.True(t, ok)
		assert.InDelta(t, 1112, deviation, 1112*0.01)
	})

	t.Run("sample ~11m from the route stays quiet", func(t *testing.T) {
		m := NewRouteMonitor(500)
		assert.Nil(t, m.Check(sampleAt(0, 0.0001), route))
	})

	// No debounce: the alert stream tracks the deviation while it lasts.
	t.Run("every over-threshold sample re-alerts", func(t *testing.T) {
		m := NewRouteMonitor(500)

		first := m.Check(sampleAt(0, 0.01), route)
		second := m.Check(sampleAt(0, 0.01), route)
		require.NotNil(t, first)
		require.NotNil(t, second)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("nearest waypoint decides", func(t *testing.T) {
		m := NewRouteMonitor(500)
		longRoute := []geo.Point{
			{Latitude: 10, Longitude: 10},
			{Latitude: 0, Longitude: 0.001},
		}
		assert.Nil(t, m.Check(sampleAt(0, 0), longRoute))
	})
}
