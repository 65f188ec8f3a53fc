package monitor

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetrail/engine/internal/alert"
	"github.com/safetrail/engine/internal/geo"
	"github.com/safetrail/engine/internal/storage"
)

type supervisorFixture struct {
	supervisor *Supervisor
	source     *MockSource
	sink       *MockSink
	scheduler  *ManualScheduler
	fences     *MockFenceStore
	detector   *StaticDetector
	history    *storage.MemoryHistory
}

func newFixture(t *testing.T) *supervisorFixture {
	t.Helper()

	f := &supervisorFixture{
		source:    NewMockSource(),
		sink:      &MockSink{},
		scheduler: NewManualScheduler(),
		fences:    &MockFenceStore{},
		detector:  &StaticDetector{},
		history:   storage.NewMemoryHistory(50),
	}
	f.supervisor = NewSupervisor(Config{
		Source:    f.source,
		Fences:    f.fences,
		History:   f.history,
		Sink:      f.sink,
		Scheduler: f.scheduler,
		Detector:  f.detector,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(f.supervisor.Stop)
	return f
}

func TestSupervisor_Lifecycle(t *testing.T) {
	t.Run("start activates and schedules both checks", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.supervisor.Start())
		st := f.supervisor.Status()
		assert.True(t, st.Active)
		require.NotNil(t, st.LastActivityAt)
	})

	t.Run("starting twice fails", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.supervisor.Start())
		assert.Error(t, f.supervisor.Start())
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.supervisor.Start())
		f.supervisor.Stop()
		f.supervisor.Stop()
		assert.False(t, f.supervisor.Status().Active)
	})

	t.Run("stop closes the scheduled jobs", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.supervisor.Start())
		f.supervisor.Stop()
		assert.True(t, f.scheduler.Closed("activity-check"))
		assert.True(t, f.scheduler.Closed("anomaly-check"))
	})

	t.Run("restart after stop works", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.supervisor.Start())
		f.supervisor.Stop()
		require.NoError(t, f.supervisor.Start())
		assert.True(t, f.supervisor.Status().Active)
	})
}

func TestSupervisor_GeofenceFlow(t *testing.T) {
	t.Run("sample inside a fence dispatches exactly one violation", func(t *testing.T) {
		f := newFixture(t)
		f.fences.SetFences([]storage.Geofence{fence("restricted", 12.34, 56.78, 100)})

		require.NoError(t, f.supervisor.Start())

		// ~50m from center
		f.source.Emit(sampleAt(12.34045, 56.78))
		f.source.Emit(sampleAt(12.34045, 56.78))

		alerts := f.sink.Alerts()
		require.Len(t, alerts, 1)
		assert.Equal(t, alert.CategoryGeofenceViolation, alerts[0].Category)
		assert.Equal(t, alert.SeverityHigh, alerts[0].Severity)
	})

	t.Run("samples after stop produce no alerts", func(t *testing.T) {
		f := newFixture(t)
		f.fences.SetFences([]storage.Geofence{fence("restricted", 12.34, 56.78, 100)})

		require.NoError(t, f.supervisor.Start())
		f.supervisor.Stop()

		f.source.Emit(sampleAt(12.34045, 56.78))
		assert.Empty(t, f.sink.Alerts())
	})

	t.Run("fence store failure skips evaluation without alerting", func(t *testing.T) {
		f := newFixture(t)
		f.fences.SetError(storage.ErrStorage)

		require.NoError(t, f.supervisor.Start())
		f.source.Emit(sampleAt(12.34045, 56.78))
		assert.Empty(t, f.sink.Alerts())
	})
}

func TestSupervisor_RouteFlow(t *testing.T) {
	t.Run("deviation from the expected route alerts per sample", func(t *testing.T) {
		f := newFixture(t)
		f.supervisor.SetExpectedRoute([]geo.Point{{Latitude: 0, Longitude: 0}})

		require.NoError(t, f.supervisor.Start())
		f.source.Emit(sampleAt(0, 0.01))
		f.source.Emit(sampleAt(0, 0.01))

		alerts := f.sink.Alerts()
		require.Len(t, alerts, 2)
		for _, a := range alerts {
			assert.Equal(t, alert.CategoryRouteDeviation, a.Category)
		}
	})

	t.Run("clearing the route disables the check", func(t *testing.T) {
		f := newFixture(t)
		f.supervisor.SetExpectedRoute([]geo.Point{{Latitude: 0, Longitude: 0}})
		f.supervisor.SetExpectedRoute(nil)

		require.NoError(t, f.supervisor.Start())
		f.source.Emit(sampleAt(0, 0.01))
		assert.Empty(t, f.sink.Alerts())
	})
}

func TestSupervisor_Ticks(t *testing.T) {
	t.Run("anomaly tick dispatches the detector verdict", func(t *testing.T) {
		f := newFixture(t)
		anomaly := alert.New(alert.CategoryAnomaly, alert.SeverityLow, "Weather alert", time.Now())
		f.detector.Alert = &anomaly

		require.NoError(t, f.supervisor.Start())
		f.scheduler.Fire("anomaly-check")

		alerts := f.sink.Alerts()
		require.Len(t, alerts, 1)
		assert.Equal(t, alert.CategoryAnomaly, alerts[0].Category)
	})

	t.Run("anomaly tick carries the last sample location", func(t *testing.T) {
		f := newFixture(t)
		anomaly := alert.New(alert.CategoryAnomaly, alert.SeverityLow, "Weather alert", time.Now())
		f.detector.Alert = &anomaly

		require.NoError(t, f.supervisor.Start())
		f.source.Emit(sampleAt(12.34, 56.78))
		f.scheduler.Fire("anomaly-check")

		alerts := f.sink.Alerts()
		require.Len(t, alerts, 1)
		require.NotNil(t, alerts[0].Location)
		assert.Equal(t, 12.34, alerts[0].Location.Latitude)
	})

	t.Run("activity tick stays quiet right after start", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.supervisor.Start())
		f.scheduler.Fire("activity-check")
		assert.Empty(t, f.sink.Alerts())
	})

	t.Run("ticks after stop dispatch nothing", func(t *testing.T) {
		f := newFixture(t)
		anomaly := alert.New(alert.CategoryAnomaly, alert.SeverityHigh, "Suspicious activity detected", time.Now())
		f.detector.Alert = &anomaly

		require.NoError(t, f.supervisor.Start())
		f.supervisor.Stop()
		f.scheduler.Fire("anomaly-check")
		f.scheduler.Fire("activity-check")
		assert.Empty(t, f.sink.Alerts())
	})
}

func TestSupervisor_Alerts(t *testing.T) {
	t.Run("clear alerts empties the history in either state", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.history.Append(alert.New(alert.CategoryAnomaly, alert.SeverityLow, "x", time.Now())))

		require.NoError(t, f.supervisor.ClearAlerts())
		recent, err := f.supervisor.RecentAlerts()
		require.NoError(t, err)
		assert.Empty(t, recent)
	})
}
