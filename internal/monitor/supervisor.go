package monitor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/safetrail/engine/internal/alert"
	"github.com/safetrail/engine/internal/geo"
	"github.com/safetrail/engine/internal/location"
	"github.com/safetrail/engine/internal/storage"
)

// ActivityCheckInterval is the inactivity check period.
const ActivityCheckInterval = 60 * time.Second

// AlertSink receives every alert the monitors produce. The dispatch
// package provides the production implementation.
type AlertSink interface {
	Dispatch(a alert.Alert)
}

// Status is a snapshot of the supervisor state for the UI boundary.
type Status struct {
	Active         bool       `json:"active"`
	LastActivityAt *time.Time `json:"lastActivityAt,omitempty"`
	RouteWaypoints int        `json:"routeWaypoints"`
}

// Supervisor owns the monitoring lifecycle: it subscribes to the
// location source, schedules the periodic checks, and routes every
// resulting alert into the sink. All of its own state mutations are
// serialized behind one mutex; sample callbacks and timer ticks may
// interleave freely.
type Supervisor struct {
	source    location.Source
	fences    storage.GeofenceStore
	history   storage.AlertHistory
	sink      AlertSink
	scheduler TickScheduler
	detector  AnomalyDetector
	logger    *slog.Logger

	engine   *GeofenceEngine
	activity *ActivityMonitor
	routeMon *RouteMonitor

	mu          sync.Mutex
	active      bool
	route       []geo.Point
	lastSample  *location.Sample
	jobs        []Job
	unsubscribe location.Unsubscribe
}

// Config carries the supervisor's collaborators and tunables.
type Config struct {
	Source    location.Source
	Fences    storage.GeofenceStore
	History   storage.AlertHistory
	Sink      AlertSink
	Scheduler TickScheduler
	Detector  AnomalyDetector
	Logger    *slog.Logger

	// InactivityThreshold overrides the default 15 minute silence limit.
	InactivityThreshold time.Duration

	// DeviationThresholdMeters overrides the default 500 m route limit.
	DeviationThresholdMeters float64
}

// NewSupervisor wires a stopped supervisor from cfg.
func NewSupervisor(cfg Config) *Supervisor {
	return &Supervisor{
		source:    cfg.Source,
		fences:    cfg.Fences,
		history:   cfg.History,
		sink:      cfg.Sink,
		scheduler: cfg.Scheduler,
		detector:  cfg.Detector,
		logger:    cfg.Logger,
		engine:    NewGeofenceEngine(),
		activity:  NewActivityMonitor(cfg.InactivityThreshold),
		routeMon:  NewRouteMonitor(cfg.DeviationThresholdMeters),
	}
}

// Start transitions Stopped -> Active: records the start as activity,
// schedules the periodic checks, and subscribes to the location source.
// Returns an error if already active.
func (s *Supervisor) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return errors.New("monitoring already active")
	}

	activityJob, err := s.scheduler.Schedule("activity-check", ActivityCheckInterval, s.onActivityTick)
	if err != nil {
		return errors.Wrap(err, "failed to schedule activity check")
	}

	anomalyJob, err := s.scheduler.Schedule("anomaly-check", AnomalyCheckInterval, s.onAnomalyTick)
	if err != nil {
		activityJob.Close()
		return errors.Wrap(err, "failed to schedule anomaly check")
	}

	unsubscribe, err := s.source.Subscribe(s.OnSample)
	if err != nil {
		activityJob.Close()
		anomalyJob.Close()
		return errors.Wrap(err, "failed to subscribe to location source")
	}

	s.active = true
	s.activity.Touch(time.Now())
	s.jobs = []Job{activityJob, anomalyJob}
	s.unsubscribe = unsubscribe

	s.logger.Info("monitoring started")
	return nil
}

// Stop transitions Active -> Stopped: cancels both periodic checks,
// unsubscribes from the location source, and clears per-session state.
// After Stop returns no further tick runs. Stopping twice is a no-op.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	jobs := s.jobs
	unsubscribe := s.unsubscribe
	s.jobs = nil
	s.unsubscribe = nil
	s.lastSample = nil
	s.mu.Unlock()

	// Close outside the lock: a tick blocked on the mutex must be able
	// to proceed (it will observe active=false and bail) or Close would
	// never return.
	if unsubscribe != nil {
		unsubscribe()
	}
	for _, job := range jobs {
		if err := job.Close(); err != nil {
			s.logger.Error("failed to close monitoring job", "error", err)
		}
	}

	s.engine.Reset()
	s.activity.Reset()

	s.logger.Info("monitoring stopped")
}

// OnSample is the location stream callback: refreshes activity, runs
// the geofence and route checks, and dispatches whatever they produce.
// Samples arriving while stopped are ignored.
func (s *Supervisor) OnSample(sample location.Sample) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.lastSample = &sample
	route := s.route
	s.mu.Unlock()

	s.activity.Touch(time.Now())

	fences, err := s.fences.List()
	if err != nil {
		s.logger.Error("failed to load geofences, skipping geofence evaluation", "error", err)
	}

	for _, a := range s.engine.Evaluate(sample, fences) {
		s.sink.Dispatch(a)
	}

	if a := s.routeMon.Check(sample, route); a != nil {
		s.sink.Dispatch(*a)
	}
}

func (s *Supervisor) onActivityTick() {
	loc, ok := s.snapshotIfActive()
	if !ok {
		return
	}
	if a := s.activity.Check(time.Now(), loc); a != nil {
		s.sink.Dispatch(*a)
	}
}

func (s *Supervisor) onAnomalyTick() {
	loc, ok := s.snapshotIfActive()
	if !ok {
		return
	}
	if a := s.detector.Detect(time.Now(), loc); a != nil {
		s.sink.Dispatch(*a)
	}
}

// snapshotIfActive returns the last known location (nil if none) and
// whether monitoring is active.
func (s *Supervisor) snapshotIfActive() (*alert.Location, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return nil, false
	}
	if s.lastSample == nil {
		return nil, true
	}
	return &alert.Location{
		Latitude:  s.lastSample.Latitude,
		Longitude: s.lastSample.Longitude,
	}, true
}

// SetExpectedRoute replaces the expected route. A nil or empty route
// disables the deviation check. Valid whether or not monitoring runs.
func (s *Supervisor) SetExpectedRoute(route []geo.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(route) == 0 {
		s.route = nil
		return
	}
	s.route = make([]geo.Point, len(route))
	copy(s.route, route)
}

// ClearAlerts empties the local alert history.
func (s *Supervisor) ClearAlerts() error {
	return s.history.Clear()
}

// RecentAlerts returns the local alert history, most-recent first.
func (s *Supervisor) RecentAlerts() ([]alert.Alert, error) {
	return s.history.Recent()
}

// Status reports the current lifecycle state for the UI boundary.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	active := s.active
	waypoints := len(s.route)
	s.mu.Unlock()

	st := Status{Active: active, RouteWaypoints: waypoints}
	if last := s.activity.LastActivity(); !last.IsZero() {
		st.LastActivityAt = &last
	}
	return st
}
