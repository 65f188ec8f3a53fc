package monitor

import (
	"sync"
	"time"

	"github.com/safetrail/engine/internal/alert"
	"github.com/safetrail/engine/internal/location"
	"github.com/safetrail/engine/internal/storage"
)

// ManualScheduler is a test scheduler whose jobs tick only on demand.
type ManualScheduler struct {
	mu   sync.Mutex
	jobs map[string]*manualJob
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{jobs: make(map[string]*manualJob)}
}

// Schedule registers fn under id without starting any timer.
func (s *ManualScheduler) Schedule(id string, period time.Duration, fn func()) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j := &manualJob{fn: fn}
	s.jobs[id] = j
	return j, nil
}

// Fire runs the named job's callback once, if it is still open.
func (s *ManualScheduler) Fire(id string) {
	s.mu.Lock()
	j := s.jobs[id]
	s.mu.Unlock()

	if j == nil {
		return
	}
	j.mu.Lock()
	closed := j.closed
	fn := j.fn
	j.mu.Unlock()
	if !closed {
		fn()
	}
}

// Closed reports whether the named job has been closed.
func (s *ManualScheduler) Closed(id string) bool {
	s.mu.Lock()
	j := s.jobs[id]
	s.mu.Unlock()

	if j == nil {
		return false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.closed
}

type manualJob struct {
	mu     sync.Mutex
	fn     func()
	closed bool
}

func (j *manualJob) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.closed = true
	return nil
}

// MockSink records every dispatched alert.
type MockSink struct {
	mu     sync.Mutex
	alerts []alert.Alert
}

func (m *MockSink) Dispatch(a alert.Alert) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, a)
}

// Alerts returns a copy of everything dispatched so far.
func (m *MockSink) Alerts() []alert.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]alert.Alert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// MockSource is a function-field location source: tests push samples
// through Emit.
type MockSource struct {
	mu        sync.Mutex
	callbacks []func(location.Sample)
	granted   bool
}

func NewMockSource() *MockSource {
	return &MockSource{granted: true}
}

func (m *MockSource) Granted() bool { return m.granted }

func (m *MockSource) Subscribe(fn func(location.Sample)) (location.Unsubscribe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := len(m.callbacks)
	m.callbacks = append(m.callbacks, fn)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.callbacks[idx] = nil
	}, nil
}

func (m *MockSource) Current() (location.Sample, error) {
	return location.Sample{}, nil
}

// Emit pushes a sample to every live subscriber.
func (m *MockSource) Emit(s location.Sample) {
	m.mu.Lock()
	callbacks := make([]func(location.Sample), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, fn := range callbacks {
		if fn != nil {
			fn(s)
		}
	}
}

// MockFenceStore is an in-memory geofence store for supervisor tests.
type MockFenceStore struct {
	mu     sync.Mutex
	fences []storage.Geofence
	err    error
}

func (m *MockFenceStore) SetFences(fences []storage.Geofence) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fences = fences
}

func (m *MockFenceStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockFenceStore) List() ([]storage.Geofence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]storage.Geofence, len(m.fences))
	copy(out, m.fences)
	return out, nil
}

func (m *MockFenceStore) Get(id string) (*storage.Geofence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.fences {
		if f.ID == id {
			fence := f
			return &fence, nil
		}
	}
	return nil, nil
}

func (m *MockFenceStore) Add(def storage.GeofenceDefinition) (storage.Geofence, error) {
	if err := storage.ValidateDefinition(def); err != nil {
		return storage.Geofence{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fence := storage.Geofence{
		ID:              def.Name,
		Name:            def.Name,
		Description:     def.Description,
		CenterLatitude:  def.CenterLatitude,
		CenterLongitude: def.CenterLongitude,
		RadiusMeters:    def.RadiusMeters,
		CreatedAt:       time.Now(),
	}
	m.fences = append(m.fences, fence)
	return fence, nil
}

func (m *MockFenceStore) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, f := range m.fences {
		if f.ID == id {
			m.fences = append(m.fences[:i], m.fences[i+1:]...)
			break
		}
	}
	return nil
}

// StaticDetector always returns the configured alert.
type StaticDetector struct {
	Alert *alert.Alert
}

func (d *StaticDetector) Detect(now time.Time, loc *alert.Location) *alert.Alert {
	if d.Alert == nil {
		return nil
	}
	a := *d.Alert
	a.OccurredAt = now
	a.Location = loc
	return &a
}
