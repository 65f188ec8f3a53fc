package location

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// SimulatedSource emits a random-walk sample stream for the demo daemon
// and for exercising the engine without a device.
type SimulatedSource struct {
	mu          sync.Mutex
	subscribers map[int]func(Sample)
	nextID      int
	current     Sample
	rng         *rand.Rand
	stepDegrees float64

	stop chan struct{}
	done chan struct{}
}

// NewSimulatedSource creates a source walking from a start coordinate,
// emitting a sample every interval until Close.
func NewSimulatedSource(startLat, startLng float64, interval time.Duration) *SimulatedSource {
	s := &SimulatedSource{
		subscribers: make(map[int]func(Sample)),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		stepDegrees: 0.0005, // roughly 50m per step
		current: Sample{
			Latitude:       startLat,
			Longitude:      startLng,
			AccuracyMeters: 10,
			CapturedAt:     time.Now(),
		},
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.walk(interval)
	return s
}

// Granted always reports true for the simulated source.
func (s *SimulatedSource) Granted() bool { return true }

// Subscribe registers fn for future samples.
func (s *SimulatedSource) Subscribe(fn func(Sample)) (Unsubscribe, error) {
	if fn == nil {
		return nil, errors.New("cannot subscribe nil callback")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}, nil
}

// Current returns the most recent simulated fix.
func (s *SimulatedSource) Current() (Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, nil
}

// Close stops the walk goroutine and waits for it to finish.
func (s *SimulatedSource) Close() {
	close(s.stop)
	<-s.done
}

func (s *SimulatedSource) walk(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-ticker.C:
			s.step()
		case <-s.stop:
			return
		}
	}
}

func (s *SimulatedSource) step() {
	s.mu.Lock()
	s.current = Sample{
		Latitude:       s.current.Latitude + (s.rng.Float64()-0.5)*2*s.stepDegrees,
		Longitude:      s.current.Longitude + (s.rng.Float64()-0.5)*2*s.stepDegrees,
		AccuracyMeters: 5 + s.rng.Float64()*20,
		CapturedAt:     time.Now(),
	}
	sample := s.current
	fns := make([]func(Sample), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(sample)
	}
}
