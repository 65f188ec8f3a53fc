package monitor

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/safetrail/engine/internal/alert"
)

// AnomalyCheckInterval is how often the supervisor asks the detector
// for an anomaly verdict.
const AnomalyCheckInterval = 120 * time.Second

// AnomalyDetector is the pluggable anomaly capability. Implementations
// return a fresh alert when they detect something, nil otherwise.
// A real sensing backend substitutes here without touching the
// supervisor.
type AnomalyDetector interface {
	Detect(now time.Time, loc *alert.Location) *alert.Alert
}

// DetectorFactory creates a detector instance by name.
type DetectorFactory func() (AnomalyDetector, error)

var (
	detectorMu       sync.RWMutex
	detectorRegistry = make(map[string]DetectorFactory)
)

// RegisterDetectorFactory registers a detector factory under a name so
// deployments can select detectors by configuration.
func RegisterDetectorFactory(name string, factory DetectorFactory) {
	detectorMu.Lock()
	defer detectorMu.Unlock()
	detectorRegistry[name] = factory
}

// CreateDetector instantiates the named detector.
// Returns an error for unknown names.
func CreateDetector(name string) (AnomalyDetector, error) {
	detectorMu.RLock()
	factory, exists := detectorRegistry[name]
	detectorMu.RUnlock()

	if !exists {
		return nil, errors.Errorf("unknown anomaly detector: %s", name)
	}
	return factory()
}

func init() {
	RegisterDetectorFactory("simulated", func() (AnomalyDetector, error) {
		return NewSimulatedDetector(rand.New(rand.NewSource(time.Now().UnixNano()))), nil
	})
}

// anomalyCatalog is the fixed set of simulated anomaly descriptions.
var anomalyCatalog = []string{
	"Unusual crowd gathering",
	"Suspicious activity detected",
	"Weather alert",
}

const (
	anomalyProbability      = 0.10
	anomalyHighSeverityRate = 0.30
)

// SimulatedDetector is a placeholder detector: each check draws a
// Bernoulli trial and, on success, reports a random catalog entry.
type SimulatedDetector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedDetector creates a simulated detector using rng. Tests
// inject a seeded source for deterministic draws.
func NewSimulatedDetector(rng *rand.Rand) *SimulatedDetector {
	return &SimulatedDetector{rng: rng}
}

// Detect reports an anomaly with probability 0.10; severity is HIGH
// with probability 0.30, LOW otherwise.
func (d *SimulatedDetector) Detect(now time.Time, loc *alert.Location) *alert.Alert {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.rng.Float64() >= anomalyProbability {
		return nil
	}

	message := anomalyCatalog[d.rng.Intn(len(anomalyCatalog))]
	severity := alert.SeverityLow
	if d.rng.Float64() < anomalyHighSeverityRate {
		severity = alert.SeverityHigh
	}

	a := alert.New(alert.CategoryAnomaly, severity, message, now)
	a.Location = loc
	return &a
}
