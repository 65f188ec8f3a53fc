package location

import (
	"time"

	"github.com/safetrail/engine/internal/geo"
)

// Sample is one geolocation fix from the device.
type Sample struct {
	// Latitude in degrees, [-90, 90]
	Latitude float64 `json:"latitude"`

	// Longitude in degrees, [-180, 180]
	Longitude float64 `json:"longitude"`

	// AccuracyMeters is the reported fix uncertainty, >= 0
	AccuracyMeters float64 `json:"accuracyMeters"`

	// CapturedAt is when the fix was taken
	CapturedAt time.Time `json:"capturedAt"`
}

// Point returns the sample's coordinate.
func (s Sample) Point() geo.Point {
	return geo.Point{Latitude: s.Latitude, Longitude: s.Longitude}
}

// Unsubscribe detaches a previously registered sample callback.
type Unsubscribe func()

// Source produces a push stream of location samples at irregular
// intervals. Implementations live outside the engine (the device
// location service); the engine only consumes this contract.
type Source interface {
	// Granted reports whether location permission has been granted.
	// When false, Subscribe delivers no samples and Current fails.
	Granted() bool

	// Subscribe registers a callback for future samples and returns a
	// handle that detaches it. Callbacks may be invoked from a separate
	// goroutine.
	Subscribe(fn func(Sample)) (Unsubscribe, error)

	// Current returns an immediate one-off fix.
	Current() (Sample, error)
}
