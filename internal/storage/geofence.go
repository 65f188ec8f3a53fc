package storage

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ErrValidation marks a geofence definition rejected at creation time.
var ErrValidation = errors.New("validation failed")

// ErrStorage marks a persistence failure in one of the stores.
var ErrStorage = errors.New("storage failure")

// Geofence is a named circular restricted zone. Immutable once created;
// the only mutation is removal.
type Geofence struct {
	// ID is the unique identifier assigned by the store (UUID v4)
	ID string `json:"id"`

	// Name is the user-facing zone name
	Name string `json:"name"`

	// Description is optional free text
	Description string `json:"description"`

	// CenterLatitude is the zone center latitude in degrees
	CenterLatitude float64 `json:"centerLatitude"`

	// CenterLongitude is the zone center longitude in degrees
	CenterLongitude float64 `json:"centerLongitude"`

	// RadiusMeters is the zone radius, always > 0
	RadiusMeters float64 `json:"radiusMeters"`

	// CreatedAt is when the zone was added
	CreatedAt time.Time `json:"createdAt"`
}

// GeofenceDefinition is the caller-supplied part of a geofence; the store
// assigns ID and CreatedAt.
type GeofenceDefinition struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	CenterLatitude  float64 `json:"centerLatitude"`
	CenterLongitude float64 `json:"centerLongitude"`
	RadiusMeters    float64 `json:"radiusMeters"`
}

// ValidateDefinition checks a geofence definition before it is persisted.
// A definition that fails here never reaches the monitoring engine.
func ValidateDefinition(def GeofenceDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("%w: missing required field 'name'", ErrValidation)
	}
	if def.CenterLatitude < -90 || def.CenterLatitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrValidation, def.CenterLatitude)
	}
	if def.CenterLongitude < -180 || def.CenterLongitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrValidation, def.CenterLongitude)
	}
	if def.RadiusMeters <= 0 {
		return fmt.Errorf("%w: radius must be positive (got %v)", ErrValidation, def.RadiusMeters)
	}
	return nil
}

// GeofenceStore is the durable mapping from geofence id to definition.
// List returns zones in insertion order.
type GeofenceStore interface {
	List() ([]Geofence, error)
	Get(id string) (*Geofence, error)
	Add(def GeofenceDefinition) (Geofence, error)
	Remove(id string) error
}
