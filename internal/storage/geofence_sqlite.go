package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLiteGeofenceStore persists geofences in the engine database.
type SQLiteGeofenceStore struct {
	db *sql.DB
}

// NewSQLiteGeofenceStore creates a geofence store backed by db.
func NewSQLiteGeofenceStore(db *sql.DB) *SQLiteGeofenceStore {
	return &SQLiteGeofenceStore{db: db}
}

// List returns all geofences in insertion order.
func (s *SQLiteGeofenceStore) List() ([]Geofence, error) {
	rows, err := s.db.Query(`
		SELECT id, name, description, center_latitude, center_longitude, radius_meters, created_at
		FROM geofences ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query geofences: %v", ErrStorage, err)
	}
	defer rows.Close()

	var fences []Geofence
	for rows.Next() {
		var f Geofence
		if err := rows.Scan(&f.ID, &f.Name, &f.Description,
			&f.CenterLatitude, &f.CenterLongitude, &f.RadiusMeters, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan geofence: %v", ErrStorage, err)
		}
		fences = append(fences, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate geofences: %v", ErrStorage, err)
	}
	return fences, nil
}

// Get retrieves a single geofence by id. Returns nil if it does not exist.
func (s *SQLiteGeofenceStore) Get(id string) (*Geofence, error) {
	var f Geofence
	err := s.db.QueryRow(`
		SELECT id, name, description, center_latitude, center_longitude, radius_meters, created_at
		FROM geofences WHERE id = ?`, id).
		Scan(&f.ID, &f.Name, &f.Description,
			&f.CenterLatitude, &f.CenterLongitude, &f.RadiusMeters, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get geofence %s: %v", ErrStorage, id, err)
	}
	return &f, nil
}

// Add validates def, assigns an id and creation time, and persists it.
func (s *SQLiteGeofenceStore) Add(def GeofenceDefinition) (Geofence, error) {
	if err := ValidateDefinition(def); err != nil {
		return Geofence{}, err
	}

	fence := Geofence{
		ID:              uuid.NewString(),
		Name:            def.Name,
		Description:     def.Description,
		CenterLatitude:  def.CenterLatitude,
		CenterLongitude: def.CenterLongitude,
		RadiusMeters:    def.RadiusMeters,
		CreatedAt:       time.Now().UTC(),
	}

	_, err := s.db.Exec(`
		INSERT INTO geofences (id, name, description, center_latitude, center_longitude, radius_meters, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fence.ID, fence.Name, fence.Description,
		fence.CenterLatitude, fence.CenterLongitude, fence.RadiusMeters, fence.CreatedAt)
	if err != nil {
		return Geofence{}, fmt.Errorf("%w: failed to insert geofence: %v", ErrStorage, err)
	}
	return fence, nil
}

// Remove deletes a geofence by id. Removing a missing id is not an error.
func (s *SQLiteGeofenceStore) Remove(id string) error {
	if _, err := s.db.Exec(`DELETE FROM geofences WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: failed to remove geofence %s: %v", ErrStorage, id, err)
	}
	return nil
}
