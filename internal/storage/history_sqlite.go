package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/safetrail/engine/internal/alert"
)

// SQLiteHistory persists the capped alert history in the engine database.
type SQLiteHistory struct {
	db  *sql.DB
	cap int
}

// NewSQLiteHistory creates a durable alert history backed by db.
// A cap of zero or less falls back to DefaultHistoryCap.
func NewSQLiteHistory(db *sql.DB, capacity int) *SQLiteHistory {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	return &SQLiteHistory{db: db, cap: capacity}
}

// Append inserts a and trims the oldest rows beyond the cap.
func (h *SQLiteHistory) Append(a alert.Alert) error {
	var metadata []byte
	if a.Metadata != nil {
		var err error
		metadata, err = json.Marshal(a.Metadata)
		if err != nil {
			return fmt.Errorf("%w: failed to marshal alert metadata: %v", ErrStorage, err)
		}
	}

	var lat, lng sql.NullFloat64
	if a.Location != nil {
		lat = sql.NullFloat64{Float64: a.Location.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: a.Location.Longitude, Valid: true}
	}

	_, err := h.db.Exec(`
		INSERT INTO alerts (id, category, severity, message, latitude, longitude, occurred_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Category), string(a.Severity), a.Message, lat, lng, a.OccurredAt, metadata)
	if err != nil {
		return fmt.Errorf("%w: failed to insert alert: %v", ErrStorage, err)
	}

	// Evict oldest entries beyond the cap
	_, err = h.db.Exec(`
		DELETE FROM alerts WHERE seq NOT IN (
			SELECT seq FROM alerts ORDER BY seq DESC LIMIT ?
		)`, h.cap)
	if err != nil {
		return fmt.Errorf("%w: failed to trim alert history: %v", ErrStorage, err)
	}
	return nil
}

// Recent returns the retained alerts, most-recent first.
func (h *SQLiteHistory) Recent() ([]alert.Alert, error) {
	rows, err := h.db.Query(`
		SELECT id, category, severity, message, latitude, longitude, occurred_at, metadata
		FROM alerts ORDER BY seq DESC LIMIT ?`, h.cap)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query alerts: %v", ErrStorage, err)
	}
	defer rows.Close()

	var alerts []alert.Alert
	for rows.Next() {
		var a alert.Alert
		var category, severity string
		var lat, lng sql.NullFloat64
		var metadata []byte
		if err := rows.Scan(&a.ID, &category, &severity, &a.Message,
			&lat, &lng, &a.OccurredAt, &metadata); err != nil {
			return nil, fmt.Errorf("%w: failed to scan alert: %v", ErrStorage, err)
		}
		a.Category = alert.Category(category)
		a.Severity = alert.Severity(severity)
		if lat.Valid && lng.Valid {
			a.Location = &alert.Location{Latitude: lat.Float64, Longitude: lng.Float64}
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &a.Metadata); err != nil {
				return nil, fmt.Errorf("%w: failed to unmarshal alert metadata: %v", ErrStorage, err)
			}
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate alerts: %v", ErrStorage, err)
	}
	return alerts, nil
}

// Clear discards the entire alert history.
func (h *SQLiteHistory) Clear() error {
	if _, err := h.db.Exec(`DELETE FROM alerts`); err != nil {
		return fmt.Errorf("%w: failed to clear alert history: %v", ErrStorage, err)
	}
	return nil
}
