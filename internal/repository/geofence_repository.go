package repository

import (
	"database/sql"
	"fmt"

	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
)

// GeofenceRepository handles database operations for per (stop, driver)
// hysteresis state
type GeofenceRepository struct {
	db Querier
}

// NewGeofenceRepository creates a new geofence state repository
func NewGeofenceRepository(db Querier) *GeofenceRepository {
	return &GeofenceRepository{db: db}
}

// Get retrieves the state row for a (stop, driver) pair, or nil if the pair
// has never been classified
func (r *GeofenceRepository) Get(stopID, driverID string) (*models.GeofenceState, error) {
	query := `SELECT stop_id, driver_id, last_classification, inside_streak, outside_streak,
		last_arrive_attempt_at, last_depart_attempt_at, updated_at
		FROM geofence_states WHERE stop_id = ? AND driver_id = ?`

	var gs models.GeofenceState
	var classification string
	var arriveAttempt, departAttempt sql.NullInt64
	var updatedAt int64

	err := r.db.QueryRow(query, stopID, driverID).Scan(
		&gs.StopID, &gs.DriverID, &classification, &gs.InsideStreak, &gs.OutsideStreak,
		&arriveAttempt, &departAttempt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan geofence state: %w", err)
	}

	gs.LastClassification = models.Classification(classification)
	gs.LastArriveAttempt = fromUnix(arriveAttempt)
	gs.LastDepartAttempt = fromUnix(departAttempt)
	gs.UpdatedAt = unixTime(updatedAt)
	return &gs, nil
}

// Upsert writes the state row, creating it lazily on first classification
func (r *GeofenceRepository) Upsert(gs *models.GeofenceState) error {
	query := `INSERT INTO geofence_states
		(stop_id, driver_id, last_classification, inside_streak, outside_streak,
		 last_arrive_attempt_at, last_depart_attempt_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(stop_id, driver_id) DO UPDATE SET
			last_classification = excluded.last_classification,
			inside_streak = excluded.inside_streak,
			outside_streak = excluded.outside_streak,
			last_arrive_attempt_at = excluded.last_arrive_attempt_at,
			last_depart_attempt_at = excluded.last_depart_attempt_at,
			updated_at = excluded.updated_at`

	_, err := r.db.Exec(query,
		gs.StopID, gs.DriverID, string(gs.LastClassification),
		gs.InsideStreak, gs.OutsideStreak,
		toUnix(gs.LastArriveAttempt), toUnix(gs.LastDepartAttempt),
		gs.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert geofence state: %w", err)
	}
	return nil
}

// ResetStreaksForStop zeroes the streak counters on every driver's state row
// for a stop. Called when a manual update freezes the stop.
func (r *GeofenceRepository) ResetStreaksForStop(stopID string, atUnix int64) error {
	_, err := r.db.Exec(
		`UPDATE geofence_states SET inside_streak = 0, outside_streak = 0, updated_at = ?
		WHERE stop_id = ?`,
		atUnix, stopID,
	)
	if err != nil {
		return fmt.Errorf("failed to reset geofence streaks: %w", err)
	}
	return nil
}
