package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
)

// StopRepository handles database operations for stops
type StopRepository struct {
	db Querier
}

// NewStopRepository creates a new stop repository
func NewStopRepository(db Querier) *StopRepository {
	return &StopRepository{db: db}
}

const stopColumns = `id, load_id, sequence, type, city, state, lat, lng,
	geofence_radius_m, window_from, window_to, arrived_at, departed_at, manual_override`

// GetByID retrieves a single stop, or nil if it does not exist
func (r *StopRepository) GetByID(id string) (*models.Stop, error) {
	query := "SELECT " + stopColumns + " FROM stops WHERE id = ?"
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByLoad retrieves all stops for a load in sequence order
func (r *StopRepository) GetByLoad(loadID string) ([]models.Stop, error) {
	query := "SELECT " + stopColumns + " FROM stops WHERE load_id = ? ORDER BY sequence"
	rows, err := r.db.Query(query, loadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stops: %w", err)
	}
	defer rows.Close()

	var stops []models.Stop
	for rows.Next() {
		s, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		stops = append(stops, *s)
	}
	return stops, rows.Err()
}

// GetActiveStop returns the load's lowest-sequence stop that has not been
// departed and is not manually overridden, or nil when every stop is closed.
// This is the stop a fresh report classifies against.
func (r *StopRepository) GetActiveStop(loadID string) (*models.Stop, error) {
	query := "SELECT " + stopColumns + ` FROM stops
		WHERE load_id = ? AND departed_at IS NULL AND manual_override = 0
		ORDER BY sequence LIMIT 1`
	return r.scanOne(r.db.QueryRow(query, loadID))
}

// MarkArrived stamps arrived_at once. The IS NULL guard makes the update a
// conditional check-and-set so concurrent classifications cannot
// double-trigger arrival.
func (r *StopRepository) MarkArrived(stopID string, at time.Time) (bool, error) {
	res, err := r.db.Exec(
		`UPDATE stops SET arrived_at = ? WHERE id = ? AND arrived_at IS NULL AND manual_override = 0`,
		at.Unix(), stopID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark stop arrived: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}

// MarkDeparted stamps departed_at once on an already-arrived stop
func (r *StopRepository) MarkDeparted(stopID string, at time.Time) (bool, error) {
	res, err := r.db.Exec(
		`UPDATE stops SET departed_at = ?
		WHERE id = ? AND arrived_at IS NOT NULL AND departed_at IS NULL AND manual_override = 0`,
		at.Unix(), stopID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark stop departed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}

// ManualUpdate sets arrival and/or departure by hand and flags the stop so
// the engine never touches it again
func (r *StopRepository) ManualUpdate(stopID string, arrivedAt, departedAt *time.Time) error {
	query := `UPDATE stops SET
		arrived_at = COALESCE(?, arrived_at),
		departed_at = COALESCE(?, departed_at),
		manual_override = 1
		WHERE id = ?`
	_, err := r.db.Exec(query, toUnix(arrivedAt), toUnix(departedAt), stopID)
	if err != nil {
		return fmt.Errorf("failed to apply manual stop update: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *StopRepository) scanOne(row *sql.Row) (*models.Stop, error) {
	s, err := r.scanRow(row)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *StopRepository) scanRow(row rowScanner) (*models.Stop, error) {
	var s models.Stop
	var typ string
	var lat, lng sql.NullFloat64
	var windowFrom, windowTo, arrivedAt, departedAt sql.NullInt64
	var manual int

	err := row.Scan(
		&s.ID, &s.LoadID, &s.Sequence, &typ, &s.City, &s.State, &lat, &lng,
		&s.GeofenceRadiusM, &windowFrom, &windowTo, &arrivedAt, &departedAt, &manual,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan stop: %w", err)
	}

	s.Type = models.StopType(typ)
	if lat.Valid {
		s.Latitude = &lat.Float64
	}
	if lng.Valid {
		s.Longitude = &lng.Float64
	}
	s.WindowFrom = fromUnix(windowFrom)
	s.WindowTo = fromUnix(windowTo)
	s.ArrivedAt = fromUnix(arrivedAt)
	s.DepartedAt = fromUnix(departedAt)
	s.ManualOverride = manual == 1
	return &s, nil
}
