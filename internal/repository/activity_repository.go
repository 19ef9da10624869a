package repository

import (
	"fmt"

	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
)

// ActivityRepository appends audit records for stop transitions
type ActivityRepository struct {
	db Querier
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db Querier) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Insert appends an activity event
func (r *ActivityRepository) Insert(ev *models.ActivityEvent) error {
	query := `INSERT INTO activity_events (load_id, stop_id, driver_id, kind, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query,
		ev.LoadID, ev.StopID, ev.DriverID, string(ev.Kind), ev.Detail, ev.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity event: %w", err)
	}
	return nil
}

// GetByLoad retrieves activity events for a load, newest first
func (r *ActivityRepository) GetByLoad(loadID string, limit int) ([]models.ActivityEvent, error) {
	if limit < 1 {
		limit = 50
	}
	query := `SELECT id, load_id, stop_id, driver_id, kind, detail, created_at
		FROM activity_events WHERE load_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := r.db.Query(query, loadID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity events: %w", err)
	}
	defer rows.Close()

	var events []models.ActivityEvent
	for rows.Next() {
		var ev models.ActivityEvent
		var kind string
		var createdAt int64
		if err := rows.Scan(&ev.ID, &ev.LoadID, &ev.StopID, &ev.DriverID, &kind, &ev.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity event: %w", err)
		}
		ev.Kind = models.ActivityKind(kind)
		ev.CreatedAt = unixTime(createdAt)
		events = append(events, ev)
	}
	return events, rows.Err()
}
