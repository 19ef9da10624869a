package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
)

// LoadRepository reads the minimal load surface this service depends on
type LoadRepository struct {
	db Querier
}

// NewLoadRepository creates a new load repository
func NewLoadRepository(db Querier) *LoadRepository {
	return &LoadRepository{db: db}
}

// GetByID retrieves a load, or nil if it does not exist
func (r *LoadRepository) GetByID(id string) (*models.Load, error) {
	query := `SELECT id, status, origin_city, origin_state, dest_city, dest_state, delivered_at, created_at
		FROM loads WHERE id = ?`

	var l models.Load
	var status string
	var deliveredAt sql.NullInt64
	var createdAt int64
	err := r.db.QueryRow(query, id).Scan(
		&l.ID, &status, &l.OriginCity, &l.OriginState, &l.DestCity, &l.DestState,
		&deliveredAt, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan load: %w", err)
	}
	l.Status = models.LoadStatus(status)
	l.DeliveredAt = fromUnix(deliveredAt)
	l.CreatedAt = unixTime(createdAt)
	return &l, nil
}

// MarkDelivered stamps delivered_at once when the final dropoff closes.
// The IS NULL guard keeps the timestamp first-write-wins.
func (r *LoadRepository) MarkDelivered(id string, at time.Time) (bool, error) {
	res, err := r.db.Exec(
		`UPDATE loads SET status = ?, delivered_at = ? WHERE id = ? AND delivered_at IS NULL`,
		string(models.LoadDelivered), at.Unix(), id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark load delivered: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}
