package repository

import (
	"database/sql"
	"fmt"

	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
)

// LinkRepository handles database operations for tracking links
type LinkRepository struct {
	db Querier
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(db Querier) *LinkRepository {
	return &LinkRepository{db: db}
}

// Insert persists a newly issued link
func (r *LinkRepository) Insert(link *models.TrackingLink) error {
	query := `INSERT INTO tracking_links (digest, token, load_id, role, created_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query,
		link.Digest, link.Token, link.LoadID, string(link.Role), link.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert tracking link: %w", err)
	}
	return nil
}

// FindByDigest fetches a link row by the token digest, or nil when absent.
// Callers must still verify the stored token constant-time against the
// candidate; the digest index only locates the row.
func (r *LinkRepository) FindByDigest(digest string) (*models.TrackingLink, error) {
	query := `SELECT digest, token, load_id, role, created_at
		FROM tracking_links WHERE digest = ?`

	var link models.TrackingLink
	var role string
	var createdAt int64
	err := r.db.QueryRow(query, digest).Scan(
		&link.Digest, &link.Token, &link.LoadID, &role, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan tracking link: %w", err)
	}
	link.Role = models.LinkRole(role)
	link.CreatedAt = unixTime(createdAt)
	return &link, nil
}
