package service

import (
	"fmt"
	"time"

	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
	"github.com/sudzikcoin/PingPoint-sub001/internal/repository"
	"github.com/sudzikcoin/PingPoint-sub001/internal/token"
)

// LinkService issues and resolves the opaque tokens gating driver and public
// access to a load
type LinkService struct {
	links *repository.LinkRepository
	loads *repository.LoadRepository
}

// NewLinkService creates a new link service
func NewLinkService(links *repository.LinkRepository, loads *repository.LoadRepository) *LinkService {
	return &LinkService{links: links, loads: loads}
}

// Issue mints a fresh token for (loadID, role) and persists its binding.
// The token is returned exactly once; it cannot be re-derived later.
func (s *LinkService) Issue(loadID string, role models.LinkRole) (*models.TrackingLink, error) {
	if !role.Valid() {
		return nil, NewValidationError("invalid_role")
	}
	load, err := s.loads.GetByID(loadID)
	if err != nil {
		return nil, err
	}
	if load == nil {
		return nil, ErrNotFound
	}

	tok, err := token.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	link := &models.TrackingLink{
		Digest:    token.Digest(tok),
		Token:     tok,
		LoadID:    loadID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.links.Insert(link); err != nil {
		return nil, err
	}
	return link, nil
}

// Resolve authorizes a candidate token for a role. The digest only locates
// the row; the stored token is still compared constant-time against the
// candidate before anything else happens.
func (s *LinkService) Resolve(candidate string, role models.LinkRole) (*models.TrackingLink, error) {
	if candidate == "" {
		return nil, ErrUnauthorized
	}
	link, err := s.links.FindByDigest(token.Digest(candidate))
	if err != nil {
		return nil, err
	}
	if link == nil || link.Role != role {
		return nil, ErrUnauthorized
	}
	if !token.Verify(candidate, link.Token) {
		return nil, ErrUnauthorized
	}
	return link, nil
}
