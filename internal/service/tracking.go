package service

import (
	"encoding/json"
	"math"
	"time"

	"github.com/sudzikcoin/PingPoint-sub001/internal/cache"
	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
)

// Narrow store views so tests can substitute mocks for the repositories.

type linkResolver interface {
	Resolve(candidate string, role models.LinkRole) (*models.TrackingLink, error)
}

type loadGetter interface {
	GetByID(id string) (*models.Load, error)
}

type stopLister interface {
	GetByLoad(loadID string) ([]models.Stop, error)
}

type lastPingGetter interface {
	GetLatestForLoad(loadID string) (*models.LocationReport, error)
}

// TrackingService serves the public tracking read: link expiry, sanitized
// snapshot assembly, and the short-lived response cache. The per-(ip, token)
// rate limit sits in front of it as middleware.
type TrackingService struct {
	links     linkResolver
	loads     loadGetter
	stops     stopLister
	reports   lastPingGetter
	snapshots *cache.SnapshotCache
	linkTTL   time.Duration
	metrics   Metrics
}

// NewTrackingService creates a tracking read service. linkTTL is how long a
// public link stays valid after delivery.
func NewTrackingService(
	links linkResolver,
	loads loadGetter,
	stops stopLister,
	reports lastPingGetter,
	snapshots *cache.SnapshotCache,
	linkTTL time.Duration,
	metrics Metrics,
) *TrackingService {
	return &TrackingService{
		links:     links,
		loads:     loads,
		stops:     stops,
		reports:   reports,
		snapshots: snapshots,
		linkTTL:   linkTTL,
		metrics:   metrics,
	}
}

// GetSnapshot returns the serialized sanitized snapshot for a public token.
// Cached responses are returned unchanged so repeated reads of a popular
// link collapse into a single backing read.
func (s *TrackingService) GetSnapshot(candidate string, now time.Time) ([]byte, error) {
	if payload, ok := s.snapshots.Get(candidate, now); ok {
		if s.metrics != nil {
			s.metrics.CacheHit()
		}
		return payload, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMiss()
	}

	link, err := s.links.Resolve(candidate, models.RolePublic)
	if err != nil {
		return nil, err
	}

	load, err := s.loads.GetByID(link.LoadID)
	if err != nil {
		return nil, err
	}
	if load == nil {
		return nil, ErrNotFound
	}

	// A delivered load's link goes stale after the TTL; an undelivered
	// load's link never expires regardless of age.
	if load.DeliveredAt != nil && now.Sub(*load.DeliveredAt) > s.linkTTL {
		return nil, ErrLinkExpired
	}

	stops, err := s.stops.GetByLoad(load.ID)
	if err != nil {
		return nil, err
	}
	lastPing, err := s.reports.GetLatestForLoad(load.ID)
	if err != nil {
		return nil, err
	}

	snapshot := sanitize(load, stops, lastPing)
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	s.snapshots.Set(candidate, payload, now)
	return payload, nil
}

// sanitize builds the public view: no identifiers, no monetary fields, no
// tokens, coordinates coarsened.
func sanitize(load *models.Load, stops []models.Stop, lastPing *models.LocationReport) *models.PublicSnapshot {
	snap := &models.PublicSnapshot{
		Status: load.Status,
		Stops:  make([]models.PublicStop, 0, len(stops)),
	}
	for _, st := range stops {
		snap.Stops = append(snap.Stops, models.PublicStop{
			Type:       st.Type,
			City:       st.City,
			State:      st.State,
			WindowFrom: st.WindowFrom,
			WindowTo:   st.WindowTo,
		})
	}
	if lastPing != nil {
		snap.LastPing = &models.PingSummary{
			Latitude:   roundCoord(lastPing.Latitude),
			Longitude:  roundCoord(lastPing.Longitude),
			RecordedAt: lastPing.RecordedAt,
		}
	}
	return snap
}

// roundCoord coarsens a coordinate to two decimal places, roughly a
// kilometer, before it leaves the service
func roundCoord(v float64) float64 {
	return math.Round(v*100) / 100
}
