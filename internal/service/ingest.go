package service

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/sudzikcoin/PingPoint-sub001/internal/activity"
	"github.com/sudzikcoin/PingPoint-sub001/internal/database"
	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
	"github.com/sudzikcoin/PingPoint-sub001/internal/ratelimit"
	"github.com/sudzikcoin/PingPoint-sub001/internal/repository"
	"github.com/sudzikcoin/PingPoint-sub001/internal/token"
)

// IngestService runs the full submission pipeline: authorize, debounce,
// validate, plausibility-screen, persist, classify. The persist and classify
// steps share one transaction so a report and its geofence consequences
// commit or roll back together.
type IngestService struct {
	db        *sql.DB
	links     *LinkService
	debounce  *ratelimit.Debouncer
	validator *Validator
	filter    *PlausibilityFilter
	engine    *GeofenceEngine
	publisher activity.Publisher
	metrics   Metrics

	// locks serializes the submission pipeline per (load, driver): the
	// debounce check-and-consume and the classify read-modify-write
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewIngestService wires the submission pipeline
func NewIngestService(
	db *sql.DB,
	links *LinkService,
	debounce *ratelimit.Debouncer,
	validator *Validator,
	filter *PlausibilityFilter,
	engine *GeofenceEngine,
	publisher activity.Publisher,
	metrics Metrics,
) *IngestService {
	return &IngestService{
		db:        db,
		links:     links,
		debounce:  debounce,
		validator: validator,
		filter:    filter,
		engine:    engine,
		publisher: publisher,
		metrics:   metrics,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Submit processes one driver location report. The returned error is one of
// ErrUnauthorized, ErrRateLimited, a *ValidationError, or a persistence
// failure; on any of them nothing has been persisted except the soft-reject
// audit row described on SubmitReportResponse.Plausible.
func (s *IngestService) Submit(ctx context.Context, driverToken string, req *models.SubmitReportRequest, now time.Time) (*models.SubmitReportResponse, error) {
	link, err := s.links.Resolve(driverToken, models.RoleDriver)
	if err != nil {
		return nil, err
	}

	// The driver identity is the link token's full digest: one driver link,
	// one identity, and the raw token never reaches keys or rows. The short
	// fragment is only a log and rate-key handle.
	frag := token.Fragment(driverToken)
	driverID := "drv-" + token.Digest(driverToken)

	// The lock must cover the debounce check as well as the eventual
	// consume after commit; otherwise two in-flight submissions both read a
	// stale last-accepted time and both pass the interval check.
	unlock := s.lock(link.LoadID, driverID)
	defer unlock()

	if !s.debounce.Allow(frag, now) {
		if s.metrics != nil {
			s.metrics.RateLimited("ingest")
		}
		return nil, ErrRateLimited
	}

	recordedAt, err := s.validator.Validate(req, now)
	if err != nil {
		if ve, ok := AsValidationError(err); ok && s.metrics != nil {
			s.metrics.PingRejected(ve.Reason)
		}
		return nil, err
	}

	source := req.Source
	if source == "" {
		source = models.SourceDriverApp
	}

	rep := &models.LocationReport{
		LoadID:     link.LoadID,
		DriverID:   driverID,
		Latitude:   *req.Latitude,
		Longitude:  *req.Longitude,
		AccuracyM:  req.AccuracyM,
		SpeedMPH:   req.SpeedMPH,
		Heading:    req.Heading,
		Source:     source,
		RecordedAt: recordedAt,
		ReceivedAt: now.UTC(),
	}

	var events []models.ActivityEvent
	err = database.TransactionOn(s.db, func(tx *sql.Tx) error {
		reports := repository.NewReportRepository(tx)

		prev, err := reports.GetLastAccepted(link.LoadID, driverID)
		if err != nil {
			return err
		}
		rep.Plausible = s.filter.Plausible(prev, rep.Latitude, rep.Longitude, rep.RecordedAt)

		id, err := reports.Insert(rep)
		if err != nil {
			return err
		}
		rep.ID = id

		if !rep.Plausible {
			// Soft reject: the audit row above is all that happens.
			return nil
		}

		stores := EngineStores{
			Stops:    repository.NewStopRepository(tx),
			States:   repository.NewGeofenceRepository(tx),
			Activity: repository.NewActivityRepository(tx),
			Loads:    repository.NewLoadRepository(tx),
		}
		events, err = s.engine.Process(stores, rep, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	// The slot is consumed only once the report is durably stored.
	s.debounce.Accept(frag, now)

	if s.metrics != nil {
		s.metrics.PingAccepted()
		if !rep.Plausible {
			s.metrics.PingImplausible()
		}
	}
	s.publish(ctx, events)

	return &models.SubmitReportResponse{ReportID: rep.ID, Plausible: rep.Plausible}, nil
}

// publish sends committed activity events best-effort
func (s *IngestService) publish(ctx context.Context, events []models.ActivityEvent) {
	for _, ev := range events {
		if s.metrics != nil {
			switch ev.Kind {
			case models.ActivityAutoArrival:
				s.metrics.AutoArrival()
			case models.ActivityAutoDeparture:
				s.metrics.AutoDeparture()
			}
		}
		if s.publisher == nil {
			continue
		}
		if err := s.publisher.Publish(ctx, ev); err != nil {
			log.Printf("activity publish failed for load %s: %v", ev.LoadID, err)
		}
	}
}

func (s *IngestService) lock(loadID, driverID string) func() {
	key := loadID + "|" + driverID
	s.locksMu.Lock()
	mu, ok := s.locks[key]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[key] = mu
	}
	s.locksMu.Unlock()
	mu.Lock()
	return mu.Unlock
}
