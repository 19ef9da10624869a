package service

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/sudzikcoin/PingPoint-sub001/internal/activity"
	"github.com/sudzikcoin/PingPoint-sub001/internal/database"
	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
	"github.com/sudzikcoin/PingPoint-sub001/internal/repository"
	"github.com/sudzikcoin/PingPoint-sub001/internal/token"
)

// StopService applies manual arrival/departure updates. A manual update
// bypasses the engine entirely and freezes the stop against any further
// automatic transition.
type StopService struct {
	db        *sql.DB
	links     *LinkService
	engine    *GeofenceEngine
	publisher activity.Publisher
}

// NewStopService creates a manual stop update service
func NewStopService(db *sql.DB, links *LinkService, engine *GeofenceEngine, publisher activity.Publisher) *StopService {
	return &StopService{db: db, links: links, engine: engine, publisher: publisher}
}

// ManualUpdate sets arrived/departed on a stop by driver action. The stop is
// flagged manually overridden and its streak counters are zeroed so noisy
// classifications accumulated before the update cannot fire later.
func (s *StopService) ManualUpdate(ctx context.Context, driverToken, stopID string, req *models.ManualStopUpdateRequest, now time.Time) (*models.Stop, error) {
	link, err := s.links.Resolve(driverToken, models.RoleDriver)
	if err != nil {
		return nil, err
	}

	stops := repository.NewStopRepository(s.db)
	stop, err := stops.GetByID(stopID)
	if err != nil {
		return nil, err
	}
	if stop == nil || stop.LoadID != link.LoadID {
		// A stop on someone else's load is indistinguishable from a
		// missing one.
		return nil, ErrNotFound
	}

	if err := checkManualUpdate(stop, req); err != nil {
		return nil, err
	}

	driverID := "drv-" + token.Digest(driverToken)
	var events []models.ActivityEvent

	err = database.TransactionOn(s.db, func(tx *sql.Tx) error {
		txStops := repository.NewStopRepository(tx)
		txStates := repository.NewGeofenceRepository(tx)
		txActivity := repository.NewActivityRepository(tx)
		txLoads := repository.NewLoadRepository(tx)

		if err := txStops.ManualUpdate(stopID, req.ArrivedAt, req.DepartedAt); err != nil {
			return err
		}
		if err := txStates.ResetStreaksForStop(stopID, now.Unix()); err != nil {
			return err
		}

		if req.ArrivedAt != nil {
			ev := models.ActivityEvent{
				LoadID: link.LoadID, StopID: stopID, DriverID: driverID,
				Kind: models.ActivityManualArrival, CreatedAt: now,
			}
			if err := txActivity.Insert(&ev); err != nil {
				return err
			}
			events = append(events, ev)

			final, err := s.engine.isFinalDropoff(EngineStores{Stops: txStops}, stop)
			if err != nil {
				return err
			}
			if final {
				delivered, err := txLoads.MarkDelivered(link.LoadID, *req.ArrivedAt)
				if err != nil {
					return err
				}
				if delivered {
					ev := models.ActivityEvent{
						LoadID: link.LoadID, StopID: stopID, DriverID: driverID,
						Kind: models.ActivityLoadDelivered, Detail: "manual arrival at final dropoff",
						CreatedAt: now,
					}
					if err := txActivity.Insert(&ev); err != nil {
						return err
					}
					events = append(events, ev)
				}
			}
		}
		if req.DepartedAt != nil {
			ev := models.ActivityEvent{
				LoadID: link.LoadID, StopID: stopID, DriverID: driverID,
				Kind: models.ActivityManualDeparture, CreatedAt: now,
			}
			if err := txActivity.Insert(&ev); err != nil {
				return err
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ev := range events {
		if s.publisher == nil {
			continue
		}
		if err := s.publisher.Publish(ctx, ev); err != nil {
			log.Printf("activity publish failed for load %s: %v", ev.LoadID, err)
		}
	}

	return stops.GetByID(stopID)
}

// checkManualUpdate enforces the arrival-before-departure invariant against
// the combination of existing timestamps and the requested ones
func checkManualUpdate(stop *models.Stop, req *models.ManualStopUpdateRequest) error {
	if req.ArrivedAt == nil && req.DepartedAt == nil {
		return NewValidationError("empty_update")
	}

	arrived := stop.ArrivedAt
	if req.ArrivedAt != nil {
		arrived = req.ArrivedAt
	}
	departed := stop.DepartedAt
	if req.DepartedAt != nil {
		departed = req.DepartedAt
	}

	if departed != nil {
		if arrived == nil {
			return NewValidationError(ReasonDepartureWithoutArrival)
		}
		if departed.Before(*arrived) {
			return NewValidationError(ReasonDepartureBeforeArrival)
		}
	}
	return nil
}
