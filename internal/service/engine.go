package service

import (
	"time"

	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
	"github.com/sudzikcoin/PingPoint-sub001/internal/spatial"
)

// Store interfaces over the repositories so the engine can run against
// transaction-scoped repos in production and hand-rolled mocks in tests.

type stopStore interface {
	GetActiveStop(loadID string) (*models.Stop, error)
	GetByLoad(loadID string) ([]models.Stop, error)
	MarkArrived(stopID string, at time.Time) (bool, error)
	MarkDeparted(stopID string, at time.Time) (bool, error)
}

type geofenceStore interface {
	Get(stopID, driverID string) (*models.GeofenceState, error)
	Upsert(gs *models.GeofenceState) error
}

type activityStore interface {
	Insert(ev *models.ActivityEvent) error
}

type loadStore interface {
	GetByID(id string) (*models.Load, error)
	MarkDelivered(id string, at time.Time) (bool, error)
}

// EngineStores bundles the stores one engine pass operates on. In the
// ingestion path they all share a single transaction.
type EngineStores struct {
	Stops    stopStore
	States   geofenceStore
	Activity activityStore
	Loads    loadStore
}

// GeofenceEngine drives automatic arrival and departure from classified
// reports using streak hysteresis. Callers serialize invocations per
// (load, driver); the conditional updates in the stop store are the second
// line of defense against double transitions.
type GeofenceEngine struct {
	StreakThreshold int
	DefaultRadiusM  float64
}

// NewGeofenceEngine creates an engine with the given consecutive
// classification threshold. defaultRadiusM applies to stops whose stored
// radius is missing or nonsensical.
func NewGeofenceEngine(streakThreshold int, defaultRadiusM float64) *GeofenceEngine {
	return &GeofenceEngine{StreakThreshold: streakThreshold, DefaultRadiusM: defaultRadiusM}
}

// Process classifies one plausible report against the load's active stop and
// applies any resulting transition. It returns the activity events recorded,
// which callers publish after their transaction commits. Reports for loads
// with no open stop, and stops without a registered coordinate, are skipped.
func (e *GeofenceEngine) Process(st EngineStores, rep *models.LocationReport, now time.Time) ([]models.ActivityEvent, error) {
	stop, err := st.Stops.GetActiveStop(rep.LoadID)
	if err != nil {
		return nil, err
	}
	if stop == nil || stop.Terminal() {
		return nil, nil
	}
	if !stop.HasCoordinate() {
		// No geofence center: the stop can only be closed manually.
		return nil, nil
	}

	radius := stop.GeofenceRadiusM
	if radius <= 0 {
		radius = e.DefaultRadiusM
	}
	dist := spatial.HaversineDistance(rep.Latitude, rep.Longitude, *stop.Latitude, *stop.Longitude)
	class := models.ClassOutside
	if dist <= radius {
		class = models.ClassInside
	}

	gs, err := st.States.Get(stop.ID, rep.DriverID)
	if err != nil {
		return nil, err
	}
	if gs == nil {
		gs = &models.GeofenceState{
			StopID:             stop.ID,
			DriverID:           rep.DriverID,
			LastClassification: models.ClassUnknown,
		}
	}

	switch class {
	case models.ClassInside:
		if gs.LastClassification == models.ClassInside {
			gs.InsideStreak++
		} else {
			gs.InsideStreak = 1
		}
		gs.OutsideStreak = 0
	case models.ClassOutside:
		if gs.LastClassification == models.ClassOutside {
			gs.OutsideStreak++
		} else {
			gs.OutsideStreak = 1
		}
		gs.InsideStreak = 0
	}
	gs.LastClassification = class
	gs.UpdatedAt = now

	var events []models.ActivityEvent

	if stop.ArrivedAt == nil && gs.InsideStreak >= e.StreakThreshold {
		gs.LastArriveAttempt = &now
		flipped, err := st.Stops.MarkArrived(stop.ID, now)
		if err != nil {
			return nil, err
		}
		if flipped {
			ev := models.ActivityEvent{
				LoadID:    rep.LoadID,
				StopID:    stop.ID,
				DriverID:  rep.DriverID,
				Kind:      models.ActivityAutoArrival,
				CreatedAt: now,
			}
			if err := st.Activity.Insert(&ev); err != nil {
				return nil, err
			}
			events = append(events, ev)

			if final, err := e.isFinalDropoff(st, stop); err != nil {
				return nil, err
			} else if final {
				delivered, err := st.Loads.MarkDelivered(rep.LoadID, now)
				if err != nil {
					return nil, err
				}
				if delivered {
					ev := models.ActivityEvent{
						LoadID:    rep.LoadID,
						StopID:    stop.ID,
						DriverID:  rep.DriverID,
						Kind:      models.ActivityLoadDelivered,
						Detail:    "arrived at final dropoff",
						CreatedAt: now,
					}
					if err := st.Activity.Insert(&ev); err != nil {
						return nil, err
					}
					events = append(events, ev)
				}
			}
		}
	} else if stop.ArrivedAt != nil && stop.DepartedAt == nil && gs.OutsideStreak >= e.StreakThreshold {
		gs.LastDepartAttempt = &now
		departAt := now
		if departAt.Before(*stop.ArrivedAt) {
			departAt = *stop.ArrivedAt
		}
		flipped, err := st.Stops.MarkDeparted(stop.ID, departAt)
		if err != nil {
			return nil, err
		}
		if flipped {
			ev := models.ActivityEvent{
				LoadID:    rep.LoadID,
				StopID:    stop.ID,
				DriverID:  rep.DriverID,
				Kind:      models.ActivityAutoDeparture,
				CreatedAt: now,
			}
			if err := st.Activity.Insert(&ev); err != nil {
				return nil, err
			}
			events = append(events, ev)
		}
	}

	if err := st.States.Upsert(gs); err != nil {
		return nil, err
	}
	return events, nil
}

// isFinalDropoff reports whether stop is the load's highest-sequence dropoff
func (e *GeofenceEngine) isFinalDropoff(st EngineStores, stop *models.Stop) (bool, error) {
	if stop.Type != models.StopDropoff {
		return false, nil
	}
	all, err := st.Stops.GetByLoad(stop.LoadID)
	if err != nil {
		return false, err
	}
	for _, other := range all {
		if other.Type == models.StopDropoff && other.Sequence > stop.Sequence {
			return false, nil
		}
	}
	return true, nil
}
