package service

import (
	"testing"
	"time"

	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
)

func TestPlausible_NoBaseline(t *testing.T) {
	f := NewPlausibilityFilter(120)
	if !f.Plausible(nil, 41.0, -87.0, time.Now()) {
		t.Fatal("first report must always be plausible")
	}
}

func TestPlausible_NormalMovement(t *testing.T) {
	f := NewPlausibilityFilter(120)
	prev := &models.LocationReport{
		Latitude:   41.0,
		Longitude:  -87.0,
		RecordedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	// ~1.1km north after one minute, about 41 mph
	if !f.Plausible(prev, 41.01, -87.0, prev.RecordedAt.Add(time.Minute)) {
		t.Fatal("highway-speed movement must be plausible")
	}
}

func TestPlausible_ImpossibleJump(t *testing.T) {
	f := NewPlausibilityFilter(120)
	prev := &models.LocationReport{
		Latitude:   41.0,
		Longitude:  -87.0,
		RecordedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	// a full degree of latitude (~69 miles) in one minute
	if f.Plausible(prev, 42.0, -87.0, prev.RecordedAt.Add(time.Minute)) {
		t.Fatal("teleportation must be implausible")
	}
}

func TestPlausible_ZeroElapsedSamePlace(t *testing.T) {
	f := NewPlausibilityFilter(120)
	prev := &models.LocationReport{
		Latitude:   41.0,
		Longitude:  -87.0,
		RecordedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	if !f.Plausible(prev, 41.0, -87.0, prev.RecordedAt) {
		t.Fatal("a duplicate point with no elapsed time is not movement")
	}
}

func TestPlausible_OutOfOrderMovement(t *testing.T) {
	f := NewPlausibilityFilter(120)
	prev := &models.LocationReport{
		Latitude:   41.0,
		Longitude:  -87.0,
		RecordedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	// movement recorded before the baseline implies infinite speed
	if f.Plausible(prev, 41.5, -87.0, prev.RecordedAt.Add(-time.Minute)) {
		t.Fatal("backwards-in-time movement must be implausible")
	}
}
