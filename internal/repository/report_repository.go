package repository

import (
	"database/sql"
	"fmt"

	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
)

// ReportRepository handles database operations for location reports
type ReportRepository struct {
	db Querier
}

// NewReportRepository creates a new report repository
func NewReportRepository(db Querier) *ReportRepository {
	return &ReportRepository{db: db}
}

// Insert persists a report and returns its id. Reports are append-only.
func (r *ReportRepository) Insert(rep *models.LocationReport) (int64, error) {
	query := `INSERT INTO location_reports
		(load_id, driver_id, lat, lng, accuracy_m, speed_mph, heading, source, recorded_at, received_at, plausible)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	plausible := 0
	if rep.Plausible {
		plausible = 1
	}
	res, err := r.db.Exec(query,
		rep.LoadID, rep.DriverID, rep.Latitude, rep.Longitude,
		rep.AccuracyM, rep.SpeedMPH, rep.Heading, string(rep.Source),
		rep.RecordedAt.Unix(), rep.ReceivedAt.Unix(), plausible,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert location report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read report id: %w", err)
	}
	return id, nil
}

// GetLastAccepted returns the driver's most recent plausible report for a
// load, or nil if none exists. Soft-rejected reports never become the speed
// baseline, so they are excluded here.
func (r *ReportRepository) GetLastAccepted(loadID, driverID string) (*models.LocationReport, error) {
	query := `SELECT id, load_id, driver_id, lat, lng, accuracy_m, speed_mph, heading, source, recorded_at, received_at, plausible
		FROM location_reports
		WHERE load_id = ? AND driver_id = ? AND plausible = 1
		ORDER BY recorded_at DESC, id DESC LIMIT 1`
	return r.scanOne(r.db.QueryRow(query, loadID, driverID))
}

// GetLatestForLoad returns the most recent plausible report for a load
// regardless of driver, used for the public ping summary
func (r *ReportRepository) GetLatestForLoad(loadID string) (*models.LocationReport, error) {
	query := `SELECT id, load_id, driver_id, lat, lng, accuracy_m, speed_mph, heading, source, recorded_at, received_at, plausible
		FROM location_reports
		WHERE load_id = ? AND plausible = 1
		ORDER BY recorded_at DESC, id DESC LIMIT 1`
	return r.scanOne(r.db.QueryRow(query, loadID))
}

// CountForLoad returns how many reports exist for a load
func (r *ReportRepository) CountForLoad(loadID string) (int64, error) {
	var n int64
	err := r.db.QueryRow("SELECT COUNT(*) FROM location_reports WHERE load_id = ?", loadID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return n, nil
}

func (r *ReportRepository) scanOne(row *sql.Row) (*models.LocationReport, error) {
	var rep models.LocationReport
	var accuracy, speed, heading sql.NullFloat64
	var source string
	var recordedAt, receivedAt int64
	var plausible int

	err := row.Scan(
		&rep.ID, &rep.LoadID, &rep.DriverID, &rep.Latitude, &rep.Longitude,
		&accuracy, &speed, &heading, &source, &recordedAt, &receivedAt, &plausible,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan location report: %w", err)
	}

	if accuracy.Valid {
		rep.AccuracyM = &accuracy.Float64
	}
	if speed.Valid {
		rep.SpeedMPH = &speed.Float64
	}
	if heading.Valid {
		rep.Heading = &heading.Float64
	}
	rep.Source = models.ReportSource(source)
	rep.RecordedAt = unixTime(recordedAt)
	rep.ReceivedAt = unixTime(receivedAt)
	rep.Plausible = plausible == 1
	return &rep, nil
}
