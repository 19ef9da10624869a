package service

import (
	"math"
	"time"

	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
)

// Validator is the pure intake gate for location reports. It rejects
// structurally or temporally invalid input and has no side effects.
type Validator struct {
	MaxAccuracyM  float64
	MaxFutureSkew time.Duration
	MaxReportAge  time.Duration
}

// NewValidator creates a validator with the given ceilings
func NewValidator(maxAccuracyM float64, maxFutureSkew, maxReportAge time.Duration) *Validator {
	return &Validator{
		MaxAccuracyM:  maxAccuracyM,
		MaxFutureSkew: maxFutureSkew,
		MaxReportAge:  maxReportAge,
	}
}

// Validate checks a submission against the server-observed receipt time and
// returns the parsed report timestamp. Any violation discards the report
// entirely.
func (v *Validator) Validate(req *models.SubmitReportRequest, receivedAt time.Time) (time.Time, error) {
	lat, lng := *req.Latitude, *req.Longitude
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return time.Time{}, NewValidationError(ReasonInvalidLatitude)
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return time.Time{}, NewValidationError(ReasonInvalidLongitude)
	}

	if req.AccuracyM != nil {
		acc := *req.AccuracyM
		if math.IsNaN(acc) || math.IsInf(acc, 0) {
			return time.Time{}, NewValidationError(ReasonInvalidAccuracy)
		}
		if acc < 0 {
			return time.Time{}, NewValidationError(ReasonNegativeAccuracy)
		}
		if acc > v.MaxAccuracyM {
			return time.Time{}, NewValidationError(ReasonAccuracyTooLow)
		}
	}

	if req.Source != "" && !req.Source.Valid() {
		return time.Time{}, NewValidationError(ReasonInvalidSource)
	}

	recordedAt, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		return time.Time{}, NewValidationError(ReasonInvalidTimestamp)
	}
	if recordedAt.Sub(receivedAt) > v.MaxFutureSkew {
		return time.Time{}, NewValidationError(ReasonTimestampFuture)
	}
	if receivedAt.Sub(recordedAt) > v.MaxReportAge {
		return time.Time{}, NewValidationError(ReasonTimestampTooOld)
	}

	return recordedAt.UTC(), nil
}
