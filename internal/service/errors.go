package service

import "errors"

// Validation reason codes returned to the submitting device
const (
	ReasonInvalidLatitude         = "invalid_latitude"
	ReasonInvalidLongitude        = "invalid_longitude"
	ReasonInvalidAccuracy         = "invalid_accuracy"
	ReasonNegativeAccuracy        = "negative_accuracy"
	ReasonAccuracyTooLow          = "accuracy_too_low"
	ReasonInvalidTimestamp        = "invalid_timestamp"
	ReasonTimestampFuture         = "timestamp_future"
	ReasonTimestampTooOld         = "timestamp_too_old"
	ReasonInvalidSource           = "invalid_source"
	ReasonDepartureBeforeArrival  = "departure_before_arrival"
	ReasonDepartureWithoutArrival = "departure_without_arrival"
)

// ValidationError rejects a report or update synchronously. Nothing is
// persisted and no downstream state is touched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// NewValidationError wraps a reason code
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

// AsValidationError unwraps err into a *ValidationError if it is one
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

var (
	// ErrUnauthorized rejects a request before any other processing
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRateLimited is expected backpressure, not a failure
	ErrRateLimited = errors.New("rate limited, retry later")
	// ErrNotFound covers missing loads and stops
	ErrNotFound = errors.New("not found")
	// ErrLinkExpired marks a public link past its post-delivery TTL
	ErrLinkExpired = errors.New("tracking link expired")
)
