package service

import (
	"testing"
	"time"

	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
)

func ts(h int) *time.Time {
	t := time.Date(2026, 8, 1, h, 0, 0, 0, time.UTC)
	return &t
}

func TestCheckManualUpdate(t *testing.T) {
	tests := []struct {
		name       string
		stop       models.Stop
		req        models.ManualStopUpdateRequest
		wantReason string
	}{
		{
			name: "arrival alone",
			req:  models.ManualStopUpdateRequest{ArrivedAt: ts(10)},
		},
		{
			name: "arrival and later departure together",
			req:  models.ManualStopUpdateRequest{ArrivedAt: ts(10), DepartedAt: ts(12)},
		},
		{
			name: "departure against existing arrival",
			stop: models.Stop{ArrivedAt: ts(9)},
			req:  models.ManualStopUpdateRequest{DepartedAt: ts(11)},
		},
		{
			name: "departure equal to arrival",
			req:  models.ManualStopUpdateRequest{ArrivedAt: ts(10), DepartedAt: ts(10)},
		},
		{
			name:       "empty update",
			req:        models.ManualStopUpdateRequest{},
			wantReason: "empty_update",
		},
		{
			name:       "departure with no arrival anywhere",
			req:        models.ManualStopUpdateRequest{DepartedAt: ts(11)},
			wantReason: ReasonDepartureWithoutArrival,
		},
		{
			name:       "departure before requested arrival",
			req:        models.ManualStopUpdateRequest{ArrivedAt: ts(12), DepartedAt: ts(10)},
			wantReason: ReasonDepartureBeforeArrival,
		},
		{
			name:       "departure before existing arrival",
			stop:       models.Stop{ArrivedAt: ts(12)},
			req:        models.ManualStopUpdateRequest{DepartedAt: ts(10)},
			wantReason: ReasonDepartureBeforeArrival,
		},
		{
			name: "new arrival relaxes an existing one",
			stop: models.Stop{ArrivedAt: ts(12)},
			req:  models.ManualStopUpdateRequest{ArrivedAt: ts(9), DepartedAt: ts(10)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkManualUpdate(&tt.stop, &tt.req)
			if tt.wantReason == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			ve, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ve.Reason != tt.wantReason {
				t.Errorf("reason = %s, want %s", ve.Reason, tt.wantReason)
			}
		})
	}
}
