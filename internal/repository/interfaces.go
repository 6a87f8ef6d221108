package repository

import (
	"context"

	"github.com/jwalitptl/eligibility-checker/internal/model"
)

// Tracker guards each appointment's submission lifecycle. MarkProcessing is
// the only mutual-exclusion point; everything else is bookkeeping.
type Tracker interface {
	ShouldProcess(ctx context.Context, appointmentID string) bool
	GetStatus(ctx context.Context, appointmentID string) (*model.TrackingRecord, error)
	MarkProcessing(ctx context.Context, appointmentID string) (bool, error)
	MarkCompleted(ctx context.Context, appointmentID, taskID string) error
	MarkError(ctx context.Context, appointmentID, message string) error
}

// TPAConfigRepository lists a clinic's payer configurations and flattens them
// into a normalized insurance-name to payer-code mapping.
type TPAConfigRepository interface {
	ListMappings(ctx context.Context, clinicID string) (map[string]string, error)
}
