// internal/models/application.go
package models

import (
	"context"
	"time"
)

// Application is a submitted application as recorded in the ledger.
type Application struct {
	RunID      string    `json:"runId" db:"run_id"`
	ListingID  ListingID `json:"listingId" db:"listing_id"`
	InstanceID string    `json:"instanceId" db:"instance_id"`
	Email      string    `json:"email" db:"email"`
	ResumeID   string    `json:"resumeId" db:"resume_id"`
	AppliedAt  time.Time `json:"appliedAt" db:"applied_at"`
}

// ApplicationRecorder persists successful applications. Implementations must be
// safe for concurrent use.
type ApplicationRecorder interface {
	Record(ctx context.Context, app *Application) error
}
