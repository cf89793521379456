package services

import (
	"context"

	"altiora-api/internal/models"
	"altiora-api/internal/transport/dto"

	"github.com/google/uuid"
)

// ApplicationService defines the interface for application intake and review.
type ApplicationService interface {
	// Submit creates or updates the application identified by the request's email or phone.
	// Rate-limited and unchanged submissions are reported through IntakeResult, not as errors.
	Submit(ctx context.Context, req *dto.ApplyRequest) (*IntakeResult, error)
	GetApplication(ctx context.Context, id uuid.UUID) (*models.ApplicationRecord, error)
	ListApplications(ctx context.Context, req *dto.ListApplicationsRequest) ([]models.ApplicationRecord, int, error)
}

// IntakeOutcome is the decision taken for one submission.
type IntakeOutcome string

const (
	OutcomeCreated     IntakeOutcome = "created"
	OutcomeUpdated     IntakeOutcome = "updated"
	OutcomeNoChanges   IntakeOutcome = "no_changes"
	OutcomeRateLimited IntakeOutcome = "rate_limited"
)

// IntakeResult reports what Submit did.
type IntakeResult struct {
	Outcome     IntakeOutcome
	ApplicantID uuid.UUID
	// RetryAfter is the whole number of seconds to wait, set for OutcomeRateLimited.
	RetryAfter int
	// ChangedFields lists the fields that differed, set for OutcomeUpdated.
	ChangedFields []string
}
