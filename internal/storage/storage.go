package storage

import (
	"context"

	"altiora-api/internal/models"

	"github.com/google/uuid"
)

// ApplicationRepository defines the data operations on applicants and their essays.
type ApplicationRepository interface {
	// FindByIdentity returns the applicant whose email matches, or whose phone matches when phone is non-empty.
	// Inside a transaction on Postgres the matched row is locked until commit.
	FindByIdentity(ctx context.Context, email, phone string) (*models.ApplicationRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ApplicationRecord, error)
	List(ctx context.Context, limit, offset int) ([]models.ApplicationRecord, error)
	Count(ctx context.Context) (int, error)

	CreateApplicant(ctx context.Context, applicant *models.Applicant) error
	UpdateApplicant(ctx context.Context, applicant *models.Applicant) error
	CreateEssay(ctx context.Context, essay *models.Essay) error
	// UpsertEssay updates the essay row for essay.ApplicantID, inserting it when missing.
	UpsertEssay(ctx context.Context, essay *models.Essay) error
}

// Store is an ApplicationRepository that can run a unit of work atomically.
type Store interface {
	ApplicationRepository

	// WithinTx runs fn against a transaction-bound repository.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(repo ApplicationRepository) error) error
	Ping(ctx context.Context) error
}
