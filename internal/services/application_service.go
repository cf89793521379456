package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"altiora-api/internal/models"
	"altiora-api/internal/notify"
	"altiora-api/internal/storage"
	"altiora-api/internal/transport/dto"

	"github.com/google/uuid"
)

const notifyTimeout = 10 * time.Second

type applicationService struct {
	store        storage.Store
	notifier     notify.Notifier
	updateWindow time.Duration
	now          func() time.Time
}

// Option customizes an application service.
type Option func(*applicationService)

// WithClock replaces the wall clock used for timestamps and the update window.
func WithClock(now func() time.Time) Option {
	return func(s *applicationService) {
		s.now = now
	}
}

// NewApplicationService creates a new instance of ApplicationService.
// updateWindow is the minimum time between two accepted changes to one application.
func NewApplicationService(store storage.Store, notifier notify.Notifier, updateWindow time.Duration, opts ...Option) ApplicationService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	s := &applicationService{
		store:        store,
		notifier:     notifier,
		updateWindow: updateWindow,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// clock returns the current time at the precision every supported store keeps.
func (s *applicationService) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *applicationService) Submit(ctx context.Context, req *dto.ApplyRequest) (*IntakeResult, error) {
	req.Normalize()
	if req.Email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}

	var (
		result *IntakeResult
		event  *notify.Event
	)
	err := s.store.WithinTx(ctx, func(repo storage.ApplicationRepository) error {
		existing, err := repo.FindByIdentity(ctx, req.Email, req.Phone)
		if errors.Is(err, storage.ErrNotFound) {
			result, event, err = s.create(ctx, repo, req)
			return err
		}
		if err != nil {
			return err
		}
		result, event, err = s.update(ctx, repo, existing, req)
		return err
	})
	if err != nil {
		log.Printf("ApplicationService: Error submitting application for %s: %v", req.Email, err)
		return nil, mapRepoError(err, "submitting application")
	}

	switch result.Outcome {
	case OutcomeRateLimited:
		log.Printf("ApplicationService: Applicant %s rate limited, retry in %ds", result.ApplicantID, result.RetryAfter)
	case OutcomeNoChanges:
		log.Printf("ApplicationService: Applicant %s resubmitted without changes", result.ApplicantID)
	default:
		log.Printf("ApplicationService: Applicant %s %s", result.ApplicantID, result.Outcome)
	}

	if event != nil {
		s.dispatch(*event)
	}
	return result, nil
}

func (s *applicationService) create(ctx context.Context, repo storage.ApplicationRepository, req *dto.ApplyRequest) (*IntakeResult, *notify.Event, error) {
	now := s.clock()

	applicant := applicantFromRequest(req)
	applicant.ID = uuid.New()
	applicant.CreatedAt = now
	applicant.UpdatedAt = now
	if err := repo.CreateApplicant(ctx, &applicant); err != nil {
		return nil, nil, err
	}

	essay := essayFromRequest(req, applicant.ID)
	if err := repo.CreateEssay(ctx, &essay); err != nil {
		return nil, nil, err
	}

	result := &IntakeResult{Outcome: OutcomeCreated, ApplicantID: applicant.ID}
	event := &notify.Event{
		Kind:   notify.KindCreated,
		Record: models.ApplicationRecord{Applicant: applicant, Essay: &essay},
	}
	return result, event, nil
}

func (s *applicationService) update(ctx context.Context, repo storage.ApplicationRepository, existing *models.ApplicationRecord, req *dto.ApplyRequest) (*IntakeResult, *notify.Event, error) {
	now := s.clock()
	id := existing.Applicant.ID

	// The window is checked before change detection.
	if wait := retryAfterSeconds(existing.Applicant.LastModified(), now, s.updateWindow); wait > 0 {
		return &IntakeResult{Outcome: OutcomeRateLimited, ApplicantID: id, RetryAfter: wait}, nil, nil
	}

	changed := changedFields(snapshotFromRecord(existing), snapshotFromRequest(req))
	if len(changed) == 0 {
		return &IntakeResult{Outcome: OutcomeNoChanges, ApplicantID: id}, nil, nil
	}

	applicant := applicantFromRequest(req)
	applicant.ID = id
	applicant.CreatedAt = existing.Applicant.CreatedAt
	applicant.UpdatedAt = now
	if applicant.UpdatedAt.Before(applicant.CreatedAt) {
		applicant.UpdatedAt = applicant.CreatedAt
	}
	if err := repo.UpdateApplicant(ctx, &applicant); err != nil {
		return nil, nil, err
	}

	essay := essayFromRequest(req, id)
	if err := repo.UpsertEssay(ctx, &essay); err != nil {
		return nil, nil, err
	}

	result := &IntakeResult{Outcome: OutcomeUpdated, ApplicantID: id, ChangedFields: changed}
	event := &notify.Event{
		Kind:          notify.KindUpdated,
		Record:        models.ApplicationRecord{Applicant: applicant, Essay: &essay},
		ChangedFields: changed,
	}
	return result, event, nil
}

// dispatch delivers the event in the background. Failures are logged and never reach the submitter.
func (s *applicationService) dispatch(event notify.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, event); err != nil {
			log.Printf("ApplicationService: Error notifying about applicant %s: %v", event.Record.Applicant.ID, err)
		}
	}()
}

func (s *applicationService) GetApplication(ctx context.Context, id uuid.UUID) (*models.ApplicationRecord, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		log.Printf("ApplicationService: Error getting application %s: %v", id, err)
		return nil, mapRepoError(err, "getting application by ID")
	}
	return rec, nil
}

func (s *applicationService) ListApplications(ctx context.Context, req *dto.ListApplicationsRequest) ([]models.ApplicationRecord, int, error) {
	records, err := s.store.List(ctx, req.Limit, req.Offset)
	if err != nil {
		log.Printf("ApplicationService: Error listing applications: %v", err)
		return nil, 0, fmt.Errorf("internal error listing applications: %w", err)
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		log.Printf("ApplicationService: Error counting applications: %v", err)
		return nil, 0, fmt.Errorf("internal error counting applications: %w", err)
	}
	return records, total, nil
}
