package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"altiora-api/internal/models"
	"altiora-api/internal/storage"
	"altiora-api/internal/transport/dto"

	"github.com/google/uuid"
)

// mapRepoError maps storage errors to service errors
func mapRepoError(err error, operation string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, operation)
	}
	if errors.Is(err, storage.ErrConflict) {
		return fmt.Errorf("%w: %s (%v)", ErrConflict, operation, err)
	}
	// Log other unexpected errors
	log.Printf("Unexpected repository error during %s: %v", operation, err)
	return fmt.Errorf("internal error during %s: %w", operation, err)
}

// retryAfterSeconds returns how many whole seconds remain before last+window, or 0 once the window has elapsed.
// A pending wait is never reported as less than one second.
func retryAfterSeconds(last, now time.Time, window time.Duration) int {
	elapsed := now.Sub(last)
	if window <= 0 || elapsed >= window {
		return 0
	}
	remaining := window - elapsed
	if remaining > window {
		// last lies in the future (clock skew); never ask for more than a full window.
		remaining = window
	}
	secs := int(math.Ceil(remaining.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

func applicantFromRequest(req *dto.ApplyRequest) models.Applicant {
	return models.Applicant{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Year:      req.Year,
		Major:     req.Major,
		Instagram: req.Instagram,
		LinkedIn:  req.LinkedIn,
		Portfolio: req.Portfolio,
		HowHear:   req.HowHear,
		Divisions: append([]string{}, req.Divisions...),
	}
}

func essayFromRequest(req *dto.ApplyRequest, applicantID uuid.UUID) models.Essay {
	return models.Essay{
		ApplicantID: applicantID,
		Convince:    req.Convince,
		Project:     req.Project,
		Reasons:     req.Reasons,
		Intent:      req.Intent,
	}
}

// MapRecordToResponse converts a stored application into its admin API shape.
func MapRecordToResponse(rec *models.ApplicationRecord) dto.ApplicationResponse {
	a := rec.Applicant
	divisions := a.Divisions
	if divisions == nil {
		divisions = []string{}
	}
	resp := dto.ApplicationResponse{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Phone:     a.Phone,
		Year:      a.Year,
		Major:     a.Major,
		Divisions: divisions,
		Instagram: a.Instagram,
		LinkedIn:  a.LinkedIn,
		Portfolio: a.Portfolio,
		HowHear:   a.HowHear,
		CreatedAt: dto.FormatTimestamp(a.CreatedAt),
		UpdatedAt: dto.FormatTimestamp(a.LastModified()),
	}
	if rec.Essay != nil {
		resp.Essay = &dto.EssayResponse{
			Convince: rec.Essay.Convince,
			Project:  rec.Essay.Project,
			Reasons:  rec.Essay.Reasons,
			Intent:   rec.Essay.Intent,
		}
	}
	return resp
}
