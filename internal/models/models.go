package models

import (
	"time"

	"github.com/google/uuid"
)

// Applicant represents a person who submitted the application form.
type Applicant struct {
	ID uuid.UUID `json:"id" db:"id"`

	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`

	// Email and Phone are the two identity keys. Phone is optional and stored as NULL when empty.
	Email string `json:"email" db:"email"`
	Phone string `json:"phone" db:"phone"`

	Year      string `json:"year" db:"year"`
	Major     string `json:"major" db:"major"`
	Instagram string `json:"instagram" db:"instagram"`
	LinkedIn  string `json:"linkedin" db:"linkedin"`
	Portfolio string `json:"portfolio" db:"portfolio"`
	HowHear   string `json:"howHear" db:"how_hear"`

	Divisions []string `json:"divisions" db:"divisions"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// LastModified is the reference point for the update window.
func (a *Applicant) LastModified() time.Time {
	if a.UpdatedAt.IsZero() {
		return a.CreatedAt
	}
	return a.UpdatedAt
}

// Essay holds the free-text answers paired one-to-one with an Applicant.
type Essay struct {
	ApplicantID uuid.UUID `json:"applicantId" db:"applicant_id"`
	Convince    string    `json:"convince" db:"convince"`
	Project     string    `json:"project" db:"project"`
	Reasons     string    `json:"reasons" db:"reasons"`
	Intent      string    `json:"intent" db:"intent"`
}

// ApplicationRecord is an Applicant together with its essays.
// Essay is nil for legacy rows that were written without one.
type ApplicationRecord struct {
	Applicant Applicant `json:"applicant"`
	Essay     *Essay    `json:"essay"`
}
