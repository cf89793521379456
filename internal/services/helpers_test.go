package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"altiora-api/internal/models"
	"altiora-api/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRetryAfterSeconds(t *testing.T) {
	last := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	window := 60 * time.Second

	tests := []struct {
		name     string
		now      time.Time
		window   time.Duration
		expected int
	}{
		{"Same instant", last, window, 60},
		{"Whole seconds", last.Add(45 * time.Second), window, 15},
		{"Rounds up", last.Add(10*time.Second + time.Millisecond), window, 50},
		{"Sub-second remainder", last.Add(59*time.Second + 999*time.Millisecond), window, 1},
		{"Exactly elapsed", last.Add(window), window, 0},
		{"Long past", last.Add(time.Hour), window, 0},
		{"Clock skew is capped", last.Add(-time.Hour), window, 60},
		{"Disabled window", last, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, retryAfterSeconds(last, tc.now, tc.window))
		})
	}
}

func TestChangedFields(t *testing.T) {
	stored := &snapshot{
		FirstName: "Ada",
		Email:     "ada@example.com",
		Convince:  "Engines",
		Divisions: []string{"Design", "Engineering"},
	}

	tests := []struct {
		name     string
		mutate   func(s *snapshot)
		expected []string
	}{
		{"Identical", func(s *snapshot) {}, nil},
		{"Division order", func(s *snapshot) { s.Divisions = []string{"Engineering", "Design"} }, nil},
		{"Division duplicates", func(s *snapshot) { s.Divisions = []string{"Engineering", "Design", "Design"} }, nil},
		{"Division removed", func(s *snapshot) { s.Divisions = []string{"Design"} }, []string{"divisions"}},
		{"Text and essay", func(s *snapshot) {
			s.FirstName = "Augusta"
			s.Convince = "Looms"
		}, []string{"firstName", "convince"}},
		{"Email changed", func(s *snapshot) { s.Email = "augusta@example.com" }, []string{"email"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			incoming := *stored
			incoming.Divisions = append([]string{}, stored.Divisions...)
			tc.mutate(&incoming)
			assert.Equal(t, tc.expected, changedFields(stored, &incoming))
		})
	}
}

func TestSnapshotFromRecord_MissingEssay(t *testing.T) {
	rec := &models.ApplicationRecord{Applicant: models.Applicant{ID: uuid.New(), FirstName: "Ada"}}
	s := snapshotFromRecord(rec)
	assert.Equal(t, "Ada", s.FirstName)
	assert.Empty(t, s.Convince)
	assert.Empty(t, s.Intent)
}

func TestMapRepoError(t *testing.T) {
	assert.True(t, errors.Is(mapRepoError(storage.ErrNotFound, "op"), ErrNotFound))
	assert.True(t, errors.Is(mapRepoError(fmt.Errorf("%w: dup", storage.ErrConflict), "op"), ErrConflict))

	internal := mapRepoError(errors.New("disk full"), "op")
	assert.False(t, errors.Is(internal, ErrConflict))
	assert.False(t, errors.Is(internal, ErrNotFound))
	assert.Contains(t, internal.Error(), "disk full")
}

func TestMapRecordToResponse(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := &models.ApplicationRecord{
		Applicant: models.Applicant{ID: uuid.New(), Email: "ada@example.com", CreatedAt: created},
	}

	resp := MapRecordToResponse(rec)
	assert.Equal(t, []string{}, resp.Divisions)
	assert.Nil(t, resp.Essay)
	assert.Equal(t, "2025-03-01T12:00:00Z", resp.CreatedAt)
	assert.Equal(t, resp.CreatedAt, resp.UpdatedAt)

	rec.Essay = &models.Essay{ApplicantID: rec.Applicant.ID, Project: "Engine"}
	resp = MapRecordToResponse(rec)
	if assert.NotNil(t, resp.Essay) {
		assert.Equal(t, "Engine", resp.Essay.Project)
	}
}
