package services

import (
	"altiora-api/internal/models"
	"altiora-api/internal/transport/dto"

	mapset "github.com/deckarep/golang-set/v2"
)

// snapshot is the comparable view of an applicant and its essays.
type snapshot struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Year      string
	Major     string
	Instagram string
	LinkedIn  string
	Portfolio string
	HowHear   string
	Convince  string
	Project   string
	Reasons   string
	Intent    string
	Divisions []string
}

// textFields is the full list of string fields that take part in change detection.
// A field added to snapshot must be added here too.
var textFields = []struct {
	name string
	get  func(*snapshot) string
}{
	{"firstName", func(s *snapshot) string { return s.FirstName }},
	{"lastName", func(s *snapshot) string { return s.LastName }},
	{"email", func(s *snapshot) string { return s.Email }},
	{"phone", func(s *snapshot) string { return s.Phone }},
	{"year", func(s *snapshot) string { return s.Year }},
	{"major", func(s *snapshot) string { return s.Major }},
	{"instagram", func(s *snapshot) string { return s.Instagram }},
	{"linkedin", func(s *snapshot) string { return s.LinkedIn }},
	{"portfolio", func(s *snapshot) string { return s.Portfolio }},
	{"howHear", func(s *snapshot) string { return s.HowHear }},
	{"convince", func(s *snapshot) string { return s.Convince }},
	{"project", func(s *snapshot) string { return s.Project }},
	{"reasons", func(s *snapshot) string { return s.Reasons }},
	{"intent", func(s *snapshot) string { return s.Intent }},
}

func snapshotFromRecord(rec *models.ApplicationRecord) *snapshot {
	a := rec.Applicant
	s := &snapshot{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Phone:     a.Phone,
		Year:      a.Year,
		Major:     a.Major,
		Instagram: a.Instagram,
		LinkedIn:  a.LinkedIn,
		Portfolio: a.Portfolio,
		HowHear:   a.HowHear,
		Divisions: a.Divisions,
	}
	// A missing essay record compares as empty essays.
	if rec.Essay != nil {
		s.Convince = rec.Essay.Convince
		s.Project = rec.Essay.Project
		s.Reasons = rec.Essay.Reasons
		s.Intent = rec.Essay.Intent
	}
	return s
}

func snapshotFromRequest(req *dto.ApplyRequest) *snapshot {
	return &snapshot{
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
		Convince:  req.Convince,
		Project:   req.Project,
		Reasons:   req.Reasons,
		Intent:    req.Intent,
		Divisions: req.Divisions,
	}
}

// changedFields returns the names of the fields that differ, in textFields order with divisions last.
func changedFields(stored, incoming *snapshot) []string {
	var changed []string
	for _, f := range textFields {
		if f.get(stored) != f.get(incoming) {
			changed = append(changed, f.name)
		}
	}
	if !sameDivisionSet(stored.Divisions, incoming.Divisions) {
		changed = append(changed, "divisions")
	}
	return changed
}

// sameDivisionSet compares divisions as sets: order and duplicates do not matter.
func sameDivisionSet(a, b []string) bool {
	return mapset.NewThreadUnsafeSet(a...).Equal(mapset.NewThreadUnsafeSet(b...))
}
