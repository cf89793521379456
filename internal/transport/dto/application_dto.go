package dto

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// ApplyRequest is the payload of POST /api/apply.
type ApplyRequest struct {
	FirstName string    `json:"firstName" validate:"required,max=100"`
	LastName  string    `json:"lastName" validate:"required,max=100"`
	Email     string    `json:"email" validate:"required,email,max=254"`
	Phone     string    `json:"phone" validate:"omitempty,max=32"`
	Year      string    `json:"year" validate:"max=50"`
	Major     string    `json:"major" validate:"max=200"`
	Divisions Divisions `json:"divisions" validate:"max=20,dive,max=100"`
	Instagram string    `json:"instagram" validate:"max=500"`
	LinkedIn  string    `json:"linkedin" validate:"max=500"`
	Portfolio string    `json:"portfolio" validate:"max=500"`
	HowHear   string    `json:"howHear" validate:"max=1000"`
	Convince  string    `json:"convince" validate:"max=5000"`
	Project   string    `json:"project" validate:"max=5000"`
	Reasons   string    `json:"reasons" validate:"max=5000"`
	Intent    string    `json:"intent" validate:"max=5000"`
}

// Normalize trims and NFC-normalizes every text field, lower-cases the email
// and deduplicates divisions. It is idempotent.
func (r *ApplyRequest) Normalize() {
	for _, field := range []*string{
		&r.FirstName, &r.LastName, &r.Phone, &r.Year, &r.Major,
		&r.Instagram, &r.LinkedIn, &r.Portfolio, &r.HowHear,
		&r.Convince, &r.Project, &r.Reasons, &r.Intent,
	} {
		*field = cleanText(*field)
	}
	r.Email = strings.ToLower(cleanText(r.Email))

	seen := make(map[string]struct{}, len(r.Divisions))
	divisions := make(Divisions, 0, len(r.Divisions))
	for _, d := range r.Divisions {
		d = cleanText(d)
		if d == "" {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		divisions = append(divisions, d)
	}
	r.Divisions = divisions
}

func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Divisions accepts any JSON value and coerces it to a list of strings.
// Strings are kept, other scalars become their literal text, objects and arrays
// their compact JSON, null entries are dropped and a lone scalar becomes a one-element list.
type Divisions []string

func (d *Divisions) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = Divisions{}
		return nil
	}

	var items []json.RawMessage
	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
	} else {
		items = []json.RawMessage{data}
	}

	out := make(Divisions, 0, len(items))
	for _, item := range items {
		s, ok, err := coerceString(item)
		if err != nil {
			return err
		}
		if ok {
			out = append(out, s)
		}
	}
	*d = out
	return nil
}

func coerceString(raw json.RawMessage) (string, bool, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return "", false, nil
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false, err
		}
		return s, true, nil
	case raw[0] == '{' || raw[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", false, err
		}
		return buf.String(), true, nil
	default:
		return string(raw), true, nil
	}
}

// ListApplicationsRequest holds the paging parameters of the admin listing.
type ListApplicationsRequest struct {
	Limit  int `form:"limit,default=20" validate:"gte=1,lte=100"`
	Offset int `form:"offset,default=0" validate:"gte=0"`
}

// GetApplicationByIDRequest identifies one application.
type GetApplicationByIDRequest struct {
	ID uuid.UUID `json:"-" validate:"required"`
}

// EssayResponse is the essay part of an application.
type EssayResponse struct {
	Convince string `json:"convince"`
	Project  string `json:"project"`
	Reasons  string `json:"reasons"`
	Intent   string `json:"intent"`
}

// ApplicationResponse is an applicant with essays as returned by the admin API.
type ApplicationResponse struct {
	ID        uuid.UUID      `json:"id"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Year      string         `json:"year"`
	Major     string         `json:"major"`
	Divisions []string       `json:"divisions"`
	Instagram string         `json:"instagram"`
	LinkedIn  string         `json:"linkedin"`
	Portfolio string         `json:"portfolio"`
	HowHear   string         `json:"howHear"`
	Essay     *EssayResponse `json:"essay"`
	CreatedAt string         `json:"createdAt"`
	UpdatedAt string         `json:"updatedAt"`
}

// ListApplicationsResponse is one page of applications.
type ListApplicationsResponse struct {
	Items  []ApplicationResponse `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// FormatTimestamp renders stored timestamps consistently across responses.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
