package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"altiora-api/internal/models"
	"altiora-api/internal/storage"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

const (
	applicantsTable = "applicants"
	essaysTable     = "application_essays"
)

var applicantColumns = []string{
	"id", "first_name", "last_name", "email", "phone", "year", "major",
	"instagram", "linkedin", "portfolio", "how_hear", "divisions",
	"created_at", "updated_at",
}

var essayColumns = []string{"applicant_id", "convince", "project", "reasons", "intent"}

// ApplicationRepo implements storage.ApplicationRepository against a *sql.DB or *sql.Tx.
type ApplicationRepo struct {
	q       querier
	dialect string
	inTx    bool
}

var _ storage.ApplicationRepository = (*ApplicationRepo)(nil)

func (r *ApplicationRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.dialect)
}

// FindByIdentity looks an applicant up by email, or by phone when one is given.
// When both match different rows the email match is returned.
func (r *ApplicationRepo) FindByIdentity(ctx context.Context, email, phone string) (*models.ApplicationRecord, error) {
	pred := entsql.EQ("email", email)
	if phone != "" {
		pred = entsql.Or(pred, entsql.EQ("phone", phone))
	}
	selector := r.builder().
		Select(applicantColumns...).
		From(entsql.Table(applicantsTable)).
		Where(pred).
		Limit(2)
	// SQLite has no row locks; its single connection already serializes writers.
	if r.inTx && r.dialect == dialect.Postgres {
		selector.ForUpdate()
	}

	applicants, err := r.queryApplicants(ctx, selector)
	if err != nil {
		log.Printf("Error looking up applicant by email %s / phone %s: %v", email, phone, err)
		return nil, err
	}
	if len(applicants) == 0 {
		return nil, storage.ErrNotFound
	}

	match := applicants[0]
	if len(applicants) > 1 {
		log.Printf("Identity lookup for email %s / phone %s matched %d applicants, preferring the email match", email, phone, len(applicants))
		for _, a := range applicants {
			if a.Email == email {
				match = a
				break
			}
		}
	}

	return r.withEssay(ctx, match)
}

// GetByID retrieves an applicant and its essays.
func (r *ApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ApplicationRecord, error) {
	selector := r.builder().
		Select(applicantColumns...).
		From(entsql.Table(applicantsTable)).
		Where(entsql.EQ("id", r.idArg(id)))

	applicants, err := r.queryApplicants(ctx, selector)
	if err != nil {
		log.Printf("Error getting applicant by ID %s: %v", id, err)
		return nil, err
	}
	if len(applicants) == 0 {
		return nil, storage.ErrNotFound
	}
	return r.withEssay(ctx, applicants[0])
}

// List returns applicants newest first, each with its essays.
func (r *ApplicationRepo) List(ctx context.Context, limit, offset int) ([]models.ApplicationRecord, error) {
	selector := r.builder().
		Select(applicantColumns...).
		From(entsql.Table(applicantsTable)).
		OrderExpr(entsql.Expr("created_at DESC, id DESC")).
		Limit(limit).
		Offset(offset)

	applicants, err := r.queryApplicants(ctx, selector)
	if err != nil {
		log.Printf("Error listing applicants (limit %d, offset %d): %v", limit, offset, err)
		return nil, err
	}
	if len(applicants) == 0 {
		return []models.ApplicationRecord{}, nil
	}

	ids := make([]any, len(applicants))
	for i, a := range applicants {
		ids[i] = r.idArg(a.ID)
	}
	essays, err := r.queryEssays(ctx, entsql.In("applicant_id", ids...))
	if err != nil {
		log.Printf("Error listing essays for %d applicants: %v", len(applicants), err)
		return nil, err
	}
	byApplicant := make(map[uuid.UUID]*models.Essay, len(essays))
	for _, e := range essays {
		byApplicant[e.ApplicantID] = e
	}

	records := make([]models.ApplicationRecord, len(applicants))
	for i, a := range applicants {
		records[i] = models.ApplicationRecord{Applicant: *a, Essay: byApplicant[a.ID]}
	}
	return records, nil
}

// Count returns the number of applicants.
func (r *ApplicationRepo) Count(ctx context.Context) (int, error) {
	query, args := r.builder().
		Select(entsql.Count("*")).
		From(entsql.Table(applicantsTable)).
		Query()

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("counting applicants: %w", err)
	}
	defer rows.Close()

	var total int
	if rows.Next() {
		if err := rows.Scan(&total); err != nil {
			return 0, fmt.Errorf("scanning applicant count: %w", err)
		}
	}
	return total, rows.Err()
}

// CreateApplicant inserts a new applicant row.
func (r *ApplicationRepo) CreateApplicant(ctx context.Context, a *models.Applicant) error {
	divisions, err := stringList(a.Divisions).Value()
	if err != nil {
		return fmt.Errorf("encoding divisions: %w", err)
	}

	query, args := r.builder().
		Insert(applicantsTable).
		Columns(applicantColumns...).
		Values(
			r.idArg(a.ID), a.FirstName, a.LastName, a.Email, nullable(a.Phone), a.Year, a.Major,
			a.Instagram, a.LinkedIn, a.Portfolio, a.HowHear, divisions,
			r.timeArg(a.CreatedAt), r.timeArg(a.UpdatedAt),
		).
		Query()

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			log.Printf("Attempted to create applicant with duplicate email %s or phone %s: %v", a.Email, a.Phone, err)
			return fmt.Errorf("%w: applicant %s", storage.ErrConflict, a.Email)
		}
		log.Printf("Error creating applicant %s: %v", a.Email, err)
		return fmt.Errorf("inserting applicant: %w", err)
	}
	return nil
}

// UpdateApplicant overwrites every mutable column of an existing applicant.
func (r *ApplicationRepo) UpdateApplicant(ctx context.Context, a *models.Applicant) error {
	divisions, err := stringList(a.Divisions).Value()
	if err != nil {
		return fmt.Errorf("encoding divisions: %w", err)
	}

	query, args := r.builder().
		Update(applicantsTable).
		Set("first_name", a.FirstName).
		Set("last_name", a.LastName).
		Set("email", a.Email).
		Set("phone", nullable(a.Phone)).
		Set("year", a.Year).
		Set("major", a.Major).
		Set("instagram", a.Instagram).
		Set("linkedin", a.LinkedIn).
		Set("portfolio", a.Portfolio).
		Set("how_hear", a.HowHear).
		Set("divisions", divisions).
		Set("updated_at", r.timeArg(a.UpdatedAt)).
		Where(entsql.EQ("id", r.idArg(a.ID))).
		Query()

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			log.Printf("Attempted to update applicant %s resulting in constraint violation: %v", a.ID, err)
			return fmt.Errorf("%w: applicant %s", storage.ErrConflict, a.ID)
		}
		log.Printf("Error updating applicant %s: %v", a.ID, err)
		return fmt.Errorf("updating applicant: %w", err)
	}
	return requireAffected(res, a.ID)
}

// CreateEssay inserts the essay row for an applicant.
func (r *ApplicationRepo) CreateEssay(ctx context.Context, e *models.Essay) error {
	query, args := r.builder().
		Insert(essaysTable).
		Columns(essayColumns...).
		Values(r.idArg(e.ApplicantID), e.Convince, e.Project, e.Reasons, e.Intent).
		Query()

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: essays for applicant %s", storage.ErrConflict, e.ApplicantID)
		}
		log.Printf("Error creating essays for applicant %s: %v", e.ApplicantID, err)
		return fmt.Errorf("inserting essays: %w", err)
	}
	return nil
}

// UpsertEssay updates the essay row, creating it for applicants that have none.
func (r *ApplicationRepo) UpsertEssay(ctx context.Context, e *models.Essay) error {
	query, args := r.builder().
		Update(essaysTable).
		Set("convince", e.Convince).
		Set("project", e.Project).
		Set("reasons", e.Reasons).
		Set("intent", e.Intent).
		Where(entsql.EQ("applicant_id", r.idArg(e.ApplicantID))).
		Query()

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		log.Printf("Error updating essays for applicant %s: %v", e.ApplicantID, err)
		return fmt.Errorf("updating essays: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected > 0 {
		return nil
	}

	log.Printf("Applicant %s has no essay record, creating one", e.ApplicantID)
	return r.CreateEssay(ctx, e)
}

func (r *ApplicationRepo) withEssay(ctx context.Context, a *models.Applicant) (*models.ApplicationRecord, error) {
	essays, err := r.queryEssays(ctx, entsql.EQ("applicant_id", r.idArg(a.ID)))
	if err != nil {
		log.Printf("Error getting essays for applicant %s: %v", a.ID, err)
		return nil, err
	}
	record := &models.ApplicationRecord{Applicant: *a}
	if len(essays) > 0 {
		record.Essay = essays[0]
	}
	return record, nil
}

func (r *ApplicationRepo) queryApplicants(ctx context.Context, selector *entsql.Selector) ([]*models.Applicant, error) {
	query, args := selector.Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying applicants: %w", err)
	}
	defer rows.Close()

	var out []*models.Applicant
	for rows.Next() {
		var (
			a                  models.Applicant
			phone              sql.NullString
			divisions          stringList
			createdAt, updated dbTime
		)
		if err := rows.Scan(
			&a.ID, &a.FirstName, &a.LastName, &a.Email, &phone, &a.Year, &a.Major,
			&a.Instagram, &a.LinkedIn, &a.Portfolio, &a.HowHear, &divisions,
			&createdAt, &updated,
		); err != nil {
			return nil, fmt.Errorf("scanning applicant: %w", err)
		}
		a.Phone = phone.String
		a.Divisions = []string(divisions)
		a.CreatedAt = createdAt.Time
		a.UpdatedAt = updated.Time
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *ApplicationRepo) queryEssays(ctx context.Context, pred *entsql.Predicate) ([]*models.Essay, error) {
	query, args := r.builder().
		Select(essayColumns...).
		From(entsql.Table(essaysTable)).
		Where(pred).
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying essays: %w", err)
	}
	defer rows.Close()

	var out []*models.Essay
	for rows.Next() {
		var e models.Essay
		if err := rows.Scan(&e.ApplicantID, &e.Convince, &e.Project, &e.Reasons, &e.Intent); err != nil {
			return nil, fmt.Errorf("scanning essays: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// idArg passes UUIDs natively to Postgres and as text to SQLite.
func (r *ApplicationRepo) idArg(id uuid.UUID) any {
	if r.dialect == dialect.Postgres {
		return id
	}
	return id.String()
}

func (r *ApplicationRepo) timeArg(t time.Time) any {
	if r.dialect == dialect.Postgres {
		return t.UTC()
	}
	return t.UTC().Format(sqliteTimeLayout)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireAffected(res sql.Result, id uuid.UUID) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		log.Printf("Attempted to update non-existent applicant %s", id)
		return storage.ErrNotFound
	}
	return nil
}
