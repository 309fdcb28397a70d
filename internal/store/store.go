// Package store implements persistence for the crawler: run bookkeeping,
// the discovered-URL ledger, and the company/job dedup gate.
//
// Dedup is check-then-insert (or INSERT ... WHERE NOT EXISTS) with no
// transactional guard. Two overlapping runs can race past the check; that is
// a known gap, tolerated rather than locked against.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hireloop/crawler-service/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store holds the shared connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ─── Companies ───────────────────────────────────────────────────────────────

// FindCompanyByName looks a company up by case-insensitive exact name match.
func (s *Store) FindCompanyByName(ctx context.Context, name string) (*model.Company, error) {
	var c model.Company
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, description, industry, website, logo_url, created_by
		 FROM companies
		 WHERE LOWER(name) = LOWER($1)
		 LIMIT 1`,
		strings.TrimSpace(name),
	).Scan(&c.ID, &c.Name, &c.Description, &c.Industry, &c.Website, &c.LogoURL, &c.CreatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query company: %w", err)
	}
	return &c, nil
}

// FindOrCreateCompany returns the existing company for name (matched
// case-insensitively) or creates one. createdBy is nil on the crawler path.
func (s *Store) FindOrCreateCompany(ctx context.Context, name string, createdBy *string) (*model.Company, error) {
	existing, err := s.FindCompanyByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	c := model.Company{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		CreatedBy: createdBy,
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO companies (id, name, created_by) VALUES ($1, $2, $3)`,
		c.ID, c.Name, c.CreatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert company: %w", err)
	}
	return &c, nil
}

// ─── Jobs ────────────────────────────────────────────────────────────────────

// FindJobBySourceURL returns the job previously created for sourceURL, or
// ErrNotFound.
func (s *Store) FindJobBySourceURL(ctx context.Context, sourceURL string) (*model.Job, error) {
	var j model.Job
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, company_id, location, job_type, salary_range,
		        description, requirements, source_url, status,
		        field_id, role_id, experience_level_id, created_by
		 FROM jobs
		 WHERE source_url = $1
		 LIMIT 1`,
		sourceURL,
	).Scan(
		&j.ID, &j.Title, &j.CompanyID, &j.Location, &j.JobType, &j.SalaryRange,
		&j.Description, &j.Requirements, &j.SourceURL, &j.Status,
		&j.FieldID, &j.RoleID, &j.ExperienceLevelID, &j.CreatedBy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query job by source_url: %w", err)
	}
	return &j, nil
}

// CreateJob inserts a new job row. The caller has already checked
// source_url uniqueness through FindJobBySourceURL.
func (s *Store) CreateJob(ctx context.Context, j *model.Job) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Status == "" {
		j.Status = "active"
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id, title, company_id, location, job_type, salary_range,
		                   description, requirements, source_url, status,
		                   field_id, role_id, experience_level_id, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		j.ID, j.Title, j.CompanyID, j.Location, j.JobType, j.SalaryRange,
		j.Description, j.Requirements, j.SourceURL, j.Status,
		j.FieldID, j.RoleID, j.ExperienceLevelID, j.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// ─── Taxonomy lookups ────────────────────────────────────────────────────────

// LookupFieldID resolves a job-field slug to its table ID, returning nil when
// the slug is empty or the table has no entry for it.
func (s *Store) LookupFieldID(ctx context.Context, slug string) (*string, error) {
	return s.lookupSlug(ctx, `SELECT id FROM job_fields WHERE slug = $1`, slug)
}

// LookupExperienceLevelID resolves an experience-level slug to its table ID,
// nil when absent.
func (s *Store) LookupExperienceLevelID(ctx context.Context, slug string) (*string, error) {
	return s.lookupSlug(ctx, `SELECT id FROM experience_levels WHERE slug = $1`, slug)
}

func (s *Store) lookupSlug(ctx context.Context, query, slug string) (*string, error) {
	if slug == "" {
		return nil, nil
	}
	var id string
	err := s.pool.QueryRow(ctx, query, slug).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("taxonomy lookup %q: %w", slug, err)
	}
	return &id, nil
}

// ─── Applications (manual-intake path) ───────────────────────────────────────

// CreateApplication links a job to the submitting user and writes the
// initial timeline event.
func (s *Store) CreateApplication(ctx context.Context, jobID, candidateID string) (*model.Application, error) {
	app := model.Application{
		ID:           uuid.NewString(),
		JobID:        jobID,
		CandidateID:  candidateID,
		Status:       "saved",
		CurrentStage: "saved",
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO applications (id, job_id, candidate_id, status, current_stage)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		app.ID, app.JobID, app.CandidateID, app.Status, app.CurrentStage,
	).Scan(&app.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO application_timeline (id, application_id, event_type, description)
		 VALUES ($1, $2, 'created', 'Application saved from job intake')`,
		uuid.NewString(), app.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert timeline event: %w", err)
	}

	return &app, nil
}
