package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"hireloop/crawler-service/internal/model"
)

// ─── Crawler runs ────────────────────────────────────────────────────────────

// CreateRun records the start of a discovery invocation with status running.
func (s *Store) CreateRun(ctx context.Context, platform, query string) (string, error) {
	id := uuid.NewString()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO crawler_runs (id, platform, search_query, status, started_at)
		 VALUES ($1, $2, $3, $4, NOW())`,
		id, platform, query, model.RunRunning,
	)
	if err != nil {
		return "", fmt.Errorf("insert crawler run: %w", err)
	}
	return id, nil
}

// CompleteRun transitions a run from running to completed. The status guard
// makes the transition one-way: a completed or failed run is never revisited.
func (s *Store) CompleteRun(ctx context.Context, runID string, jobsFound, jobsAdded int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE crawler_runs
		 SET status = $1, jobs_found = $2, jobs_added = $3, completed_at = NOW()
		 WHERE id = $4 AND status = $5`,
		model.RunCompleted, jobsFound, jobsAdded, runID, model.RunRunning,
	)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s is not running", runID)
	}
	return nil
}

// FailRun transitions a run from running to failed, capturing the error.
func (s *Store) FailRun(ctx context.Context, runID, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE crawler_runs
		 SET status = $1, error_message = $2, completed_at = NOW()
		 WHERE id = $3 AND status = $4`,
		model.RunFailed, message, runID, model.RunRunning,
	)
	if err != nil {
		return fmt.Errorf("fail run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s is not running", runID)
	}
	return nil
}

// ─── Discovered-URL ledger ───────────────────────────────────────────────────

// FilterKnownURLs returns the subset of urls not yet present in the ledger,
// preserving input order. Already-known URLs are never re-processed.
func (s *Store) FilterKnownURLs(ctx context.Context, urls []string) ([]string, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT source_url FROM discovered_jobs WHERE source_url = ANY($1)`,
		urls,
	)
	if err != nil {
		return nil, fmt.Errorf("query discovered_jobs: %w", err)
	}
	defer rows.Close()

	known := make(map[string]bool)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		known[u] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	fresh := make([]string, 0, len(urls))
	for _, u := range urls {
		if !known[u] {
			fresh = append(fresh, u)
		}
	}
	return fresh, nil
}

// RecordDiscovered inserts a ledger row for sourceURL before any detail
// fetch. Returns false when the URL was already present (another run got
// there first).
func (s *Store) RecordDiscovered(ctx context.Context, sourceURL, platform string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO discovered_jobs (id, source_url, platform, status)
		 SELECT $1, $2, $3, $4
		 WHERE NOT EXISTS (
		   SELECT 1 FROM discovered_jobs WHERE source_url = $2
		 )`,
		uuid.NewString(), sourceURL, platform, model.DiscoveryDiscovered,
	)
	if err != nil {
		return false, fmt.Errorf("insert discovered job: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkProcessed finalises a ledger row after its job row was created.
func (s *Store) MarkProcessed(ctx context.Context, sourceURL, jobID, title, companyName string) error {
	return s.markLedger(ctx, sourceURL, model.DiscoveryProcessed, &jobID, &title, &companyName)
}

// MarkDuplicate records that sourceURL resolved to an already-existing job.
func (s *Store) MarkDuplicate(ctx context.Context, sourceURL, existingJobID string) error {
	return s.markLedger(ctx, sourceURL, model.DiscoveryDuplicate, &existingJobID, nil, nil)
}

// MarkFailed records an extraction failure. Failed URLs are not retried:
// the ledger entry keeps discovery from re-emitting them.
func (s *Store) MarkFailed(ctx context.Context, sourceURL string) error {
	return s.markLedger(ctx, sourceURL, model.DiscoveryFailed, nil, nil, nil)
}

func (s *Store) markLedger(ctx context.Context, sourceURL string, status model.DiscoveryStatus, jobID, title, companyName *string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE discovered_jobs
		 SET status = $1,
		     job_id = COALESCE($2, job_id),
		     title = COALESCE($3, title),
		     company_name = COALESCE($4, company_name),
		     processed_at = NOW()
		 WHERE source_url = $5`,
		status, jobID, title, companyName, sourceURL,
	)
	if err != nil {
		return fmt.Errorf("update discovered job %q: %w", sourceURL, err)
	}
	return nil
}

// ─── Crawler settings (scheduler throttle) ───────────────────────────────────

// GetCrawlerSettings reads the throttle row gating scheduled global crawls.
// Returns ErrNotFound when no settings row exists; the scheduler treats that
// as "always run".
func (s *Store) GetCrawlerSettings(ctx context.Context) (*model.CrawlerSettings, error) {
	var cs model.CrawlerSettings
	err := s.pool.QueryRow(ctx,
		`SELECT id, frequency_hours, last_run_at, is_active
		 FROM crawler_settings
		 ORDER BY created_at
		 LIMIT 1`,
	).Scan(&cs.ID, &cs.FrequencyHours, &cs.LastRunAt, &cs.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query crawler_settings: %w", err)
	}
	return &cs, nil
}

// TouchCrawlerSettings stamps last_run_at after a scheduled global crawl.
func (s *Store) TouchCrawlerSettings(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE crawler_settings SET last_run_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("touch crawler_settings: %w", err)
	}
	return nil
}
