package crawler

import (
	"context"
	"fmt"
	"log"

	"hireloop/crawler-service/internal/model"
	"hireloop/crawler-service/internal/platform"
)

// RunContext carries the identity of one discovery invocation through every
// stage of the pipeline — explicit state instead of ambient globals.
type RunContext struct {
	Platform platform.Platform
	Query    string
	Location string
	RunID    string // empty until CrawlPlatform creates the run row
}

// CrawlPlatform runs one discovery invocation end to end: create the run
// row, discover URLs, filter out already-known ones, then sequentially
// extract and persist up to maxProcessed new postings. The run finishes
// completed (zero results included) unless discovery itself errors, in which
// case it finishes failed with the error captured.
func (c *Crawler) CrawlPlatform(ctx context.Context, rc RunContext) (model.RunResult, error) {
	result := model.RunResult{
		Platform: string(rc.Platform),
		Query:    rc.Query,
		Location: rc.Location,
	}

	if rc.RunID == "" {
		id, err := c.store.CreateRun(ctx, string(rc.Platform), rc.Query)
		if err != nil {
			result.Error = errString(err)
			return result, err
		}
		rc.RunID = id
	}
	result.RunID = rc.RunID

	log.Printf("[crawler] run %s started: platform=%s query=%q location=%q",
		rc.RunID, rc.Platform, rc.Query, rc.Location)

	jobURLs, err := c.Discover(ctx, rc.Platform, rc.Query, rc.Location)
	if err != nil {
		wrapped := fmt.Errorf("discovery: %w", err)
		if ferr := c.store.FailRun(ctx, rc.RunID, wrapped.Error()); ferr != nil {
			log.Printf("[crawler] run %s: fail-run bookkeeping error: %v", rc.RunID, ferr)
		}
		result.Error = errString(wrapped)
		return result, wrapped
	}

	result.JobsFound = len(jobURLs)

	fresh, err := c.store.FilterKnownURLs(ctx, jobURLs)
	if err != nil {
		if ferr := c.store.FailRun(ctx, rc.RunID, err.Error()); ferr != nil {
			log.Printf("[crawler] run %s: fail-run bookkeeping error: %v", rc.RunID, ferr)
		}
		result.Error = errString(err)
		return result, err
	}

	if len(fresh) > maxProcessed {
		fresh = fresh[:maxProcessed]
	}

	added := 0
	for _, jobURL := range fresh {
		created, err := c.processURL(ctx, rc, jobURL)
		if err != nil {
			// Per-URL failures are recorded on the ledger and do not abort
			// the batch.
			log.Printf("[crawler] run %s: %s failed: %v — continuing", rc.RunID, jobURL, err)
			continue
		}
		if created {
			added++
		}
	}
	result.JobsAdded = added

	if err := c.store.CompleteRun(ctx, rc.RunID, result.JobsFound, added); err != nil {
		log.Printf("[crawler] run %s: complete-run bookkeeping error: %v", rc.RunID, err)
	}

	log.Printf("[crawler] run %s done — found=%d added=%d", rc.RunID, result.JobsFound, added)
	return result, nil
}

// processURL handles one discovered URL: ledger insert, extraction,
// classification, dedup-gated persistence. Returns whether a new job row was
// created.
func (c *Crawler) processURL(ctx context.Context, rc RunContext, jobURL string) (bool, error) {
	inserted, err := c.store.RecordDiscovered(ctx, jobURL, string(rc.Platform))
	if err != nil {
		return false, err
	}
	if !inserted {
		// Another run claimed this URL between the filter and here.
		return false, nil
	}

	details, err := c.ExtractFromURL(ctx, jobURL)
	if err != nil {
		c.markFailedQuietly(ctx, jobURL)
		return false, err
	}

	if details.RequiresCompletion {
		// No human to fill the gaps on the batch path; the posting stays on
		// the ledger as failed so it is not rediscovered.
		c.markFailedQuietly(ctx, jobURL)
		return false, fmt.Errorf("extraction incomplete, missing %v", details.MissingFields)
	}

	job, created, err := c.Persist(ctx, details, jobURL, nil)
	if err != nil {
		c.markFailedQuietly(ctx, jobURL)
		return false, err
	}

	if !created {
		if err := c.store.MarkDuplicate(ctx, jobURL, job.ID); err != nil {
			log.Printf("[crawler] mark duplicate %s: %v", jobURL, err)
		}
		return false, nil
	}

	if err := c.store.MarkProcessed(ctx, jobURL, job.ID, details.JobTitle, details.CompanyName); err != nil {
		log.Printf("[crawler] mark processed %s: %v", jobURL, err)
	}
	return true, nil
}

func (c *Crawler) markFailedQuietly(ctx context.Context, jobURL string) {
	if err := c.store.MarkFailed(ctx, jobURL); err != nil {
		log.Printf("[crawler] mark failed %s: %v", jobURL, err)
	}
}
