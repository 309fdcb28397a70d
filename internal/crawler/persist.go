package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"hireloop/crawler-service/internal/model"
	"hireloop/crawler-service/internal/store"
)

// Persist runs the dedup gate for an extraction result: find-or-create the
// company by case-insensitive name, then create the job unless one already
// exists for sourceURL. Returns the job row and whether it was newly
// created. createdBy is nil on the crawler path.
//
// No transaction wraps the check-then-insert; overlapping runs can race past
// it. Known gap, kept deliberately.
func (c *Crawler) Persist(ctx context.Context, details *model.JobDetails, sourceURL string, createdBy *string) (*model.Job, bool, error) {
	company, err := c.store.FindOrCreateCompany(ctx, details.CompanyName, createdBy)
	if err != nil {
		return nil, false, err
	}

	if sourceURL != "" {
		existing, err := c.store.FindJobBySourceURL(ctx, sourceURL)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, false, err
		}
	}

	fieldID, err := c.store.LookupFieldID(ctx, details.Field)
	if err != nil {
		return nil, false, err
	}
	levelID, err := c.store.LookupExperienceLevelID(ctx, details.ExperienceLevel)
	if err != nil {
		return nil, false, err
	}

	job := &model.Job{
		Title:             details.JobTitle,
		CompanyID:         company.ID,
		Location:          optional(details.Location),
		JobType:           optional(details.JobType),
		SalaryRange:       optional(details.SalaryRange),
		Description:       optional(details.Description),
		Requirements:      optional(details.Requirements),
		SourceURL:         optional(sourceURL),
		FieldID:           fieldID,
		ExperienceLevelID: levelID,
		CreatedBy:         createdBy,
	}
	if err := c.store.CreateJob(ctx, job); err != nil {
		return nil, false, err
	}

	c.publishJobEvent(ctx, job, details.CompanyName)
	return job, true, nil
}

// publishJobEvent notifies downstream consumers of a newly stored job.
// Publish failures are logged and swallowed.
func (c *Crawler) publishJobEvent(ctx context.Context, job *model.Job, companyName string) {
	if c.rdb == nil {
		return
	}
	event, _ := json.Marshal(map[string]string{
		"type":    "EVENT_JOB_DISCOVERED",
		"jobId":   job.ID,
		"title":   job.Title,
		"company": companyName,
	})
	if err := c.rdb.Publish(ctx, "EVENT_JOB_DISCOVERED", event).Err(); err != nil {
		log.Printf("[crawler] publish EVENT_JOB_DISCOVERED failed: %v", err)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// errString is used when recording per-combination failures.
func errString(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%v", err)
}
