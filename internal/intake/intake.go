// Package intake implements the interactive single-item path: a user submits
// a job by hand, by URL, or as pasted text. URL and paste submissions run
// through the same extraction pipeline as the bulk crawler.
package intake

import (
	"context"
	"fmt"
	"strings"

	"hireloop/crawler-service/internal/crawler"
	"hireloop/crawler-service/internal/llm"
	"hireloop/crawler-service/internal/model"
	"hireloop/crawler-service/internal/scrape"
	"hireloop/crawler-service/internal/store"
)

// PasteURL is the sentinel URL value marking a pasted-text submission.
const PasteURL = "paste://manual-entry"

// Field length ceilings applied to every intake mode, including fully
// manual entry.
const (
	maxTitleLen        = 200
	maxCompanyLen      = 200
	maxLocationLen     = 200
	maxJobTypeLen      = 50
	maxSalaryLen       = 100
	maxDescriptionLen  = 10000
	maxRequirementsLen = 5000
)

// ValidationError is a caller mistake surfaced as a 400 at the transport
// boundary.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Request is the decoded intake submission.
type Request struct {
	Manual        bool   `json:"manual"`
	URL           string `json:"url"`
	PastedContent string `json:"pastedContent"`
	Save          bool   `json:"save"`

	CompanyName  string `json:"company_name"`
	JobTitle     string `json:"job_title"`
	Location     string `json:"location"`
	JobType      string `json:"job_type"`
	SalaryRange  string `json:"salary_range"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
}

// Result is what the caller gets back: extracted (or echoed) details, plus
// the persisted rows when save was requested and allowed.
type Result struct {
	Details     *model.JobDetails  `json:"details"`
	Job         *model.Job         `json:"job,omitempty"`
	Application *model.Application `json:"application,omitempty"`
	Saved       bool               `json:"saved"`
}

// Service handles intake submissions on behalf of an authenticated user.
type Service struct {
	crawler *crawler.Crawler
	store   *store.Store
}

// New constructs a Service.
func New(c *crawler.Crawler, st *store.Store) *Service {
	return &Service{crawler: c, store: st}
}

// Submit dispatches a request to its intake mode. userID is the resolved
// caller identity and becomes created_by / candidate_id on every mutation.
func (s *Service) Submit(ctx context.Context, userID string, req Request) (*Result, error) {
	if userID == "" {
		return nil, fmt.Errorf("intake requires an authenticated user")
	}

	switch {
	case req.Manual:
		return s.submitManual(ctx, userID, req)
	case req.URL == PasteURL:
		return s.submitPasted(ctx, userID, req)
	case req.URL != "":
		return s.submitURL(ctx, userID, req)
	}
	return nil, &ValidationError{Msg: "request must set manual, url, or pasted content"}
}

// submitManual takes user-typed fields directly, bypassing extraction and
// taxonomy detection. Length ceilings still apply.
func (s *Service) submitManual(ctx context.Context, userID string, req Request) (*Result, error) {
	if err := validateFields(&req); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(req.CompanyName)) < 2 {
		return nil, &ValidationError{Msg: "company_name is required"}
	}
	if len(strings.TrimSpace(req.JobTitle)) < 2 {
		return nil, &ValidationError{Msg: "job_title is required"}
	}

	details := &model.JobDetails{
		CompanyName:  strings.TrimSpace(req.CompanyName),
		JobTitle:     strings.TrimSpace(req.JobTitle),
		Location:     req.Location,
		JobType:      req.JobType,
		SalaryRange:  req.SalaryRange,
		Description:  req.Description,
		Requirements: req.Requirements,
	}

	return s.finish(ctx, userID, details, "", req.Save)
}

// submitURL validates the URL, extracts, and persists when save was
// requested and extraction produced both required fields.
func (s *Service) submitURL(ctx context.Context, userID string, req Request) (*Result, error) {
	if err := scrape.ValidateURL(req.URL); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	details, err := s.crawler.ExtractFromURL(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	return s.finish(ctx, userID, details, req.URL, req.Save)
}

// submitPasted extracts from pasted text, skipping the network fetch.
func (s *Service) submitPasted(ctx context.Context, userID string, req Request) (*Result, error) {
	if strings.TrimSpace(req.PastedContent) == "" {
		return nil, &ValidationError{Msg: "pastedContent is required for paste submissions"}
	}

	details, err := s.crawler.ExtractFromText(ctx, req.PastedContent)
	if err != nil {
		return nil, err
	}

	return s.finish(ctx, userID, details, "", req.Save)
}

// finish applies the completion gate and, when allowed, runs the persistence
// path: job row through the dedup gate plus an application and its initial
// timeline event for the submitting user.
func (s *Service) finish(ctx context.Context, userID string, details *model.JobDetails, sourceURL string, save bool) (*Result, error) {
	llm.FlagMissingFields(details)
	result := &Result{Details: details}

	if !save {
		return result, nil
	}
	if details.RequiresCompletion {
		// Never auto-persist with required fields missing; the caller
		// prompts the user and resubmits.
		return result, nil
	}

	job, _, err := s.crawler.Persist(ctx, details, sourceURL, &userID)
	if err != nil {
		return nil, err
	}

	app, err := s.store.CreateApplication(ctx, job.ID, userID)
	if err != nil {
		return nil, err
	}

	result.Job = job
	result.Application = app
	result.Saved = true
	return result, nil
}

// validateFields enforces the per-field length ceilings shared by every
// intake mode.
func validateFields(req *Request) error {
	checks := []struct {
		name  string
		value string
		max   int
	}{
		{"job_title", req.JobTitle, maxTitleLen},
		{"company_name", req.CompanyName, maxCompanyLen},
		{"location", req.Location, maxLocationLen},
		{"job_type", req.JobType, maxJobTypeLen},
		{"salary_range", req.SalaryRange, maxSalaryLen},
		{"description", req.Description, maxDescriptionLen},
		{"requirements", req.Requirements, maxRequirementsLen},
	}
	for _, c := range checks {
		if len(c.value) > c.max {
			return &ValidationError{Msg: fmt.Sprintf("%s exceeds %d characters", c.name, c.max)}
		}
	}
	return nil
}
