// Package model defines shared data structures for the crawler service.
package model

import "time"

// RunStatus mirrors the crawler_runs.status column.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// DiscoveryStatus mirrors the discovered_jobs.status column.
type DiscoveryStatus string

const (
	DiscoveryDiscovered DiscoveryStatus = "discovered"
	DiscoveryProcessed  DiscoveryStatus = "processed"
	DiscoveryDuplicate  DiscoveryStatus = "duplicate"
	DiscoveryFailed     DiscoveryStatus = "failed"
)

// CrawlerRun is one record per discovery invocation. Created at invocation
// start, moved to completed/failed exactly once, never deleted here.
type CrawlerRun struct {
	ID           string
	Platform     string
	SearchQuery  string
	Status       RunStatus
	JobsFound    int
	JobsAdded    int
	ErrorMessage *string
	StartedAt    time.Time
	CompletedAt  *time.Time
}

// DiscoveredJob is the idempotency ledger row for a URL seen by discovery.
// Inserted before any detail fetch; a URL already present is never
// re-discovered or re-processed.
type DiscoveredJob struct {
	ID          string
	SourceURL   string
	Platform    string
	Status      DiscoveryStatus
	Title       *string
	CompanyName *string
	JobID       *string
	ProcessedAt *time.Time
}

// Company mirrors the companies table. Name is matched case-insensitively;
// CreatedBy is nil for crawler-created companies.
type Company struct {
	ID          string
	Name        string
	Description *string
	Industry    *string
	Website     *string
	LogoURL     *string
	CreatedBy   *string
}

// Job mirrors the jobs table. SourceURL is unique per crawler-created job.
type Job struct {
	ID                string
	Title             string
	CompanyID         string
	Location          *string
	JobType           *string
	SalaryRange       *string
	Description       *string
	Requirements      *string
	SourceURL         *string
	Status            string
	FieldID           *string
	RoleID            *string
	ExperienceLevelID *string
	CreatedBy         *string
}

// Application links a job to the submitting user (manual-intake path only).
type Application struct {
	ID           string
	JobID        string
	CandidateID  string
	Status       string
	CurrentStage string
	CreatedAt    time.Time
}

// JobDetails is the result of a single extraction (URL or pasted text).
// When a required field is missing or a placeholder, RequiresCompletion is
// set and the field name recorded in MissingFields; the partial result is
// still returned so the caller can prompt the submitter.
type JobDetails struct {
	CompanyName       string  `json:"company_name"`
	JobTitle          string  `json:"job_title"`
	Location          string  `json:"location,omitempty"`
	JobType           string  `json:"job_type,omitempty"`
	SalaryRange       string  `json:"salary_range,omitempty"`
	Description       string  `json:"description,omitempty"`
	Requirements      string  `json:"requirements,omitempty"`
	YearsOfExperience *int    `json:"years_of_experience,omitempty"`

	Field              string   `json:"field,omitempty"`
	ExperienceLevel    string   `json:"experience_level,omitempty"`
	RequiresCompletion bool     `json:"requiresCompletion,omitempty"`
	MissingFields      []string `json:"missingFields,omitempty"`
}

// RunResult is the per-(platform × query) outcome aggregated by the global
// orchestrator. Error is set when the combination failed; the global run
// continues past it.
type RunResult struct {
	Platform  string `json:"platform"`
	Query     string `json:"query"`
	Location  string `json:"location,omitempty"`
	RunID     string `json:"runId,omitempty"`
	JobsFound int    `json:"jobsFound"`
	JobsAdded int    `json:"jobsAdded"`
	Error     string `json:"error,omitempty"`
}

// CrawlerSettings mirrors the crawler_settings throttle row read by the
// scheduler before firing a global crawl.
type CrawlerSettings struct {
	ID             string
	FrequencyHours int
	LastRunAt      *time.Time
	IsActive       bool
}
