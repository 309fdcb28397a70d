// Package crawler implements job discovery, detail extraction and the
// persistence gate shared with manual intake.
package crawler

import (
	"context"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"

	"hireloop/crawler-service/internal/model"
	"hireloop/crawler-service/internal/platform"
	"hireloop/crawler-service/internal/scrape"
)

const (
	mapLinkLimit    = 100
	maxURLsPerCrawl = 20
	maxProcessed    = 10
)

// Fetcher is the content-fetch service surface the crawler needs.
// *scrape.Client satisfies it.
type Fetcher interface {
	Scrape(ctx context.Context, pageURL string, formats []string, onlyMainContent bool, waitMs int) (*scrape.ScrapeResult, error)
	Map(ctx context.Context, pageURL string, limit int) ([]string, error)
}

// Extractor is the completion-service surface. *llm.Extractor satisfies it.
type Extractor interface {
	Extract(ctx context.Context, content, promptHint string) (*model.JobDetails, error)
}

// Store is the persistence surface the pipeline drives: run bookkeeping, the
// discovered-URL ledger, and the company/job dedup gate. *store.Store
// satisfies it.
type Store interface {
	CreateRun(ctx context.Context, platform, query string) (string, error)
	CompleteRun(ctx context.Context, runID string, jobsFound, jobsAdded int) error
	FailRun(ctx context.Context, runID, message string) error
	FilterKnownURLs(ctx context.Context, urls []string) ([]string, error)
	RecordDiscovered(ctx context.Context, sourceURL, platform string) (bool, error)
	MarkProcessed(ctx context.Context, sourceURL, jobID, title, companyName string) error
	MarkDuplicate(ctx context.Context, sourceURL, existingJobID string) error
	MarkFailed(ctx context.Context, sourceURL string) error
	FindOrCreateCompany(ctx context.Context, name string, createdBy *string) (*model.Company, error)
	FindJobBySourceURL(ctx context.Context, sourceURL string) (*model.Job, error)
	LookupFieldID(ctx context.Context, slug string) (*string, error)
	LookupExperienceLevelID(ctx context.Context, slug string) (*string, error)
	CreateJob(ctx context.Context, j *model.Job) error
}

// Crawler wires discovery, extraction and persistence together.
type Crawler struct {
	store   Store
	fetcher Fetcher
	llm     Extractor
	rdb     *redis.Client
}

// New constructs a Crawler. rdb may be nil; event publishing is then skipped.
func New(st Store, fetcher Fetcher, llm Extractor, rdb *redis.Client) *Crawler {
	return &Crawler{store: st, fetcher: fetcher, llm: llm, rdb: rdb}
}

// Discover locates candidate job-posting URLs for a (platform, query,
// location) tuple. The cheap map call is tried first; when it yields no
// matching links, a full rendered scrape is pattern-matched instead. Results
// are capped at maxURLsPerCrawl, first-seen order preserved.
//
// A transport error from the rendered scrape propagates — the caller marks
// the run failed. Zero results without an error is a valid outcome.
func (c *Crawler) Discover(ctx context.Context, p platform.Platform, query, location string) ([]string, error) {
	spec, err := platform.SpecFor(p)
	if err != nil {
		return nil, err
	}
	searchURL := spec.SearchURL(query, location)

	// Primary path: cheap site-map call, filtered by the board's job path.
	links, err := c.fetcher.Map(ctx, searchURL, mapLinkLimit)
	if err != nil {
		log.Printf("[crawler] map call failed for %s (%q): %v — falling back to scrape", p, query, err)
	}
	urls := filterByPattern(links, spec.URLPattern)

	if len(urls) == 0 {
		res, err := c.fetcher.Scrape(ctx, searchURL,
			[]string{"markdown", "links"}, false, spec.WaitMs)
		if err != nil {
			return nil, err
		}
		urls = extractJobURLs(res, spec)
	}

	if len(urls) > maxURLsPerCrawl {
		urls = urls[:maxURLsPerCrawl]
	}
	return urls, nil
}

// filterByPattern keeps links containing the board's job path substring,
// deduplicated in first-seen order.
func filterByPattern(links []string, pattern string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range links {
		if !strings.Contains(l, pattern) {
			continue
		}
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// extractJobURLs pattern-matches job URLs out of a rendered page: the
// markdown text catches URLs embedded in escaped JSON or script content, the
// structured link list catches ordinary anchors. First-seen order wins.
func extractJobURLs(res *scrape.ScrapeResult, spec platform.Spec) []string {
	seen := make(map[string]bool)
	var out []string

	add := func(u string) {
		if !strings.Contains(u, spec.URLPattern) || seen[u] {
			return
		}
		seen[u] = true
		out = append(out, u)
	}

	// JSON-escaped slashes hide URLs from the patterns; normalise first.
	text := strings.ReplaceAll(res.Markdown, `\/`, "/")
	for _, re := range spec.ExtractPatterns {
		for _, m := range re.FindAllString(text, -1) {
			add(m)
		}
	}

	for _, l := range res.Links {
		add(l)
	}

	return out
}
