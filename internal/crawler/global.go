package crawler

import (
	"context"
	"log"
	"time"

	"hireloop/crawler-service/internal/model"
	"hireloop/crawler-service/internal/platform"
)

// interCrawlDelay spaces out successive platform×query crawls to stay under
// the upstream boards' rate limits. One outstanding request at a time, fixed
// minimum spacing — compatibility with the boards depends on this shape.
const interCrawlDelay = 2 * time.Second

// SearchPair is one predefined (query, location) combination for the global
// crawl. The list mixes Latin and Hebrew role names to match how the target
// boards index postings.
type SearchPair struct {
	Query    string
	Location string
}

// GlobalSearches is the fixed matrix crossed with every platform by RunGlobal.
var GlobalSearches = []SearchPair{
	{"software engineer", "Israel"},
	{"מפתח תוכנה", "ישראל"},
	{"product manager", "Tel Aviv"},
	{"מנהל מוצר", "תל אביב"},
	{"data analyst", "Israel"},
	{"איש מכירות", "ישראל"},
}

// CrawlFunc runs a single platform×query combination. Extracted as a
// parameter so the orchestration loop is testable without a live pipeline.
type CrawlFunc func(ctx context.Context, rc RunContext) (model.RunResult, error)

// RunGlobal iterates all supported platforms across GlobalSearches, spacing
// combinations by interCrawlDelay. A failing combination is recorded in the
// results and the loop continues — there is no global abort.
func (c *Crawler) RunGlobal(ctx context.Context) []model.RunResult {
	return runGlobal(ctx, c.CrawlPlatform, interCrawlDelay)
}

func runGlobal(ctx context.Context, crawl CrawlFunc, delay time.Duration) []model.RunResult {
	total := len(platform.All) * len(GlobalSearches)
	results := make([]model.RunResult, 0, total)

	log.Printf("[crawler] global crawl started: %d combinations", total)

	first := true
	for _, p := range platform.All {
		for _, pair := range GlobalSearches {
			if !first {
				time.Sleep(delay)
			}
			first = false

			rc := RunContext{Platform: p, Query: pair.Query, Location: pair.Location}
			result, err := crawl(ctx, rc)
			if err != nil {
				log.Printf("[crawler] global: %s %q failed: %v — continuing", p, pair.Query, err)
				if result.Error == "" {
					result.Error = errString(err)
				}
			}
			results = append(results, result)
		}
	}

	log.Printf("[crawler] global crawl complete: %d results", len(results))
	return results
}
