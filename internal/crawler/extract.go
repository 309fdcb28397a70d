package crawler

import (
	"context"
	"fmt"
	"log"

	"hireloop/crawler-service/internal/model"
	"hireloop/crawler-service/internal/platform"
	"hireloop/crawler-service/internal/scrape"
	"hireloop/crawler-service/internal/taxonomy"
)

// ExtractFromURL fetches a job posting and extracts structured fields.
// Shared by the crawler batch path and manual URL intake. The URL must have
// passed scrape.ValidateURL before this is called on user input.
func (c *Crawler) ExtractFromURL(ctx context.Context, jobURL string) (*model.JobDetails, error) {
	spec := platformSpecOrZero(jobURL)

	content := ""
	res, err := c.fetcher.Scrape(ctx, jobURL, []string{"markdown"}, true, spec.WaitMs)
	if err != nil || res == nil || res.Markdown == "" {
		if err != nil {
			log.Printf("[crawler] rendered scrape failed for %s: %v — trying plain fetch", jobURL, err)
		}
		content, err = scrape.FetchFallback(ctx, jobURL)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", jobURL, err)
		}
	} else {
		content = res.Markdown
	}

	return c.extract(ctx, scrape.Truncate(content), platform.PromptHintFor(jobURL))
}

// ExtractFromText extracts structured fields from pasted posting text,
// skipping the network fetch entirely.
func (c *Crawler) ExtractFromText(ctx context.Context, text string) (*model.JobDetails, error) {
	return c.extract(ctx, scrape.Truncate(text), "")
}

func (c *Crawler) extract(ctx context.Context, content, hint string) (*model.JobDetails, error) {
	if content == "" {
		return nil, fmt.Errorf("no content to extract from")
	}

	details, err := c.llm.Extract(ctx, content, hint)
	if err != nil {
		return nil, err
	}

	Classify(details)
	return details, nil
}

// Classify fills the taxonomy slugs on an extraction result. Slug→ID
// resolution happens at persist time so a missing taxonomy row just leaves
// the reference null.
func Classify(d *model.JobDetails) {
	d.Field = taxonomy.DetectField(d.JobTitle, d.Description+" "+d.Requirements)
	d.ExperienceLevel = taxonomy.DetectLevel(d.JobTitle, d.Description+" "+d.Requirements, d.YearsOfExperience)
}

// platformSpecOrZero returns the board spec for a URL, or a zero Spec (no
// wait, no hint) for unrecognised hosts.
func platformSpecOrZero(jobURL string) platform.Spec {
	p, ok := platform.Detect(jobURL)
	if !ok {
		return platform.Spec{}
	}
	spec, err := platform.SpecFor(p)
	if err != nil {
		return platform.Spec{}
	}
	return spec
}
