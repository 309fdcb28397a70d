// Package platform defines the supported job boards and their scraping
// strategy. Adding a board is a data addition here — a new Spec entry — not
// new control flow in the crawler.
package platform

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Platform identifies a supported job board.
type Platform string

const (
	LinkedIn Platform = "linkedin"
	Drushim  Platform = "drushim"
	AllJobs  Platform = "alljobs"
)

// All lists every supported platform in the order the global orchestrator
// iterates them.
var All = []Platform{LinkedIn, Drushim, AllJobs}

// Parse converts a raw string to a Platform, returning an error for unknown
// values.
func Parse(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case LinkedIn, Drushim, AllJobs:
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// Spec is the per-board scraping strategy: how to build a search URL, which
// link paths count as job postings, how to regex them out of rendered page
// text, how long to wait for client-side rendering, and what hint to attach
// to the extraction prompt.
type Spec struct {
	Platform        Platform
	SearchURL       func(query, location string) string
	URLPattern      string // substring a job-posting URL must contain
	ExtractPatterns []*regexp.Regexp
	WaitMs          int
	PromptHint      string
	Hosts           []string // hostnames used by Detect
}

var specs = map[Platform]Spec{
	LinkedIn: {
		Platform: LinkedIn,
		SearchURL: func(query, location string) string {
			return "https://www.linkedin.com/jobs/search/?keywords=" +
				url.QueryEscape(query) + "&location=" + url.QueryEscape(location)
		},
		URLPattern: "/jobs/view/",
		ExtractPatterns: []*regexp.Regexp{
			regexp.MustCompile(`https://(?:[a-z]{2,3}\.)?linkedin\.com/jobs/view/[\w-]+`),
		},
		WaitMs:     3000,
		PromptHint: "LinkedIn posting: the company name usually appears directly under the job title.",
		Hosts:      []string{"linkedin.com", "www.linkedin.com", "il.linkedin.com"},
	},
	Drushim: {
		Platform: Drushim,
		SearchURL: func(query, location string) string {
			u := "https://www.drushim.co.il/jobs/search/" + url.PathEscape(query) + "/"
			if location != "" {
				u += "?area=" + url.QueryEscape(location)
			}
			return u
		},
		URLPattern: "/job/",
		ExtractPatterns: []*regexp.Regexp{
			regexp.MustCompile(`https://www\.drushim\.co\.il/job/\d+[\w/-]*`),
		},
		WaitMs:     5000,
		PromptHint: "Drushim posting: company name may be in Hebrew script; look near the job title.",
		Hosts:      []string{"drushim.co.il", "www.drushim.co.il"},
	},
	AllJobs: {
		Platform: AllJobs,
		SearchURL: func(query, location string) string {
			return "https://www.alljobs.co.il/SearchResultsGuest.aspx?freetxt=" +
				url.QueryEscape(query)
		},
		URLPattern: "JobID=",
		ExtractPatterns: []*regexp.Regexp{
			regexp.MustCompile(`https://www\.alljobs\.co\.il/[\w/.?&=%-]*JobID=\d+`),
		},
		WaitMs:     5000,
		PromptHint: "AllJobs posting: company name may be in Hebrew script; job details sit inside a table layout.",
		Hosts:      []string{"alljobs.co.il", "www.alljobs.co.il"},
	},
}

// SpecFor returns the scraping strategy for a platform.
func SpecFor(p Platform) (Spec, error) {
	s, ok := specs[p]
	if !ok {
		return Spec{}, fmt.Errorf("no spec for platform %q", p)
	}
	return s, nil
}

// Detect maps a job-posting URL to its platform by hostname, returning
// ("", false) for unrecognised hosts.
func Detect(rawURL string) (Platform, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	for _, s := range specs {
		for _, h := range s.Hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return s.Platform, true
			}
		}
	}
	return "", false
}

// PromptHintFor returns the extraction hint for a URL's platform, or an
// empty string when the host is not a known board.
func PromptHintFor(rawURL string) string {
	p, ok := Detect(rawURL)
	if !ok {
		return ""
	}
	return specs[p].PromptHint
}
