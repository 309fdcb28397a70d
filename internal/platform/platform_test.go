package platform_test

import (
	"strings"
	"testing"

	"hireloop/crawler-service/internal/platform"
)

// Every listed platform must parse, with surrounding whitespace and case
// tolerated; unknown boards are rejected.
func TestParse(t *testing.T) {
	for _, p := range platform.All {
		got, err := platform.Parse(string(p))
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", p, err)
		}
		if got != p {
			t.Errorf("Parse(%q) = %q", p, got)
		}
	}

	if got, err := platform.Parse("  LinkedIn "); err != nil || got != platform.LinkedIn {
		t.Errorf("Parse with case/whitespace = (%q, %v), want linkedin", got, err)
	}

	if _, err := platform.Parse("monster"); err == nil {
		t.Error("Parse must reject an unsupported board")
	}
}

// Each platform must have a spec whose search URL embeds the query
// percent-encoded, including Hebrew queries.
func TestSpecFor_SearchURLEncoding(t *testing.T) {
	for _, p := range platform.All {
		spec, err := platform.SpecFor(p)
		if err != nil {
			t.Fatalf("SpecFor(%q): %v", p, err)
		}

		u := spec.SearchURL("מפתח תוכנה", "תל אביב")
		if !strings.HasPrefix(u, "https://") {
			t.Errorf("%s search URL not https: %q", p, u)
		}
		if strings.Contains(u, " ") || strings.Contains(u, "מפתח") {
			t.Errorf("%s search URL not percent-encoded: %q", p, u)
		}
	}
}

// A platform's extract patterns must match its own posting URLs and pass the
// path-pattern filter.
func TestSpec_ExtractPatternsMatchOwnURLs(t *testing.T) {
	samples := map[platform.Platform]string{
		platform.LinkedIn: "https://www.linkedin.com/jobs/view/backend-engineer-at-acme-3912345678",
		platform.Drushim:  "https://www.drushim.co.il/job/12345/",
		platform.AllJobs:  "https://www.alljobs.co.il/Search/UploadSingle.aspx?JobID=98765",
	}

	for p, sample := range samples {
		spec, err := platform.SpecFor(p)
		if err != nil {
			t.Fatalf("SpecFor(%q): %v", p, err)
		}

		if !strings.Contains(sample, spec.URLPattern) {
			t.Errorf("%s URLPattern %q does not match sample %q", p, spec.URLPattern, sample)
		}

		matched := false
		for _, re := range spec.ExtractPatterns {
			if re.MatchString(sample) {
				matched = true
				break
			}
		}
		if !matched {
			t.Errorf("%s extract patterns do not match sample %q", p, sample)
		}
	}
}

// Detect maps posting URLs back to their board by hostname and refuses
// unknown hosts.
func TestDetect(t *testing.T) {
	cases := []struct {
		url  string
		want platform.Platform
		ok   bool
	}{
		{"https://www.linkedin.com/jobs/view/123", platform.LinkedIn, true},
		{"https://il.linkedin.com/jobs/view/456", platform.LinkedIn, true},
		{"https://www.drushim.co.il/job/789/", platform.Drushim, true},
		{"https://www.alljobs.co.il/x?JobID=1", platform.AllJobs, true},
		{"https://jobs.example.com/view/1", "", false},
	}
	for _, c := range cases {
		got, ok := platform.Detect(c.url)
		if ok != c.ok || got != c.want {
			t.Errorf("Detect(%q) = (%q, %v), want (%q, %v)", c.url, got, ok, c.want, c.ok)
		}
	}
}

// Known boards get a non-empty extraction hint; unknown hosts get none.
func TestPromptHintFor(t *testing.T) {
	if hint := platform.PromptHintFor("https://www.drushim.co.il/job/789/"); hint == "" {
		t.Error("PromptHintFor(drushim) must return a hint")
	}
	if hint := platform.PromptHintFor("https://jobs.example.com/1"); hint != "" {
		t.Errorf("PromptHintFor(unknown host) = %q, want empty", hint)
	}
}
