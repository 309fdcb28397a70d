package taxonomy_test

import (
	"testing"

	"hireloop/crawler-service/internal/taxonomy"
)

// The experience bands must map exactly: 0→entry, 1-2→junior, 3-5→mid,
// 6-10→senior, 11-15→lead, above that executive.
func TestLevelForYears_BandBoundaries(t *testing.T) {
	cases := []struct {
		years int
		want  string
	}{
		{0, "entry"},
		{1, "junior"},
		{2, "junior"},
		{3, "mid"},
		{5, "mid"},
		{6, "senior"},
		{10, "senior"},
		{11, "lead"},
		{15, "lead"},
		{16, "executive"},
		{30, "executive"},
	}
	for _, c := range cases {
		if got := taxonomy.LevelForYears(c.years); got != c.want {
			t.Errorf("LevelForYears(%d) = %q, want %q", c.years, got, c.want)
		}
	}
}

// An explicit years value must win over any keyword in the text.
func TestDetectLevel_ExplicitYearsWins(t *testing.T) {
	years := 1
	got := taxonomy.DetectLevel("Senior Software Engineer", "senior role, principal track", &years)
	if got != "junior" {
		t.Errorf("DetectLevel with explicit years=1 = %q, want junior", got)
	}
}

// A "N years of experience" phrase in the description must be picked up when
// no explicit value is given.
func TestDetectLevel_YearsPhraseInText(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"We need 7 years of experience with Go", "senior"},
		{"Requires 3+ years experience", "mid"},
		{"Minimum 12 yrs in management", "lead"},
	}
	for _, c := range cases {
		if got := taxonomy.DetectLevel("Engineer", c.text, nil); got != c.want {
			t.Errorf("DetectLevel(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}

// Without years, the keyword rules apply in order — "senior engineer" must
// classify as senior, not fall through on "engineer".
func TestDetectLevel_KeywordFallbackOrder(t *testing.T) {
	if got := taxonomy.DetectLevel("Senior Backend Engineer", "", nil); got != "senior" {
		t.Errorf("DetectLevel senior title = %q, want senior", got)
	}
	if got := taxonomy.DetectLevel("Junior QA", "", nil); got != "junior" {
		t.Errorf("DetectLevel junior title = %q, want junior", got)
	}
	if got := taxonomy.DetectLevel("Head of Marketing", "", nil); got != "lead" {
		t.Errorf("DetectLevel head-of title = %q, want lead", got)
	}
}

// No matching rule and no years → empty slug, so the job row gets a null
// taxonomy reference.
func TestDetectLevel_NoMatch(t *testing.T) {
	if got := taxonomy.DetectLevel("Dolphin Trainer", "work with dolphins", nil); got != "" {
		t.Errorf("DetectLevel with no match = %q, want empty", got)
	}
}

// Field detection is first-match-wins over the ordered rule list. A posting
// matching both tech and marketing keywords must classify as tech because
// the tech rule comes first.
func TestDetectField_FirstMatchWins(t *testing.T) {
	got := taxonomy.DetectField("Software Engineer", "you will own our marketing site")
	if got != "tech" {
		t.Errorf("DetectField = %q, want tech (rule order tie-break)", got)
	}
}

// Hebrew keywords must classify the same as their Latin counterparts.
func TestDetectField_HebrewKeywords(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"מפתח תוכנה", "tech"},
		{"מנהל שיווק", "marketing"},
		{"נציג מכירות", "sales"},
	}
	for _, c := range cases {
		if got := taxonomy.DetectField(c.title, ""); got != c.want {
			t.Errorf("DetectField(%q) = %q, want %q", c.title, got, c.want)
		}
	}
}

func TestDetectField_NoMatch(t *testing.T) {
	if got := taxonomy.DetectField("Zookeeper", "feed the animals"); got != "" {
		t.Errorf("DetectField with no match = %q, want empty", got)
	}
}
