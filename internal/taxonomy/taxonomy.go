// Package taxonomy classifies extracted postings into the fixed job-field
// and experience-level categories.
//
// Classification is keyword-substring matching over an explicit ordered rule
// list — first matching rule wins, no scoring, no multi-label output. The
// rule order is the tie-break and must stay stable.
package taxonomy

import (
	"regexp"
	"strconv"
	"strings"
)

// FieldRule maps a field slug to the keywords that select it.
type FieldRule struct {
	Slug     string
	Keywords []string
}

// FieldRules is scanned in order; the first rule with any keyword present in
// the combined title+description text wins.
var FieldRules = []FieldRule{
	{"tech", []string{"software", "developer", "engineer", "programmer", "devops", "qa", "fullstack", "full stack", "frontend", "backend", "data scientist", "מפתח", "תוכנה", "בודק"}},
	{"marketing", []string{"marketing", "seo", "content", "social media", "brand", "שיווק", "תוכן"}},
	{"sales", []string{"sales", "account executive", "business development", "מכירות", "פיתוח עסקי"}},
	{"finance", []string{"finance", "accountant", "accounting", "bookkeeper", "controller", "כספים", "חשבונאות", "הנהלת חשבונות"}},
	{"hr", []string{"human resources", "recruiter", "recruitment", "talent acquisition", "משאבי אנוש", "גיוס"}},
	{"design", []string{"designer", "ux", "ui", "graphic", "מעצב", "עיצוב"}},
	{"operations", []string{"operations", "logistics", "supply chain", "project manager", "תפעול", "לוגיסטיקה"}},
	{"legal", []string{"lawyer", "legal", "attorney", "paralegal", "עורך דין", "משפטי"}},
	{"healthcare", []string{"nurse", "doctor", "medical", "therapist", "אחות", "רופא"}},
	{"education", []string{"teacher", "tutor", "instructor", "מורה", "מדריך"}},
}

// DetectField returns the field slug for a posting, or "" when no rule
// matches.
func DetectField(title, description string) string {
	combined := strings.ToLower(title + " " + description)
	for _, rule := range FieldRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(combined, kw) {
				return rule.Slug
			}
		}
	}
	return ""
}

// LevelRule maps an experience-level slug to its selecting keywords.
type LevelRule struct {
	Slug     string
	Keywords []string
}

// LevelRules is the keyword fallback used when no explicit year count is
// present. Senior-most rules come first so "senior engineer" does not fall
// through to a junior match on "engineer".
var LevelRules = []LevelRule{
	{"executive", []string{"chief", "cto", "ceo", "cfo", "vp ", "vice president", `סמנכ"ל`, `מנכ"ל`}},
	{"lead", []string{"lead", "principal", "head of", "ראש צוות"}},
	{"senior", []string{"senior", "sr.", "בכיר"}},
	{"junior", []string{"junior", "jr.", "graduate", "ג'וניור", "מתחיל"}},
	{"entry", []string{"entry level", "intern", "internship", "student", "no experience", "סטודנט", "ללא ניסיון"}},
}

var yearsPattern = regexp.MustCompile(`(\d{1,2})\+?\s*(?:years?|yrs?|שנות|שנים)`)

// LevelForYears maps a numeric years-of-experience value to a level slug.
// Bands: 0 entry, 1-2 junior, 3-5 mid, 6-10 senior, 11-15 lead, above that
// executive.
func LevelForYears(years int) string {
	switch {
	case years <= 0:
		return "entry"
	case years <= 2:
		return "junior"
	case years <= 5:
		return "mid"
	case years <= 10:
		return "senior"
	case years <= 15:
		return "lead"
	default:
		return "executive"
	}
}

// DetectLevel returns the experience-level slug for a posting. An explicit
// years-of-experience value wins; otherwise the first year-count found in the
// text is used; otherwise the keyword rules; otherwise "".
func DetectLevel(title, description string, years *int) string {
	if years != nil {
		return LevelForYears(*years)
	}

	combined := strings.ToLower(title + " " + description)
	if m := yearsPattern.FindStringSubmatch(combined); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return LevelForYears(n)
		}
	}

	for _, rule := range LevelRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(combined, kw) {
				return rule.Slug
			}
		}
	}
	return ""
}
