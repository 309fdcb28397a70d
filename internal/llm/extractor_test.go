package llm_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hireloop/crawler-service/internal/llm"
	"hireloop/crawler-service/internal/model"
)

// A placeholder company name must flag the result for completion and name
// the missing field, while keeping the partial result usable.
func TestFlagMissingFields_PlaceholderCompany(t *testing.T) {
	d := &model.JobDetails{CompanyName: "Unknown", JobTitle: "Backend Engineer"}
	llm.FlagMissingFields(d)

	if !d.RequiresCompletion {
		t.Error("RequiresCompletion must be true for a placeholder company name")
	}
	if len(d.MissingFields) != 1 || d.MissingFields[0] != "company_name" {
		t.Errorf("MissingFields = %v, want [company_name]", d.MissingFields)
	}
	if d.JobTitle != "Backend Engineer" {
		t.Error("partial result must be preserved")
	}
}

// Sub-2-character and empty required fields count as missing.
func TestFlagMissingFields_ShortValues(t *testing.T) {
	d := &model.JobDetails{CompanyName: "A", JobTitle: ""}
	llm.FlagMissingFields(d)

	if !d.RequiresCompletion {
		t.Fatal("RequiresCompletion must be true")
	}
	if len(d.MissingFields) != 2 {
		t.Errorf("MissingFields = %v, want both required fields", d.MissingFields)
	}
}

// Both required fields present → nothing to complete, and re-running the
// check clears stale flags.
func TestFlagMissingFields_CompleteResult(t *testing.T) {
	d := &model.JobDetails{
		CompanyName:        "Acme Corp",
		JobTitle:           "Backend Engineer",
		RequiresCompletion: true,
		MissingFields:      []string{"company_name"},
	}
	llm.FlagMissingFields(d)

	if d.RequiresCompletion {
		t.Error("RequiresCompletion must be false for a complete result")
	}
	if len(d.MissingFields) != 0 {
		t.Errorf("MissingFields = %v, want empty", d.MissingFields)
	}
}

// The free-text salvage parser must return the first balanced object and
// ignore braces inside JSON strings.
func TestFirstJSONObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`Here is the data: {"a":1} trailing`, `{"a":1}`},
		{`{"nested":{"b":2},"c":3} {"second":true}`, `{"nested":{"b":2},"c":3}`},
		{`{"tricky":"brace } inside","ok":true}`, `{"tricky":"brace } inside","ok":true}`},
		{`{"escaped":"quote \" and } brace"}`, `{"escaped":"quote \" and } brace"}`},
		{`no json here`, ``},
		{`{"unterminated":`, ``},
	}
	for _, c := range cases {
		if got := llm.FirstJSONObject(c.in); got != c.want {
			t.Errorf("FirstJSONObject(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// Extract parses the structured tool-call arguments returned by the
// completion service.
func TestExtract_ToolCallPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "cmpl-1", "object": "chat.completion",
			"choices": [{"message": {"role": "assistant", "tool_calls": [{
				"id": "call-1", "type": "function",
				"function": {"name": "extract_job_details",
					"arguments": "{\"company_name\":\"Acme Corp\",\"job_title\":\"Backend Engineer\",\"job_type\":\"full-time\",\"years_of_experience\":4}"}
			}]}}]
		}`))
	}))
	defer srv.Close()

	e := llm.NewExtractor("test-key", srv.URL+"/v1", "gpt-4o-mini")
	details, err := e.Extract(context.Background(), "job posting content", "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if details.CompanyName != "Acme Corp" || details.JobTitle != "Backend Engineer" {
		t.Errorf("required fields = %q / %q", details.CompanyName, details.JobTitle)
	}
	if details.JobType != "full-time" {
		t.Errorf("JobType = %q", details.JobType)
	}
	if details.YearsOfExperience == nil || *details.YearsOfExperience != 4 {
		t.Errorf("YearsOfExperience = %v, want 4", details.YearsOfExperience)
	}
	if details.RequiresCompletion {
		t.Error("complete extraction must not require completion")
	}
}

// When the model answers in free text instead of a tool call, the first
// balanced JSON object in the content is used.
func TestExtract_FreeTextFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "cmpl-2", "object": "chat.completion",
			"choices": [{"message": {"role": "assistant",
				"content": "Sure! Here you go: {\"company_name\":\"Acme Corp\",\"job_title\":\"QA Engineer\"} hope that helps"}}]
		}`))
	}))
	defer srv.Close()

	e := llm.NewExtractor("test-key", srv.URL+"/v1", "gpt-4o-mini")
	details, err := e.Extract(context.Background(), "job posting content", "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if details.CompanyName != "Acme Corp" || details.JobTitle != "QA Engineer" {
		t.Errorf("fallback parse got %q / %q", details.CompanyName, details.JobTitle)
	}
}

// A 429 from the completion service maps to ErrRateLimited so callers can
// tell throttling apart from a generic failure.
func TestExtract_RateLimitError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limit exceeded", "type": "rate_limit_error"}}`))
	}))
	defer srv.Close()

	e := llm.NewExtractor("test-key", srv.URL+"/v1", "gpt-4o-mini")
	_, err := e.Extract(context.Background(), "content", "")
	if err == nil {
		t.Fatal("Extract must fail on 429")
	}
	if !errors.Is(err, llm.ErrRateLimited) {
		t.Errorf("error %v must wrap ErrRateLimited", err)
	}
}
