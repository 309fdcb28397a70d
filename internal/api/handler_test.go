package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hireloop/crawler-service/internal/api"
	"hireloop/crawler-service/internal/intake"
)

type fakeResolver struct {
	userID string
	err    error
}

func (f *fakeResolver) Resolve(ctx context.Context, token string) (string, error) {
	return f.userID, f.err
}

func newTestMux(auth api.Resolver) *http.ServeMux {
	mux := http.NewServeMux()
	h := api.NewHandler(nil, intake.New(nil, nil), auth, "test")
	h.RegisterRoutes(mux)
	return mux
}

// Intake without a bearer token is rejected before any processing.
func TestIntake_MissingTokenIs401(t *testing.T) {
	mux := newTestMux(&fakeResolver{userID: "user-1"})

	req := httptest.NewRequest(http.MethodPost, "/intake", strings.NewReader(`{"manual":true}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// A token the auth service refuses is also a 401.
func TestIntake_BadTokenIs401(t *testing.T) {
	mux := newTestMux(&fakeResolver{err: errors.New("expired")})

	req := httptest.NewRequest(http.MethodPost, "/intake", strings.NewReader(`{"manual":true}`))
	req.Header.Set("Authorization", "Bearer stale-token")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// Validation failures inside intake surface as 400 with the specific message.
func TestIntake_ValidationErrorIs400(t *testing.T) {
	mux := newTestMux(&fakeResolver{userID: "user-1"})

	body := `{"manual":true,"job_title":"Engineer"}` // company_name missing
	req := httptest.NewRequest(http.MethodPost, "/intake", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "company_name") {
		t.Errorf("body must name the missing field, got %s", rec.Body.String())
	}
}

// An SSRF-unsafe URL comes back as a 400 before any fetch.
func TestIntake_UnsafeURLIs400(t *testing.T) {
	mux := newTestMux(&fakeResolver{userID: "user-1"})

	body := `{"url":"https://169.254.169.254/latest/meta-data/"}`
	req := httptest.NewRequest(http.MethodPost, "/intake", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// A targeted crawl naming an unsupported board is a 400.
func TestCrawl_UnknownPlatformIs400(t *testing.T) {
	mux := newTestMux(&fakeResolver{})

	body := `{"platform":"monster","query":"engineer"}`
	req := httptest.NewRequest(http.MethodPost, "/crawl", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// A targeted crawl without a query is a 400.
func TestCrawl_MissingQueryIs400(t *testing.T) {
	mux := newTestMux(&fakeResolver{})

	body := `{"platform":"linkedin"}`
	req := httptest.NewRequest(http.MethodPost, "/crawl", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// OPTIONS preflight succeeds with open CORS headers and no body processing.
func TestPreflight(t *testing.T) {
	mux := newTestMux(&fakeResolver{})

	req := httptest.NewRequest(http.MethodOptions, "/intake", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("preflight must carry the open CORS origin header")
	}
}

// Non-POST methods on the action routes are rejected.
func TestMethodNotAllowed(t *testing.T) {
	mux := newTestMux(&fakeResolver{})

	for _, path := range []string{"/crawl", "/intake"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("GET %s status = %d, want 405", path, rec.Code)
		}
	}
}

// The health probe answers without auth.
func TestHealth(t *testing.T) {
	mux := newTestMux(&fakeResolver{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "crawler-service") {
		t.Errorf("health body = %s", rec.Body.String())
	}
}
