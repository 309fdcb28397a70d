// Package api implements the HTTP invocation surface of the crawler service.
//
// Routes:
//
//	POST /crawl   → global crawl ({"globalCrawl":true} or empty body) or a
//	                single platform/query crawl ({platform, query, location?, runId?})
//	POST /intake  → manual / URL / pasted-text job submission (bearer auth)
//	GET  /health  → liveness probe
//
// All routes are CORS-open with OPTIONS preflight so the scheduler and the
// web client can call them directly.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"hireloop/crawler-service/internal/crawler"
	"hireloop/crawler-service/internal/intake"
	"hireloop/crawler-service/internal/platform"
)

// Handler holds shared dependencies.
type Handler struct {
	crawler *crawler.Crawler
	intake  *intake.Service
	auth    Resolver
	version string
}

// NewHandler returns a configured Handler.
func NewHandler(c *crawler.Crawler, in *intake.Service, auth Resolver, version string) *Handler {
	return &Handler{crawler: c, intake: in, auth: auth, version: version}
}

// RegisterRoutes mounts all crawler-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/crawl", h.withCORS(h.handleCrawl))
	mux.HandleFunc("/intake", h.withCORS(h.handleIntake))
	mux.HandleFunc("/health", h.withCORS(h.handleHealth))
}

// withCORS opens the route to browser callers and answers preflights.
func (h *Handler) withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]string{
		"status":  "ok",
		"service": "crawler-service",
		"version": h.version,
	})
}

// crawlRequest is the decoded /crawl body. An unrecognised or empty body
// defaults to a global crawl so unattended scheduled invocations need no
// payload.
type crawlRequest struct {
	GlobalCrawl bool   `json:"globalCrawl"`
	Platform    string `json:"platform"`
	Query       string `json:"query"`
	Location    string `json:"location"`
	RunID       string `json:"runId"`
}

func (h *Handler) handleCrawl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req crawlRequest
	if r.Body != nil {
		// A malformed or absent body is not an error here — it selects the
		// global mode.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if req.GlobalCrawl || req.Platform == "" {
		results := h.crawler.RunGlobal(r.Context())
		jsonOK(w, map[string]any{
			"success": true,
			"mode":    "global",
			"results": results,
		})
		return
	}

	p, err := platform.Parse(req.Platform)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		jsonError(w, "query is required for a targeted crawl", http.StatusBadRequest)
		return
	}

	result, err := h.crawler.CrawlPlatform(r.Context(), crawler.RunContext{
		Platform: p,
		Query:    req.Query,
		Location: req.Location,
		RunID:    req.RunID,
	})
	if err != nil {
		// The failure is already recorded on the run row; the scheduler
		// gets the result object with the error captured.
		log.Printf("[api] targeted crawl failed: %v", err)
	}
	jsonOK(w, result)
}

func (h *Handler) handleIntake(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := bearerToken(r)
	if token == "" {
		jsonError(w, "missing bearer token", http.StatusUnauthorized)
		return
	}

	userID, err := h.auth.Resolve(r.Context(), token)
	if err != nil {
		log.Printf("[api] auth resolution failed: %v", err)
		jsonError(w, "invalid bearer token", http.StatusUnauthorized)
		return
	}

	var req intake.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := h.intake.Submit(r.Context(), userID, req)
	if err != nil {
		var ve *intake.ValidationError
		if errors.As(err, &ve) {
			jsonError(w, ve.Msg, http.StatusBadRequest)
			return
		}
		log.Printf("[api] intake error: %v", err)
		jsonError(w, "intake failed", http.StatusInternalServerError)
		return
	}

	jsonOK(w, result)
}

// ─── JSON helpers ────────────────────────────────────────────────────────────

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode response: %v", err)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":%q}`+"\n", msg)
}
