// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the crawler service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	FirecrawlAPIKey string // content-fetch service credential
	FirecrawlURL    string // override for tests; defaults to the hosted API

	OpenAIAPIKey string // completion service credential
	OpenAIURL    string // override for tests / alternative gateways
	OpenAIModel  string

	AuthURL string // bearer-token resolution endpoint for manual intake

	CrawlIntervalHours int  // how often the cron global crawl fires
	CrawlOnStart       bool // run one global crawl immediately on boot
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	fcKey := os.Getenv("FIRECRAWL_API_KEY")
	if fcKey == "" {
		return nil, fmt.Errorf("FIRECRAWL_API_KEY is required")
	}

	aiKey := os.Getenv("OPENAI_API_KEY")
	if aiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	interval := 12
	if s := os.Getenv("CRAWL_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("CRAWL_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		interval = v
	}

	port := os.Getenv("CRAWLER_PORT")
	if port == "" {
		port = "8083"
	}

	fcURL := os.Getenv("FIRECRAWL_URL")
	if fcURL == "" {
		fcURL = "https://api.firecrawl.dev/v1"
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &Config{
		Port:               port,
		DatabaseURL:        dbURL,
		RedisURL:           redisURL,
		FirecrawlAPIKey:    fcKey,
		FirecrawlURL:       fcURL,
		OpenAIAPIKey:       aiKey,
		OpenAIURL:          os.Getenv("OPENAI_URL"),
		OpenAIModel:        model,
		AuthURL:            os.Getenv("AUTH_URL"),
		CrawlIntervalHours: interval,
		CrawlOnStart:       os.Getenv("CRAWL_ON_START") == "true",
	}, nil
}
