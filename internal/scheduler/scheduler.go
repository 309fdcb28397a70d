// Package scheduler wires up the cron job that periodically fires a global
// crawl, throttled by the crawler_settings row.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"hireloop/crawler-service/internal/crawler"
	"hireloop/crawler-service/internal/store"
)

// Scheduler wraps robfig/cron and manages the periodic global crawl.
type Scheduler struct {
	cron    *cron.Cron
	store   *store.Store
	crawler *crawler.Crawler
	spec    string // cron spec, e.g. "@every 12h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(st *store.Store, c *crawler.Crawler, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cron.DefaultLogger)),
		store:   st,
		crawler: c,
		spec:    fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the cron loop. When runNow is set, one
// global crawl fires immediately so the feed is populated without waiting
// for the first tick.
func (s *Scheduler) Start(ctx context.Context, runNow bool) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runGlobal(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	if runNow {
		go s.runGlobal(ctx)
	}
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// runGlobal checks the settings throttle and runs the full global crawl.
func (s *Scheduler) runGlobal(ctx context.Context) {
	settings, err := s.store.GetCrawlerSettings(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("[scheduler] settings read error: %v — skipping cycle", err)
		return
	}

	if settings != nil {
		if !settings.IsActive {
			log.Println("[scheduler] crawler disabled in settings — skipping cycle")
			return
		}
		if settings.LastRunAt != nil && settings.FrequencyHours > 0 {
			next := settings.LastRunAt.Add(time.Duration(settings.FrequencyHours) * time.Hour)
			if time.Now().Before(next) {
				log.Printf("[scheduler] throttled until %s — skipping cycle", next.Format(time.RFC3339))
				return
			}
		}
	}

	log.Println("[scheduler] global crawl cycle started")
	results := s.crawler.RunGlobal(ctx)

	var added int
	for _, r := range results {
		added += r.JobsAdded
	}
	log.Printf("[scheduler] global crawl cycle complete — %d combinations, %d jobs added",
		len(results), added)

	if settings != nil {
		if err := s.store.TouchCrawlerSettings(ctx, settings.ID); err != nil {
			log.Printf("[scheduler] settings touch error: %v", err)
		}
	}
}
