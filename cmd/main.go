// hireloop crawler-service
//
// Job discovery and extraction pipeline:
//   - discovery crawler locates posting URLs on the supported boards
//   - detail extractor turns page content into structured fields via the
//     completion service and classifies them into the job taxonomy
//   - manual intake lets an authenticated user submit a single URL, pasted
//     text, or hand-typed fields through the same pipeline
//
// Invoked over HTTP by the scheduler and the web client; also runs its own
// cron global crawl gated by crawler_settings.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hireloop/crawler-service/internal/api"
	"hireloop/crawler-service/internal/config"
	"hireloop/crawler-service/internal/crawler"
	"hireloop/crawler-service/internal/db"
	"hireloop/crawler-service/internal/intake"
	"hireloop/crawler-service/internal/llm"
	"hireloop/crawler-service/internal/scheduler"
	"hireloop/crawler-service/internal/scrape"
	"hireloop/crawler-service/internal/store"
)

const version = "1.0.0"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[crawler-service] No .env file found, using environment")
	}

	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[crawler-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[crawler-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[crawler-service] PostgreSQL: %v", err)
	}
	defer pool.Close()

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[crawler-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[crawler-service] Redis: %v", err)
	}
	defer rdb.Close()

	// ── Pipeline wiring ──────────────────────────────────────────────────────
	st := store.New(pool)
	fetcher := scrape.NewClient(cfg.FirecrawlURL, cfg.FirecrawlAPIKey)
	extractor := llm.NewExtractor(cfg.OpenAIAPIKey, cfg.OpenAIURL, cfg.OpenAIModel)
	crawl := crawler.New(st, fetcher, extractor, rdb)
	in := intake.New(crawl, st)
	auth := api.NewAuthClient(cfg.AuthURL)

	// ── Scheduler ────────────────────────────────────────────────────────────
	sched := scheduler.New(st, crawl, cfg.CrawlIntervalHours)
	if err := sched.Start(ctx, cfg.CrawlOnStart); err != nil {
		log.Fatalf("[crawler-service] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	h := api.NewHandler(crawl, in, auth, version)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // a global crawl answer can take a while
	}

	go func() {
		log.Printf("[crawler-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[crawler-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[crawler-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[crawler-service] Shutdown error: %v", err)
	}
	log.Println("[crawler-service] Stopped.")
}
