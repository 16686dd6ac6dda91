// One-shot scrape from the command line: runs a single query to a
// terminal status and prints the outcome, no HTTP server involved.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Francocima/master-skills-scraper/internal/config"
	"github.com/Francocima/master-skills-scraper/internal/coordinator"
	"github.com/Francocima/master-skills-scraper/internal/fetch"
	"github.com/Francocima/master-skills-scraper/internal/orchestrator"
	"github.com/Francocima/master-skills-scraper/internal/scraper"
	"github.com/Francocima/master-skills-scraper/internal/scraper/seek"
	"github.com/Francocima/master-skills-scraper/internal/store"
)

func main() {
	keywords := flag.String("keywords", "", "search keywords (required)")
	location := flag.String("location", "", "location filter")
	maxPages := flag.Int("max-pages", 0, "page cap, 0 = use config default")
	maxResults := flag.Int("max-results", 0, "result cap, 0 = use config default")
	postedWithin := flag.String("posted-within", "", "only keep listings newer than e.g. 3d or 12h")
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	flag.Parse()

	if *keywords == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	ctx := context.Background()

	var st store.Store
	if cfg.DatabaseURL != "" {
		st, err = store.NewPostgresStore(ctx, cfg.DatabaseURL)
	} else {
		st, err = store.NewJSONLStore(cfg.ResultsPath)
	}
	if err != nil {
		log.Fatalf("❌ Failed to open result store: %v", err)
	}
	defer st.Close()

	buildURL := seek.URLBuilder(cfg.BaseURL)
	var fetcher scraper.Fetcher
	if cfg.FetchMode == "browser" {
		bf, err := fetch.NewBrowserFetcher(buildURL, cfg.FetchTimeout(), fetch.BrowserOptions{
			Headless:      !cfg.Headful,
			CookiesPath:   cfg.CookiesPath,
			ScreenshotDir: cfg.ScreenshotDir,
		})
		if err != nil {
			log.Fatalf("❌ Failed to init browser: %v", err)
		}
		defer bf.Close()
		fetcher = bf
	} else {
		fetcher = fetch.NewHTTPFetcher(buildURL, cfg.FetchTimeout(), cfg.BaseURL+"/")
	}

	extractor, err := seek.NewExtractor(cfg.BaseURL)
	if err != nil {
		log.Fatalf("❌ Bad base url: %v", err)
	}

	orch := orchestrator.New(fetcher, extractor, st, orchestrator.Config{
		MaxAttempts:         cfg.RetryAttempts,
		BackoffBase:         cfg.BackoffBase(),
		BackoffCeiling:      cfg.BackoffCeiling(),
		BlockBackoffCeiling: cfg.BlockBackoffCeiling(),
		BlockBudget:         cfg.BlockBudget,
		PageDelay:           cfg.PageDelay(),
		RunBudget:           cfg.RunBudget(),
	})
	coord := coordinator.New(orch, nil)

	q := scraper.Query{
		Keywords:     *keywords,
		Location:     *location,
		MaxPages:     *maxPages,
		MaxResults:   *maxResults,
		PostedWithin: *postedWithin,
	}
	if q.MaxPages == 0 {
		q.MaxPages = cfg.MaxPages
	}
	if q.MaxResults == 0 {
		q.MaxResults = cfg.MaxResults
	}

	id, err := coord.Start(q)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	//Ctrl-C cancels the run between pages, keeping what was stored
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("⚠️ Interrupt received, cancelling run...")
		coord.Cancel(id)
	}()

	snap, err := coord.Wait(ctx, id)
	if err != nil {
		log.Fatalf("❌ Wait failed: %v", err)
	}

	out, _ := json.MarshalIndent(snap, "", "  ")
	log.Printf("🏁 Run finished:\n%s", out)

	if snap.Status == orchestrator.StatusFailed {
		os.Exit(1)
	}
}
