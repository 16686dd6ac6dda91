package main

import (
	"context"
	"log"

	"github.com/Francocima/master-skills-scraper/internal/api"
	"github.com/Francocima/master-skills-scraper/internal/config"
	"github.com/Francocima/master-skills-scraper/internal/coordinator"
	"github.com/Francocima/master-skills-scraper/internal/fetch"
	"github.com/Francocima/master-skills-scraper/internal/notify"
	"github.com/Francocima/master-skills-scraper/internal/orchestrator"
	"github.com/Francocima/master-skills-scraper/internal/scraper"
	"github.com/Francocima/master-skills-scraper/internal/scraper/seek"
	"github.com/Francocima/master-skills-scraper/internal/store"
)

func main() {
	//load config
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	log.Printf("🔧 Config loaded. Target: %s, fetch mode: %s", cfg.BaseURL, cfg.FetchMode)

	ctx := context.Background()

	//result store: postgres when a database url is configured, JSONL otherwise
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

	//fetcher
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

	//optional telegram notifications
	var notifier coordinator.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		n, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("⚠️ Telegram notifier disabled: %v", err)
		} else {
			notifier = n
			log.Println("🤖 Telegram notifier initialized.")
		}
	}

	coord := coordinator.New(orch, notifier)
	srv := api.NewServer(coord, st, api.Caps{MaxPages: cfg.MaxPages, MaxResults: cfg.MaxResults})

	log.Printf("Server listening on %s", cfg.ListenAddr)
	if err := srv.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
