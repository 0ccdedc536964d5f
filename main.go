package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"seolens/config"
	"seolens/crawler"
	"seolens/httputil"
	"seolens/logging"
	"seolens/models"
	"seolens/scheduler"
	"seolens/services"
	"seolens/storage"
	"seolens/workers"
)

var (
	scanDomain  = flag.String("scan", "", "Scan a single domain by ID and exit")
	maxPages    = flag.Int("max-pages", 0, "Page budget for -scan (0 = configured default)")
	uptimeOnce  = flag.Bool("uptime", false, "Run one uptime sweep and exit")
	whoisDomain = flag.String("whois", "", "Fetch WHOIS data for a domain by ID and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.LogPath)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting seolens...")

	clients := httputil.NewClients(cfg)

	ctx := context.Background()

	// Postgres holds the domain data (domains, pages, suggestions, checks)
	pgStore, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()
	log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.DatabaseURL))

	// SQLite holds operational data (command queue, scan logs)
	sqliteStore, err := storage.NewSQLiteStore(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer sqliteStore.Close()
	log.Printf("SQLite database: %s", cfg.SQLitePath)

	// Initialize services
	fetcher := crawler.NewHTTPFetcher(clients.Crawl, httputil.CrawlUserAgent)
	scanner := crawler.NewScanner(fetcher, cfg.Scanner.CrawlDelay())
	scanService := services.NewScanService(pgStore, scanner)
	uptimeService := services.NewUptimeService(pgStore, clients.Probe, httputil.ProbeUserAgent, cfg.Uptime.Workers)
	whoisService := services.NewWhoisService(pgStore, clients.API, httputil.WhoisUserAgent)

	log.Println("Services initialized")

	// Handle one-shot commands
	if *scanDomain != "" {
		id, err := uuid.Parse(*scanDomain)
		if err != nil {
			log.Fatalf("Invalid domain ID %q: %v", *scanDomain, err)
		}
		pages := cfg.Scanner.MaxPages
		if *maxPages > 0 {
			pages = *maxPages
		}
		log.Printf("Scanning domain %s (budget %d pages)...", id, pages)
		outcome, err := scanService.Scan(ctx, id, pages)
		if err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
		log.Printf("Scan complete: %d pages, %d suggestions, health score %d",
			outcome.PagesScanned, outcome.SuggestionsCreated, outcome.HealthScore)
		return
	}

	if *uptimeOnce {
		log.Println("Running uptime sweep...")
		report, err := uptimeService.CheckAll(ctx)
		if err != nil {
			log.Fatalf("Uptime sweep failed: %v", err)
		}
		log.Printf("Uptime sweep complete: %d checked, %d skipped of %d domains",
			report.Checked, report.Skipped, report.Total)
		return
	}

	if *whoisDomain != "" {
		id, err := uuid.Parse(*whoisDomain)
		if err != nil {
			log.Fatalf("Invalid domain ID %q: %v", *whoisDomain, err)
		}
		result, err := whoisService.Fetch(ctx, id)
		if err != nil {
			log.Fatalf("WHOIS fetch failed: %v", err)
		}
		log.Printf("WHOIS fetch complete: status=%s", result.Status)
		return
	}

	// Daemon mode
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	uptimeWorker := workers.NewUptimeWorker(uptimeService)
	uptimeWorker.SetLogger(func(level models.LogLevel, source, message string) {
		entry := &models.ScanLog{Timestamp: time.Now(), Level: level, Source: source, Message: message}
		if err := sqliteStore.CreateScanLog(entry); err != nil {
			log.Printf("Failed to write scan log: %v", err)
		}
	})

	sched := scheduler.New(cfg, scanService, whoisService, pgStore, sqliteStore)
	sched.SetUptimeWorker(uptimeWorker)

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	go uptimeWorker.Run(ctx, time.Duration(cfg.Uptime.DefaultIntervalMin)*time.Minute)
	log.Println("Uptime worker started")

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
	log.Println("Goodbye!")
}

// maskConnectionString masks password in connection string for logging
func maskConnectionString(connStr string) string {
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
