package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/newsdesk-hq/daily-clipper/internal/config"
	"github.com/newsdesk-hq/daily-clipper/internal/logger"
	"github.com/newsdesk-hq/daily-clipper/internal/orchestrator"
	"github.com/newsdesk-hq/daily-clipper/internal/report"
	"github.com/newsdesk-hq/daily-clipper/internal/server"
	"github.com/newsdesk-hq/daily-clipper/internal/store"
	"github.com/newsdesk-hq/daily-clipper/internal/translate"
	"github.com/newsdesk-hq/daily-clipper/pkg/collectors"
	"github.com/newsdesk-hq/daily-clipper/pkg/httpclient"
	"github.com/newsdesk-hq/daily-clipper/pkg/notify"
)

func main() {
	configPath := flag.String("config", "", "path to the service config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "clipperd:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	base, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	ring := logger.NewMemoryLog(200)
	log := logger.Tee(base, ring)

	catalog, err := loadCatalog(cfg.SourcesFile)
	if err != nil {
		return err
	}

	var tr collectors.Translator
	if cfg.Translate {
		tr = translate.New(log)
	}

	client := httpclient.NewRestyClient(cfg.RequestTimeout)
	registry := collectors.DefaultFetcherRegistry(client, tr)

	db, err := store.Open(cfg.StorePath, cfg.HistoryLimit)
	if err != nil {
		return err
	}
	defer db.Close()

	notifier, err := notify.FromFile(context.Background(), cfg.NotifiersFile, log)
	if err != nil {
		return err
	}

	orch, err := orchestrator.New(orchestrator.Options{
		Registry:    registry,
		Catalog:     catalog,
		Report:      report.NewWriter(cfg.OutputDir, log),
		Store:       db,
		Notifier:    notifier,
		Logger:      log,
		SourceDelay: cfg.RequestDelay,
	})
	if err != nil {
		return err
	}

	if last, err := db.LastReport(); err == nil && last != "" {
		orch.SetLastReport(last)
	}

	log.InfoObj("daily clipper starting", "startup", map[string]any{
		"listen_addr": cfg.ListenAddr,
		"sources":     len(catalog),
		"output_dir":  cfg.OutputDir,
	})

	srv := server.New(orch, db, ring, log)
	return srv.ListenAndServe(cfg.ListenAddr)
}

// loadCatalog reads the sources file when it exists, otherwise falls
// back to the built-in source set.
func loadCatalog(path string) ([]collectors.Source, error) {
	if path == "" {
		return collectors.DefaultCatalog(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return collectors.DefaultCatalog(), nil
	}
	return collectors.LoadCatalog(path)
}
