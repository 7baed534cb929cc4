package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"github.com/newsdesk-hq/daily-clipper/internal/config"
	"github.com/newsdesk-hq/daily-clipper/internal/domain"
	"github.com/newsdesk-hq/daily-clipper/internal/logger"
	"github.com/newsdesk-hq/daily-clipper/internal/orchestrator"
	"github.com/newsdesk-hq/daily-clipper/internal/report"
	"github.com/newsdesk-hq/daily-clipper/internal/translate"
	"github.com/newsdesk-hq/daily-clipper/pkg/collectors"
	"github.com/newsdesk-hq/daily-clipper/pkg/httpclient"
)

// clipper runs a single collection pass from the terminal and writes
// the report without starting the dashboard.
func main() {
	configPath := flag.String("config", "", "path to the service config file")
	quiet := flag.Bool("quiet", false, "suppress structured log output")
	flag.Parse()

	if err := run(*configPath, *quiet); err != nil {
		fmt.Fprintln(os.Stderr, "clipper:", err)
		os.Exit(1)
	}
}

func run(configPath string, quiet bool) error {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var log logger.Logger = logger.NopLogger{}
	if !quiet {
		log, err = logger.New(cfg.LogLevel)
		if err != nil {
			return err
		}
	}

	catalog, err := loadCatalog(cfg.SourcesFile)
	if err != nil {
		return err
	}

	var tr collectors.Translator
	if cfg.Translate {
		tr = translate.New(log)
	}

	client := httpclient.NewRestyClient(cfg.RequestTimeout)

	orch, err := orchestrator.New(orchestrator.Options{
		Registry:    collectors.DefaultFetcherRegistry(client, tr),
		Catalog:     catalog,
		Report:      report.NewWriter(cfg.OutputDir, log),
		Logger:      log,
		SourceDelay: cfg.RequestDelay,
	})
	if err != nil {
		return err
	}

	if _, err := orch.Start(context.Background()); err != nil {
		return err
	}
	orch.Wait()

	snap := orch.Snapshot()
	printSummary(snap)

	if snap.State == domain.RunFailed {
		return fmt.Errorf("run failed: %v", snap.Errors)
	}
	return nil
}

func printSummary(snap domain.RunSnapshot) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tARTICLES\tELAPSED\tERROR")
	for _, res := range snap.Sources {
		errMsg := res.Err
		if errMsg == "" {
			errMsg = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", res.Source, res.Count, res.Elapsed.Round(10*time.Millisecond), errMsg)
	}
	w.Flush()

	fmt.Printf("\n%d articles within the last %.0f hours", snap.TotalArticles, snap.WindowHours)
	if snap.ReportPath != "" {
		fmt.Printf(", report written to %s", snap.ReportPath)
	}
	fmt.Println()
}

func loadCatalog(path string) ([]collectors.Source, error) {
	if path == "" {
		return collectors.DefaultCatalog(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return collectors.DefaultCatalog(), nil
	}
	return collectors.LoadCatalog(path)
}
