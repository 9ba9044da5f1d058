package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"faculty-sync/internal/config"
	"faculty-sync/internal/httpx"
	"faculty-sync/internal/logging"
	"faculty-sync/internal/providers/drupal"
	"faculty-sync/internal/providers/faculty180"
	"faculty-sync/internal/sync"
)

func main() {
	cfg := config.Load()

	log, err := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		Environment: cfg.AppEnv,
		File:        cfg.LogFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("configuration invalid", zap.Error(err))
	}

	retry := httpx.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		Delay:       cfg.RetryDelay,
	}

	target, err := drupal.New(cfg, log)
	if err != nil {
		log.Fatal("drupal client setup failed", zap.Error(err))
	}

	runner := &sync.Runner{
		Cfg: cfg,
		Source: faculty180.Provider{
			C: faculty180.New(cfg.FacultyAPIURL, cfg.FacultyAPIToken, cfg.HTTPTimeout, retry),
		},
		Target: target,
		Log:    log,
	}

	report, err := runner.Run(context.Background())
	if err != nil {
		log.Fatal("sync aborted", zap.Error(err))
	}

	// Per-record failures are reported but do not fail the process.
	fmt.Printf("Sync finished: %s nodes created\n", report)
}
