package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"go-careers-scraper/internal/app"
	"go-careers-scraper/internal/config"
	"go-careers-scraper/internal/logger"
	"go-careers-scraper/internal/models"
)

type flags struct {
	configPath string
	careersURL string
	companyID  string
	apiBaseURL string
	timeout    time.Duration
	retries    int
	debug      bool
	notify     bool
	saveDir    string
}

func main() {
	if err := newRootCmd(&flags{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "scraper",
		Short:        "Fetch and normalize job postings from a company careers page",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", config.DefaultPath, "path to the YAML config file")
	fl.StringVar(&f.careersURL, "url", "", "careers page URL")
	fl.StringVar(&f.companyID, "company", "", "company identifier")
	fl.StringVar(&f.apiBaseURL, "api-base", "", "base URL of a jobs API")
	fl.DurationVar(&f.timeout, "timeout", 0, "navigation timeout (e.g. 30s)")
	fl.IntVar(&f.retries, "retries", 0, "browser attempts")
	fl.BoolVar(&f.debug, "debug", false, "forward page console output and save a screenshot")
	fl.BoolVar(&f.notify, "notify", false, "deliver the result to the configured webhook and telegram chat")
	fl.StringVar(&f.saveDir, "save-dir", "", "also write the result to <dir>/jobs-<company>-<date>.json")
	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, f *flags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, f)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := app.New(cfg, log, app.Options{Notify: f.notify})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := a.Runner.Run(ctx, cfg.Target)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if f.saveDir != "" {
		if path, err := saveResult(f.saveDir, cfg.Target.CompanyID, result); err != nil {
			log.Warn("Failed to save result", logger.Error(err))
		} else {
			log.Info("Result saved", logger.String("path", path))
		}
	}

	if !result.Success {
		return fmt.Errorf("fetch failed: %s", result.Error)
	}
	return nil
}

// applyFlags overrides config values with the flags the user actually set.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f *flags) {
	fl := cmd.Flags()
	if fl.Changed("url") {
		cfg.Target.CareersURL = f.careersURL
	}
	if fl.Changed("company") {
		cfg.Target.CompanyID = f.companyID
	}
	if fl.Changed("api-base") {
		cfg.Target.APIBaseURL = f.apiBaseURL
	}
	if fl.Changed("timeout") && f.timeout > 0 {
		cfg.Target.Timeout = f.timeout
	}
	if fl.Changed("retries") && f.retries > 0 {
		cfg.Target.Retries = f.retries
	}
	if fl.Changed("debug") {
		cfg.Browser.Debug = f.debug
	}
}

func saveResult(dir, companyID string, result models.FetchResult) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if companyID == "" {
		companyID = "unknown"
	}
	name := fmt.Sprintf("jobs-%s-%s.json", filepath.Base(companyID), result.FetchedAt.Format("2006-01-02"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
