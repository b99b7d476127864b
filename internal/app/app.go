// Package app assembles the fetch pipeline from configuration.
package app

import (
	"github.com/prometheus/client_golang/prometheus"

	"go-careers-scraper/internal/browser"
	"go-careers-scraper/internal/config"
	"go-careers-scraper/internal/dedup"
	"go-careers-scraper/internal/delivery"
	"go-careers-scraper/internal/extract"
	"go-careers-scraper/internal/logger"
	"go-careers-scraper/internal/normalize"
	"go-careers-scraper/internal/retry"
	"go-careers-scraper/internal/runner"
	"go-careers-scraper/internal/scraper"
	"go-careers-scraper/internal/strategy"
	"go-careers-scraper/internal/telegram"
	"go-careers-scraper/internal/telemetry"
	"go-careers-scraper/internal/transport"
	"go-careers-scraper/utils"
)

type App struct {
	Runner       *runner.Runner
	Orchestrator *strategy.Orchestrator
	Browser      *browser.Manager
}

// Options let callers replace collaborators, mostly for tests.
type Options struct {
	// Registerer receives the fetch metrics; nil disables metrics.
	Registerer prometheus.Registerer
	// StartDriver overrides how browsers are started.
	StartDriver func() (browser.Driver, error)
	Transport   transport.Transport
	// Notify enables the webhook and telegram notifiers configured in cfg.
	Notify bool
}

func New(cfg *config.Config, log logger.Logger, opts Options) (*App, error) {
	manager := browser.NewManager(log, browser.Options{
		Headless:     cfg.Browser.Headless,
		Args:         cfg.Browser.Args,
		UserAgent:    cfg.Browser.UserAgent,
		WaitUntil:    cfg.Browser.WaitUntil,
		WaitSelector: cfg.Browser.WaitSelector,
		SettleScroll: cfg.Browser.SettleScroll,
		Debug:        cfg.Browser.Debug,
		Reuse:        cfg.Browser.ReuseBrowser,
	}, opts.StartDriver)

	chain := extract.DefaultChain(log)

	var shots *utils.ScreenshotDebugger
	if cfg.Browser.Debug {
		shots = utils.NewScreenshotDebugger(cfg.Browser.ScreenshotDir, log)
	}
	policy := retry.Policy{
		Attempts:     cfg.Target.Retries,
		Exponential:  cfg.Retry.Backoff == "exponential",
		InitialDelay: cfg.Retry.InitialDelay,
		MaxDelay:     cfg.Retry.MaxDelay,
	}
	careers := scraper.NewCareersScraper(log, manager, chain, policy, shots)

	strategies, err := strategy.Build(cfg.Strategy.Order, strategy.Deps{Scraper: careers, Chain: chain})
	if err != nil {
		return nil, err
	}

	tr := opts.Transport
	if tr == nil {
		tr = transport.NewCollyTransport(transport.Options{
			UserAgent:         cfg.Browser.UserAgent,
			Timeout:           cfg.Target.Timeout,
			RequestsPerSecond: cfg.Strategy.RequestsPerSecond,
		})
	}

	var rec telemetry.Recorder
	if opts.Registerer != nil {
		rec = telemetry.NewPrometheus(opts.Registerer)
	}

	orchestrator := strategy.NewOrchestrator(log, tr, normalize.New(log), rec, strategies...)

	var notifiers []runner.Notifier
	if opts.Notify {
		notifiers = buildNotifiers(cfg, log)
	}

	return &App{
		Runner:       runner.New(log, orchestrator, notifiers...),
		Orchestrator: orchestrator,
		Browser:      manager,
	}, nil
}

func buildNotifiers(cfg *config.Config, log logger.Logger) []runner.Notifier {
	var out []runner.Notifier
	if cfg.Webhook.URL != "" {
		out = append(out, runner.WebhookNotifier{Webhook: delivery.NewWebhook(cfg.Webhook.URL, cfg.Webhook.Secret, log)})
	}
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		bot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			log.Warn("Telegram disabled, could not init bot", logger.Error(err))
		} else {
			out = append(out, runner.TelegramNotifier{Bot: bot, Seen: dedup.NewJobSet(dedup.DefaultTTL)})
		}
	}
	return out
}

// Close shuts the browser down.
func (a *App) Close() {
	a.Browser.Shutdown()
}
