// Package runner executes fetches on demand or on a cron schedule and hands
// every result to the configured notifiers.
package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"go-careers-scraper/internal/logger"
	"go-careers-scraper/internal/models"
)

// Fetcher produces one FetchResult per invocation.
type Fetcher interface {
	Fetch(ctx context.Context, input models.ScrapeInput) models.FetchResult
}

// Notifier is told about every finished run.
type Notifier interface {
	Notify(ctx context.Context, input models.ScrapeInput, result models.FetchResult) error
}

type Runner struct {
	fetcher   Fetcher
	notifiers []Notifier
	log       logger.Logger
	cron      *cron.Cron

	mu   sync.RWMutex
	last map[string]models.FetchResult
}

func New(log logger.Logger, fetcher Fetcher, notifiers ...Notifier) *Runner {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	cl := cronLogger{log: log}
	return &Runner{
		fetcher:   fetcher,
		notifiers: notifiers,
		log:       log,
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		last: make(map[string]models.FetchResult),
	}
}

// Run fetches input and notifies. Notification failures are logged only.
func (r *Runner) Run(ctx context.Context, input models.ScrapeInput) models.FetchResult {
	result := r.fetcher.Fetch(ctx, input)

	r.mu.Lock()
	r.last[input.CompanyID] = result
	r.mu.Unlock()

	for _, n := range r.notifiers {
		if err := n.Notify(ctx, input, result); err != nil {
			r.log.Warn("Notification failed",
				logger.String("run_id", result.RunID),
				logger.String("notifier", fmt.Sprintf("%T", n)),
				logger.Error(err),
			)
		}
	}
	return result
}

// Last returns the most recent result for a company, if any run happened.
func (r *Runner) Last(companyID string) (models.FetchResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.last[companyID]
	return res, ok
}

// Schedule runs input on the cron expression spec. Overlapping runs are skipped.
func (r *Runner) Schedule(spec string, input models.ScrapeInput) error {
	_, err := r.cron.AddFunc(spec, func() {
		r.log.Info("Scheduled fetch starting", logger.String("company_id", input.CompanyID))
		r.Run(context.Background(), input)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	r.log.Info("Fetch scheduled", logger.String("schedule", spec), logger.String("company_id", input.CompanyID))
	return nil
}

func (r *Runner) Start() {
	r.cron.Start()
}

// Stop halts the scheduler and waits for running jobs or ctx, whichever ends first.
func (r *Runner) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

type cronLogger struct {
	log logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug("cron: "+msg, logger.Any("details", keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error("cron: "+msg, logger.Error(err), logger.Any("details", keysAndValues))
}
