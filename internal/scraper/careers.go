package scraper

import (
	"context"
	"time"

	"go-careers-scraper/internal/browser"
	"go-careers-scraper/internal/extract"
	"go-careers-scraper/internal/logger"
	"go-careers-scraper/internal/models"
	"go-careers-scraper/internal/retry"
	"go-careers-scraper/utils"
)

const defaultTimeout = 30 * time.Second

// CareersScraper scrapes one careers page with a headless browser.
type CareersScraper struct {
	manager *browser.Manager
	chain   *extract.Chain
	// shots is nil unless debug screenshots are enabled.
	shots  *utils.ScreenshotDebugger
	policy retry.Policy
	log    logger.Logger
	now    func() time.Time
}

func NewCareersScraper(
	log logger.Logger,
	manager *browser.Manager,
	chain *extract.Chain,
	policy retry.Policy,
	shots *utils.ScreenshotDebugger,
) *CareersScraper {
	return &CareersScraper{
		manager: manager,
		chain:   chain,
		shots:   shots,
		policy:  policy,
		log:     log,
		now:     time.Now,
	}
}

func (s *CareersScraper) Name() string {
	return "browser"
}

// Scrape retries the whole launch/navigate/extract unit up to input.Retries
// times. On exhaustion the last attempt's error is returned unchanged.
func (s *CareersScraper) Scrape(ctx context.Context, input models.ScrapeInput) (*Result, error) {
	if input.CareersURL == "" {
		return nil, models.ErrNoCareersURL
	}

	log := s.log.With(logger.String("url", input.CareersURL), logger.String("company_id", input.CompanyID))

	policy := s.policy
	if input.Retries > 0 {
		policy.Attempts = input.Retries
	}
	policy.OnRetry = func(attempt int, err error) {
		log.Warn("Scrape attempt failed, retrying",
			logger.Int("attempt", attempt),
			logger.Int("max_attempts", policy.Attempts),
			logger.Error(err),
		)
	}

	var result *Result
	attempts, err := retry.Do(ctx, policy, func(attempt int) error {
		log.Debug("Scrape attempt", logger.Int("attempt", attempt))
		r, err := s.attempt(ctx, input, log)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		log.Error("Scrape failed", logger.Int("attempts", attempts), logger.Error(err))
		return nil, err
	}

	result.Attempts = attempts
	log.Info("Scrape finished",
		logger.Int("attempts", attempts),
		logger.Int("jobs", len(result.Jobs)),
		logger.String("extractor", result.Extractor),
	)
	return result, nil
}

// attempt owns every browser resource it opens and releases them on all paths.
func (s *CareersScraper) attempt(ctx context.Context, input models.ScrapeInput, log logger.Logger) (*Result, error) {
	timeout := input.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if err := s.manager.Launch(); err != nil {
		return nil, err
	}
	defer s.manager.Release()

	session, err := s.manager.OpenPage()
	if err != nil {
		return nil, err
	}
	defer session.Close()

	if err := s.manager.Navigate(ctx, session, input.CareersURL, timeout); err != nil {
		return nil, err
	}

	page := session.Page()
	outcome, err := s.chain.Run(ctx, page)

	result := &Result{URL: page.URL(), ScrapedAt: s.now().UTC()}
	if s.shots != nil {
		result.ScreenshotPath = s.shots.Capture(page, input.CompanyID)
	}
	if err != nil {
		return nil, err
	}

	if result.URL == "" {
		result.URL = input.CareersURL
	}
	result.Jobs = outcome.Jobs
	result.BaseURL = outcome.BaseURL
	result.Extractor = outcome.Extractor
	result.NoJobsPhrase = outcome.NoJobsPhrase
	if outcome.NoJobsPhrase != "" {
		log.Info("No openings listed", logger.String("indicator", outcome.NoJobsPhrase))
	}
	return result, nil
}
