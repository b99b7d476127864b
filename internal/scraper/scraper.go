// Package scraper drives a real browser against a careers page: navigation,
// extraction and teardown as one retryable unit.
package scraper

import (
	"context"
	"time"

	"go-careers-scraper/internal/models"
)

// Result is what one successful scrape found, before normalization.
type Result struct {
	Jobs []models.RawJobData
	// BaseURL is what relative links on the page resolve against.
	BaseURL        string
	URL            string
	ScrapedAt      time.Time
	ScreenshotPath string
	Attempts       int
	Extractor      string
	NoJobsPhrase   string
}

// Scraper defines the interface the browser strategy depends on.
type Scraper interface {
	Scrape(ctx context.Context, input models.ScrapeInput) (*Result, error)

	Name() string
}
