// Package strategy picks how jobs are fetched for a target and turns the first
// successful fetch into a FetchResult.
package strategy

import (
	"context"
	"time"

	"go-careers-scraper/internal/models"
	"go-careers-scraper/internal/transport"
)

// Batch is the raw output of one strategy.
type Batch struct {
	Jobs []models.RawJobData
	// BaseURL resolves relative apply links during normalization.
	BaseURL string

	// Set by the browser strategy only.
	URL            string
	ScrapedAt      time.Time
	ScreenshotPath string
	Attempts       int

	Extractor    string
	NoJobsPhrase string
}

// Descriptor is one way of fetching jobs.
type Descriptor interface {
	Name() string
	// CanHandle reports whether the input carries what this strategy needs.
	// A false answer is not a failure.
	CanHandle(input models.ScrapeInput) bool
	FetchJobs(ctx context.Context, input models.ScrapeInput, tr transport.Transport) (*Batch, error)
}
