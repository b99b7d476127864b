package strategy

import (
	"context"

	"go-careers-scraper/internal/models"
	"go-careers-scraper/internal/scraper"
	"go-careers-scraper/internal/transport"
)

// Browser renders the careers page in headless Chromium.
type Browser struct {
	scraper scraper.Scraper
}

func NewBrowser(s scraper.Scraper) *Browser {
	return &Browser{scraper: s}
}

func (b *Browser) Name() string {
	return "browser"
}

func (b *Browser) CanHandle(input models.ScrapeInput) bool {
	return input.CareersURL != ""
}

func (b *Browser) FetchJobs(ctx context.Context, input models.ScrapeInput, _ transport.Transport) (*Batch, error) {
	res, err := b.scraper.Scrape(ctx, input)
	if err != nil {
		return nil, err
	}
	return &Batch{
		Jobs:           res.Jobs,
		BaseURL:        res.BaseURL,
		URL:            res.URL,
		ScrapedAt:      res.ScrapedAt,
		ScreenshotPath: res.ScreenshotPath,
		Attempts:       res.Attempts,
		Extractor:      res.Extractor,
		NoJobsPhrase:   res.NoJobsPhrase,
	}, nil
}
