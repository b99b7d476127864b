package extract

import (
	"context"
	"errors"

	"go-careers-scraper/internal/logger"
	"go-careers-scraper/internal/models"
)

// Extractor is one independently triable way of reading jobs off a page.
type Extractor interface {
	Name() string
	TryExtract(ctx context.Context, page Page) ([]models.RawJobData, error)
}

// Outcome describes what the chain found on a page.
type Outcome struct {
	Jobs []models.RawJobData
	// Extractor is the name of the extractor that produced Jobs, empty when none did.
	Extractor string
	// NoJobsPhrase is set when the page states it has no openings.
	NoJobsPhrase string
	BaseURL      string
}

// Chain runs extractors in a fixed order and stops at the first non-empty result.
type Chain struct {
	extractors []Extractor
	detector   *NoJobsDetector
	log        logger.Logger
}

// NewChain builds a chain over the given extractors. A nil detector disables the
// "no jobs" short-circuit.
func NewChain(log logger.Logger, detector *NoJobsDetector, extractors ...Extractor) *Chain {
	return &Chain{extractors: extractors, detector: detector, log: log}
}

// DefaultChain is structured DOM, then JSON-LD, then free text.
func DefaultChain(log logger.Logger) *Chain {
	return NewChain(log, NewNoJobsDetector(),
		NewDOMExtractor(log),
		NewJSONLDExtractor(log),
		NewTextExtractor(log),
	)
}

// Run extracts jobs from page. Extractor failures fall through to the next
// extractor; an error is returned only when every extractor failed, which
// usually means the page itself is unusable.
func (c *Chain) Run(ctx context.Context, page Page) (Outcome, error) {
	var out Outcome

	base, err := BaseURL(page)
	if err != nil {
		c.log.Debug("Could not read page base URL", logger.Error(err))
	}
	out.BaseURL = base

	if c.detector != nil {
		phrase, found, err := c.detector.Detect(page)
		switch {
		case err != nil:
			c.log.Debug("No-jobs indicator check failed", logger.Error(err))
		case found:
			c.log.Info("Careers page reports no openings", logger.String("indicator", phrase))
			out.NoJobsPhrase = phrase
			return out, nil
		}
	}

	var errs []error
	for _, ex := range c.extractors {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		jobs, err := ex.TryExtract(ctx, page)
		if err != nil {
			c.log.Warn("Extractor failed, trying next",
				logger.String("extractor", ex.Name()),
				logger.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		if len(jobs) == 0 {
			c.log.Debug("Extractor found nothing", logger.String("extractor", ex.Name()))
			continue
		}
		c.log.Info("Jobs extracted",
			logger.String("extractor", ex.Name()),
			logger.Int("count", len(jobs)),
		)
		out.Jobs = jobs
		out.Extractor = ex.Name()
		return out, nil
	}

	if len(c.extractors) > 0 && len(errs) == len(c.extractors) {
		return out, errors.Join(errs...)
	}
	c.log.Warn("No jobs found by any extractor", logger.Int("extractors", len(c.extractors)))
	return out, nil
}
