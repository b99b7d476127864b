package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"

	"go-careers-scraper/internal/logger"
	"go-careers-scraper/internal/models"
	"go-careers-scraper/internal/normalize"
	"go-careers-scraper/internal/telemetry"
	"go-careers-scraper/internal/transport"
)

const operationFetchJobs = "fetch_jobs"

// Orchestrator tries strategies in order until one succeeds.
type Orchestrator struct {
	strategies []Descriptor
	transport  transport.Transport
	normalizer *normalize.Normalizer
	telemetry  telemetry.Recorder
	log        logger.Logger
	now        func() time.Time
	newRunID   func() string
}

// NewOrchestrator wires the strategies in priority order. A nil recorder is
// replaced with telemetry.Nop.
func NewOrchestrator(
	log logger.Logger,
	tr transport.Transport,
	normalizer *normalize.Normalizer,
	rec telemetry.Recorder,
	strategies ...Descriptor,
) *Orchestrator {
	return &Orchestrator{
		strategies: strategies,
		transport:  tr,
		normalizer: normalizer,
		telemetry:  telemetry.OrNop(rec),
		log:        log,
		now:        time.Now,
		newRunID:   uuid.NewString,
	}
}

// Fetch runs one invocation. It never returns an error: failures are reported
// in the result with Success set to false.
func (o *Orchestrator) Fetch(ctx context.Context, input models.ScrapeInput) (result models.FetchResult) {
	start := o.now()
	runID := o.newRunID()
	log := o.log.With(logger.String("run_id", runID), logger.String("company_id", input.CompanyID))

	ctx, span := o.telemetry.StartSpan(ctx, "careers.fetch_jobs", map[string]any{
		"run.id":      runID,
		"company.id":  input.CompanyID,
		"careers.url": input.CareersURL,
	})

	// cleanup runs on every exit path
	defer func() {
		status := "success"
		if !result.Success {
			status = "failure"
			span.SetStatus(codes.Error, result.Error)
		}
		o.telemetry.SetSpanAttributes(span, map[string]any{
			"fetch.method":               result.Method,
			"fetch.success":              result.Success,
			"fetch.jobs":                 result.TotalCount,
			"fetch.strategies_attempted": result.StrategiesAttempted,
		})
		o.telemetry.RecordMetrics(runID, operationFetchJobs, status, o.now().Sub(start), map[string]any{
			"method": result.Method,
			"jobs":   result.TotalCount,
		})
		span.End()
	}()

	attempted := 0
	var (
		lastErr error
		failed  []string
	)
	for _, s := range o.strategies {
		if !s.CanHandle(input) {
			log.Debug("Strategy not applicable, skipping", logger.String("strategy", s.Name()))
			continue
		}
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		attempted++
		log.Info("Trying fetch strategy", logger.String("strategy", s.Name()), logger.Int("attempt", attempted))
		batch, err := s.FetchJobs(ctx, input, o.transport)
		if err != nil {
			lastErr = err
			failed = append(failed, s.Name())
			log.Warn("Fetch strategy failed",
				logger.String("strategy", s.Name()),
				logger.Error(err),
			)
			o.telemetry.SetSpanAttributes(span, map[string]any{
				"strategy.failed":     failed,
				"strategy.last_error": err,
			})
			continue
		}
		if batch == nil {
			batch = &Batch{}
		}
		return o.success(runID, s.Name(), batch, attempted, log)
	}

	return o.failure(runID, attempted, lastErr, log)
}

func (o *Orchestrator) success(runID, method string, batch *Batch, attempted int, log logger.Logger) models.FetchResult {
	jobs := o.normalizer.NormalizeJobs(batch.Jobs, method, batch.BaseURL)

	result := models.FetchResult{
		RunID:               runID,
		Jobs:                jobs,
		Method:              method,
		Success:             true,
		FetchedAt:           o.now().UTC(),
		TotalCount:          len(jobs),
		URL:                 batch.URL,
		ScrapedAt:           batch.ScrapedAt,
		ScreenshotPath:      batch.ScreenshotPath,
		Attempts:            batch.Attempts,
		StrategiesAttempted: attempted,
		Extractor:           batch.Extractor,
	}
	if batch.NoJobsPhrase != "" {
		result.Message = fmt.Sprintf("careers page reports no openings (%q)", batch.NoJobsPhrase)
	}

	log.Info("Jobs fetched",
		logger.String("method", method),
		logger.Int("raw", len(batch.Jobs)),
		logger.Int("jobs", len(jobs)),
	)
	return result
}

func (o *Orchestrator) failure(runID string, attempted int, lastErr error, log logger.Logger) models.FetchResult {
	result := models.FetchResult{
		RunID:               runID,
		Jobs:                []models.NormalizedJob{},
		Success:             false,
		FetchedAt:           o.now().UTC(),
		StrategiesAttempted: attempted,
		Message:             fmt.Sprintf("all %d attempted strategies failed", attempted),
	}

	switch {
	case attempted == 0 && lastErr == nil:
		result.Error = models.ErrNoStrategy.Error()
		result.Message = "no strategy could handle the input"
	case lastErr != nil:
		result.Error = fmt.Errorf("%w: %w", models.ErrAllStrategiesFailed, lastErr).Error()
	default:
		result.Error = models.ErrAllStrategiesFailed.Error()
	}

	log.Error("Fetch failed",
		logger.Int("strategies_attempted", attempted),
		logger.String("error", result.Error),
	)
	return result
}
