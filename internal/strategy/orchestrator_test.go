package strategy

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"go-careers-scraper/internal/logger"
	"go-careers-scraper/internal/models"
	"go-careers-scraper/internal/normalize"
	"go-careers-scraper/internal/telemetry"
	"go-careers-scraper/internal/transport"
)

type fakeStrategy struct {
	name      string
	canHandle bool
	batch     *Batch
	err       error
	calls     int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) CanHandle(models.ScrapeInput) bool { return f.canHandle }

func (f *fakeStrategy) FetchJobs(context.Context, models.ScrapeInput, transport.Transport) (*Batch, error) {
	f.calls++
	return f.batch, f.err
}

type recordingTelemetry struct {
	telemetry.Nop
	attrs   []map[string]any
	metrics []string
}

func (r *recordingTelemetry) SetSpanAttributes(_ trace.Span, attrs map[string]any) {
	r.attrs = append(r.attrs, attrs)
}

func (r *recordingTelemetry) RecordMetrics(_ string, operation, status string, _ time.Duration, _ map[string]any) {
	r.metrics = append(r.metrics, operation+":"+status)
}

func newOrchestrator(rec telemetry.Recorder, strategies ...Descriptor) *Orchestrator {
	log := logger.NewNop()
	return NewOrchestrator(log, nil, normalize.New(log), rec, strategies...)
}

var input = models.ScrapeInput{CareersURL: "https://acme.example/careers", CompanyID: "acme"}

func TestFetch_SkipsStrategiesThatCannotHandle(t *testing.T) {
	skipped := &fakeStrategy{name: "api", canHandle: false}
	ok := &fakeStrategy{name: "browser", canHandle: true, batch: &Batch{Jobs: []models.RawJobData{{"title": "Engineer"}}}}

	res := newOrchestrator(nil, skipped, ok).Fetch(context.Background(), input)

	require.True(t, res.Success)
	assert.Zero(t, skipped.calls)
	assert.Equal(t, 1, res.StrategiesAttempted)
	assert.Equal(t, "browser", res.Method)
}

func TestFetch_StopsAtFirstSuccessEvenWhenEmpty(t *testing.T) {
	first := &fakeStrategy{name: "browser", canHandle: true, batch: &Batch{}}
	second := &fakeStrategy{name: "static", canHandle: true, batch: &Batch{Jobs: []models.RawJobData{{"title": "Never"}}}}

	res := newOrchestrator(nil, first, second).Fetch(context.Background(), input)

	require.True(t, res.Success)
	assert.Empty(t, res.Jobs)
	assert.NotNil(t, res.Jobs)
	assert.Zero(t, res.TotalCount)
	assert.Zero(t, second.calls)
}

func TestFetch_ContinuesAfterFailure(t *testing.T) {
	rec := &recordingTelemetry{}
	failing := &fakeStrategy{name: "browser", canHandle: true, err: errors.New("navigation timeout")}
	ok := &fakeStrategy{name: "static", canHandle: true, batch: &Batch{
		BaseURL:   "https://acme.example/careers/",
		Extractor: "structured-dom",
		Jobs: []models.RawJobData{
			{"title": "Engineer", "apply_url": "/jobs/1"},
			{"title": "Engineer", "apply_url": "https://acme.example/jobs/1"},
			{"title": ""},
		},
	}}

	res := newOrchestrator(rec, failing, ok).Fetch(context.Background(), input)

	require.True(t, res.Success)
	assert.Equal(t, "static", res.Method)
	assert.Equal(t, 2, res.StrategiesAttempted)
	assert.Equal(t, "structured-dom", res.Extractor)
	require.Len(t, res.Jobs, 2)
	assert.Equal(t, 2, res.TotalCount)
	assert.Equal(t, "https://acme.example/jobs/1", res.Jobs[0].ApplyURL)
	assert.Equal(t, "https://acme.example/jobs/1", res.Jobs[1].ApplyURL)
	assert.NotEqual(t, res.Jobs[0].ID, res.Jobs[1].ID)
	assert.Equal(t, "static", res.Jobs[0].Source)
	assert.NotEmpty(t, res.RunID)

	require.NotEmpty(t, rec.attrs)
	assert.Equal(t, []string{"browser"}, rec.attrs[0]["strategy.failed"])
	assert.Equal(t, []string{"fetch_jobs:success"}, rec.metrics)
}

func TestFetch_KeepsEveryValidRecord(t *testing.T) {
	ok := &fakeStrategy{name: "api", canHandle: true, batch: &Batch{Jobs: []models.RawJobData{
		{"id": "req-1", "title": "Software Engineer", "location": "Remote"},
		{"id": "req-2", "title": "Software Engineer", "location": "Remote"},
		{"title": "Software Engineer", "location": "Remote"},
	}}}

	res := newOrchestrator(nil, ok).Fetch(context.Background(), input)

	require.True(t, res.Success)
	require.Len(t, res.Jobs, 3)
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, "req-1", res.Jobs[0].ID)
	assert.Equal(t, "req-2", res.Jobs[1].ID)
	assert.Equal(t, "software-engineer-3", res.Jobs[2].ID)
}

func TestFetch_AllStrategiesFail(t *testing.T) {
	rec := &recordingTelemetry{}
	a := &fakeStrategy{name: "browser", canHandle: true, err: errors.New("first")}
	b := &fakeStrategy{name: "static", canHandle: true, err: errors.New("second")}
	c := &fakeStrategy{name: "api", canHandle: false}

	res := newOrchestrator(rec, a, b, c).Fetch(context.Background(), input)

	assert.False(t, res.Success)
	assert.Equal(t, 2, res.StrategiesAttempted)
	assert.Contains(t, res.Message, "2")
	assert.True(t, strings.HasPrefix(res.Error, models.ErrAllStrategiesFailed.Error()))
	assert.Contains(t, res.Error, "second")
	assert.Empty(t, res.Jobs)
	assert.Equal(t, []string{"fetch_jobs:failure"}, rec.metrics)
}

func TestFetch_NoApplicableStrategy(t *testing.T) {
	res := newOrchestrator(nil, &fakeStrategy{name: "api"}).Fetch(context.Background(), models.ScrapeInput{})

	assert.False(t, res.Success)
	assert.Zero(t, res.StrategiesAttempted)
	assert.Equal(t, models.ErrNoStrategy.Error(), res.Error)
}

func TestFetch_SameOutcomeWithAndWithoutTelemetry(t *testing.T) {
	build := func() []Descriptor {
		return []Descriptor{
			&fakeStrategy{name: "browser", canHandle: true, err: errors.New("boom")},
			&fakeStrategy{name: "static", canHandle: true, batch: &Batch{Jobs: []models.RawJobData{{"id": "7", "title": "Analyst"}}}},
		}
	}

	withNil := newOrchestrator(nil, build()...).Fetch(context.Background(), input)
	withRec := newOrchestrator(&recordingTelemetry{}, build()...).Fetch(context.Background(), input)

	assert.Equal(t, withNil.Success, withRec.Success)
	assert.Equal(t, withNil.Method, withRec.Method)
	assert.Equal(t, withNil.StrategiesAttempted, withRec.StrategiesAttempted)
	require.Len(t, withRec.Jobs, 1)
	assert.Equal(t, withNil.Jobs[0].ID, withRec.Jobs[0].ID)
}

func TestFetch_NoJobsMessage(t *testing.T) {
	s := &fakeStrategy{name: "browser", canHandle: true, batch: &Batch{NoJobsPhrase: "no positions available"}}

	res := newOrchestrator(nil, s).Fetch(context.Background(), input)
	require.True(t, res.Success)
	assert.Contains(t, res.Message, "no positions available")
}

func TestFetch_CancelledContextStopsBeforeAttempting(t *testing.T) {
	s := &fakeStrategy{name: "browser", canHandle: true, batch: &Batch{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newOrchestrator(nil, s).Fetch(ctx, input)
	assert.False(t, res.Success)
	assert.Zero(t, s.calls)
	assert.Contains(t, res.Error, context.Canceled.Error())
}

func TestBuild(t *testing.T) {
	list, err := Build([]string{"api"}, Deps{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "api", list[0].Name())

	_, err = Build([]string{"browser"}, Deps{})
	assert.Error(t, err)

	_, err = Build([]string{"ftp"}, Deps{})
	assert.Error(t, err)
}
