package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-careers-scraper/internal/browser"
	"go-careers-scraper/internal/browser/browsertest"
	"go-careers-scraper/internal/extract"
	"go-careers-scraper/internal/logger"
	"go-careers-scraper/internal/models"
	"go-careers-scraper/internal/retry"
	"go-careers-scraper/utils"
)

const careersURL = "https://careers.acme.example/"

const jsonLDPage = `<html><body>
<h1>Join us</h1>
<script type="application/ld+json">{"@type":"JobPosting","title":"Software Engineer","identifier":"job-123"}</script>
</body></html>`

func staticContent(t *testing.T, html string) extract.Page {
	t.Helper()
	page, err := extract.NewStaticPage(careersURL, []byte(html))
	require.NoError(t, err)
	return page
}

func newScraper(d *browsertest.Driver, shots *utils.ScreenshotDebugger) *CareersScraper {
	log := logger.NewNop()
	m := browser.NewManager(log, browser.Options{}, d.Start)
	return NewCareersScraper(log, m, extract.DefaultChain(log), retry.Policy{}, shots)
}

func assertAllClosedOnce(t *testing.T, d *browsertest.Driver) {
	t.Helper()
	for i, p := range d.Pages {
		assert.Equal(t, 1, p.Closed, "page %d", i)
	}
	for i, c := range d.Contexts {
		assert.Equal(t, 1, c.Closed, "context %d", i)
	}
	for i, b := range d.Browsers {
		assert.Equal(t, 1, b.Closed, "browser %d", i)
	}
}

func TestCareersScraper_JSONLDPage(t *testing.T) {
	d := &browsertest.Driver{Content: staticContent(t, jsonLDPage)}
	s := newScraper(d, nil)

	res, err := s.Scrape(context.Background(), models.ScrapeInput{CareersURL: careersURL, CompanyID: "acme"})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, "json-ld", res.Extractor)
	assert.Equal(t, careersURL, res.URL)
	assert.Equal(t, careersURL, res.BaseURL)
	assert.False(t, res.ScrapedAt.IsZero())
	assert.Empty(t, res.ScreenshotPath)
	require.Len(t, res.Jobs, 1)
	assert.Equal(t, "job-123", res.Jobs[0]["id"])

	require.Len(t, d.Pages, 1)
	assertAllClosedOnce(t, d)
}

func TestCareersScraper_RetriesNavigationFailures(t *testing.T) {
	navErr := errors.New("net::ERR_CONNECTION_RESET")
	d := &browsertest.Driver{
		Content:  staticContent(t, jsonLDPage),
		GotoErrs: []error{navErr, navErr},
	}
	s := newScraper(d, nil)

	res, err := s.Scrape(context.Background(), models.ScrapeInput{CareersURL: careersURL, Retries: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, d.GotoCalls())
	assert.Len(t, d.Pages, 3)
	assertAllClosedOnce(t, d)
}

func TestCareersScraper_SingleAttemptFailureCleansUp(t *testing.T) {
	navErr := errors.New("Timeout 30000ms exceeded.")
	d := &browsertest.Driver{GotoErrs: []error{navErr}}
	s := newScraper(d, nil)

	res, err := s.Scrape(context.Background(), models.ScrapeInput{CareersURL: careersURL, Retries: 1})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, navErr.Error(), err.Error())

	require.Len(t, d.Pages, 1)
	require.Len(t, d.Contexts, 1)
	require.Len(t, d.Browsers, 1)
	assertAllClosedOnce(t, d)
}

func TestCareersScraper_ContextFailureKeepsMessage(t *testing.T) {
	d := &browsertest.Driver{ContextErr: errors.New("Browser has been closed")}
	s := newScraper(d, nil)

	_, err := s.Scrape(context.Background(), models.ScrapeInput{CareersURL: careersURL, Retries: 2})
	require.Error(t, err)
	assert.Equal(t, "Browser has been closed", err.Error())
	assert.Empty(t, d.Pages)
	for _, b := range d.Browsers {
		assert.Equal(t, 1, b.Closed)
	}
}

func TestCareersScraper_ExhaustionReturnsLastError(t *testing.T) {
	d := &browsertest.Driver{GotoErrs: []error{
		errors.New("first"), errors.New("second"), errors.New("third"),
	}}
	s := newScraper(d, nil)

	_, err := s.Scrape(context.Background(), models.ScrapeInput{CareersURL: careersURL})
	require.Error(t, err)
	assert.Equal(t, "third", err.Error())
	assert.Equal(t, 3, d.GotoCalls())
	assertAllClosedOnce(t, d)
}

func TestCareersScraper_EvaluationFailureIsRetried(t *testing.T) {
	// no content: every page evaluation fails
	d := &browsertest.Driver{}
	s := newScraper(d, nil)

	_, err := s.Scrape(context.Background(), models.ScrapeInput{CareersURL: careersURL, Retries: 2})
	require.Error(t, err)
	assert.Len(t, d.Pages, 2)
	assertAllClosedOnce(t, d)
}

func TestCareersScraper_NoJobsIndicator(t *testing.T) {
	d := &browsertest.Driver{Content: staticContent(t, `<html><body><p>There are no current openings.</p></body></html>`)}
	s := newScraper(d, nil)

	res, err := s.Scrape(context.Background(), models.ScrapeInput{CareersURL: careersURL})
	require.NoError(t, err)
	assert.Empty(t, res.Jobs)
	assert.Equal(t, "no current openings", res.NoJobsPhrase)
	assert.Equal(t, 1, res.Attempts)
}

func TestCareersScraper_DebugScreenshot(t *testing.T) {
	dir := t.TempDir()
	d := &browsertest.Driver{Content: staticContent(t, jsonLDPage)}
	s := newScraper(d, utils.NewScreenshotDebugger(dir, logger.NewNop()))

	res, err := s.Scrape(context.Background(), models.ScrapeInput{CareersURL: careersURL, CompanyID: "acme"})
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(res.ScreenshotPath))
	assert.Regexp(t, `scrape-debug-acme-\d+\.png$`, res.ScreenshotPath)
}

func TestCareersScraper_RequiresCareersURL(t *testing.T) {
	d := &browsertest.Driver{}
	s := newScraper(d, nil)

	_, err := s.Scrape(context.Background(), models.ScrapeInput{CompanyID: "acme"})
	assert.ErrorIs(t, err, models.ErrNoCareersURL)
	assert.Zero(t, d.Launches)
}

func TestCareersScraper_CancelledContext(t *testing.T) {
	d := &browsertest.Driver{GotoErrs: []error{errors.New("boom")}}
	s := newScraper(d, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Scrape(ctx, models.ScrapeInput{CareersURL: careersURL})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, d.GotoCalls())
}

// integration test: real chromium against a local server
func TestCareersScraper_Playwright(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser integration test in short mode")
	}
	driver, err := browser.StartPlaywright()
	if err != nil {
		t.Skipf("playwright unavailable: %v", err)
	}
	_ = driver.Stop()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><div id="app"></div><script>
			document.getElementById("app").innerHTML =
				'<div class="job-card"><a href="/jobs/1"><h3>Frontend Developer</h3></a><span class="location">Remote</span></div>';
		</script></body></html>`)
	}))
	defer srv.Close()

	log := logger.NewNop()
	m := browser.NewManager(log, browser.Options{Headless: true}, nil)
	s := NewCareersScraper(log, m, extract.DefaultChain(log), retry.Policy{Attempts: 1}, nil)

	res, err := s.Scrape(context.Background(), models.ScrapeInput{CareersURL: srv.URL, Timeout: 15 * time.Second})
	if err != nil {
		t.Skipf("browser launch failed: %v", err)
	}
	assert.Equal(t, "structured-dom", res.Extractor)
	require.Len(t, res.Jobs, 1)
	assert.Equal(t, "Frontend Developer", res.Jobs[0]["title"])
	assert.Equal(t, srv.URL+"/jobs/1", res.Jobs[0]["apply_url"])
}
