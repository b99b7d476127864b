package extract

import (
	"context"
	"net/url"
	"strings"

	"go-careers-scraper/internal/logger"
	"go-careers-scraper/internal/models"
)

// DefaultListingSelectors is the priority list of job card selectors.
var DefaultListingSelectors = []string{
	".job-listing",
	".job-item",
	".career-listing",
	".job-card",
	".job-post",
	".opening",
	".position",
	"[data-job-id]",
	"li.job",
}

var (
	titleSelectors      = []string{".job-title", ".title", "[data-job-title]", "h2", "h3", "h4", "a"}
	locationSelectors   = []string{".job-location", ".location", "[data-location]", ".office"}
	departmentSelectors = []string{".job-department", ".department", "[data-department]", ".team", ".category"}
	linkSelectors       = []string{"a[href]"}
)

type domQuery struct {
	Selectors  []string `json:"selectors"`
	Title      []string `json:"title"`
	Location   []string `json:"location"`
	Department []string `json:"department"`
	Link       []string `json:"link"`
}

type domResult struct {
	Selector string    `json:"selector"`
	Items    []domItem `json:"items"`
}

type domItem struct {
	Title      string `json:"title"`
	Location   string `json:"location"`
	Department string `json:"department"`
	Href       string `json:"href"`
}

// DOMExtractor reads job cards using the first listing selector that matches.
type DOMExtractor struct {
	Selectors []string
	log       logger.Logger
}

func NewDOMExtractor(log logger.Logger, selectors ...string) *DOMExtractor {
	if len(selectors) == 0 {
		selectors = DefaultListingSelectors
	}
	return &DOMExtractor{Selectors: selectors, log: log}
}

func (e *DOMExtractor) Name() string {
	return "structured-dom"
}

func (e *DOMExtractor) TryExtract(ctx context.Context, page Page) ([]models.RawJobData, error) {
	query := map[string]any{
		"selectors":  e.Selectors,
		"title":      titleSelectors,
		"location":   locationSelectors,
		"department": departmentSelectors,
		"link":       linkSelectors,
	}

	var result domResult
	if err := evaluateInto(page, domScript, &result, query); err != nil {
		return nil, &models.ExtractionError{Extractor: e.Name(), Err: err}
	}
	if result.Selector == "" {
		return nil, nil
	}

	base, err := BaseURL(page)
	if err != nil {
		e.log.Debug("Base URL unavailable, keeping links as found", logger.Error(err))
	}

	jobs := make([]models.RawJobData, 0, len(result.Items))
	for _, item := range result.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		raw := models.RawJobData{
			"title":      title,
			"location":   strings.TrimSpace(item.Location),
			"department": strings.TrimSpace(item.Department),
		}
		if item.Href != "" {
			raw["apply_url"] = ResolveURL(base, item.Href)
		}
		jobs = append(jobs, raw)
	}

	e.log.Debug("Structured DOM selector matched",
		logger.String("selector", result.Selector),
		logger.Int("elements", len(result.Items)),
		logger.Int("jobs", len(jobs)),
	)
	return jobs, nil
}

// ResolveURL makes href absolute against base. Unparseable input is returned unchanged.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() || base == "" {
		return ref.String()
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
