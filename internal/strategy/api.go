package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go-careers-scraper/internal/models"
	"go-careers-scraper/internal/transport"
)

// API reads jobs from a JSON endpoint at <apiBaseUrl>/companies/<companyId>/jobs.
type API struct{}

func NewAPI() *API {
	return &API{}
}

func (a *API) Name() string {
	return "api"
}

func (a *API) CanHandle(input models.ScrapeInput) bool {
	return input.APIBaseURL != "" && input.CompanyID != ""
}

func (a *API) FetchJobs(ctx context.Context, input models.ScrapeInput, tr transport.Transport) (*Batch, error) {
	endpoint := JobsEndpoint(input.APIBaseURL, input.CompanyID)
	resp, err := tr.Get(ctx, endpoint, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("jobs api returned status %d", resp.Status)
	}

	jobs, err := decodeJobs(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("decode jobs api response: %w", err)
	}
	return &Batch{Jobs: jobs, BaseURL: input.APIBaseURL, Extractor: "api"}, nil
}

// JobsEndpoint builds the jobs URL for a company.
func JobsEndpoint(baseURL, companyID string) string {
	return strings.TrimRight(baseURL, "/") + "/companies/" + url.PathEscape(companyID) + "/jobs"
}

// decodeJobs accepts a bare array or an object wrapping it in jobs, data or results.
func decodeJobs(data []byte) ([]models.RawJobData, error) {
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}

	var items []any
	switch t := payload.(type) {
	case []any:
		items = t
	case map[string]any:
		for _, key := range []string{"jobs", "data", "results"} {
			if list, ok := t[key].([]any); ok {
				items = list
				break
			}
		}
		if items == nil {
			return nil, fmt.Errorf("no jobs array in response object")
		}
	default:
		return nil, fmt.Errorf("unexpected response type %T", payload)
	}

	jobs := make([]models.RawJobData, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			jobs = append(jobs, models.RawJobData(m))
		}
	}
	return jobs, nil
}
