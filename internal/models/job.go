package models

import (
	"time"
)

// DefaultJobType is used when a posting carries no employment type.
const DefaultJobType = "Full-time"

// RawJobData is one job as found in markup or structured data, before interpretation.
// Any key may be absent.
type RawJobData map[string]any

// NormalizedJob is the canonical record handed to downstream consumers.
type NormalizedJob struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Department  string     `json:"department"`
	Location    string     `json:"location"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	PostedDate  time.Time  `json:"postedDate"`
	ApplyURL    string     `json:"applyUrl"`
	Source      string     `json:"source"`
	RawData     RawJobData `json:"rawData"`
	ProcessedAt time.Time  `json:"processedAt"`
}

// ScrapeInput identifies the target of one invocation.
type ScrapeInput struct {
	CareersURL string        `json:"careersUrl" yaml:"careers_url"`
	CompanyID  string        `json:"companyId" yaml:"company_id"`
	APIBaseURL string        `json:"apiBaseUrl" yaml:"api_base_url"`
	Timeout    time.Duration `json:"timeout,omitempty" yaml:"timeout"`
	Retries    int           `json:"retries,omitempty" yaml:"retries"`
}

// FetchResult is produced once per invocation and not modified afterwards.
type FetchResult struct {
	RunID      string          `json:"runId"`
	Jobs       []NormalizedJob `json:"jobs"`
	Method     string          `json:"method"`
	Success    bool            `json:"success"`
	Error      string          `json:"error,omitempty"`
	Message    string          `json:"message,omitempty"`
	FetchedAt  time.Time       `json:"fetchedAt"`
	TotalCount int             `json:"totalCount"`

	// Browser path only.
	URL            string    `json:"url,omitempty"`
	ScrapedAt      time.Time `json:"scrapedAt,omitzero"`
	ScreenshotPath string    `json:"screenshotPath,omitempty"`

	Attempts            int    `json:"attempts,omitempty"`
	StrategiesAttempted int    `json:"strategiesAttempted"`
	Extractor           string `json:"extractor,omitempty"`
}
