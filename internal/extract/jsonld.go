package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go-careers-scraper/internal/logger"
	"go-careers-scraper/internal/models"
)

// JSONLDExtractor reads schema.org JobPosting entries from ld+json script blocks.
type JSONLDExtractor struct {
	log logger.Logger
}

func NewJSONLDExtractor(log logger.Logger) *JSONLDExtractor {
	return &JSONLDExtractor{log: log}
}

func (e *JSONLDExtractor) Name() string {
	return "json-ld"
}

func (e *JSONLDExtractor) TryExtract(ctx context.Context, page Page) ([]models.RawJobData, error) {
	var blocks []string
	if err := evaluateInto(page, jsonLDScript, &blocks); err != nil {
		return nil, &models.ExtractionError{Extractor: e.Name(), Err: err}
	}

	var jobs []models.RawJobData
	for i, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		var payload any
		if err := json.Unmarshal([]byte(block), &payload); err != nil {
			e.log.Debug("Skipping invalid JSON-LD block", logger.Int("block", i), logger.Error(err))
			continue
		}
		for _, posting := range findJobPostings(payload) {
			jobs = append(jobs, jobFromPosting(posting))
		}
	}
	return jobs, nil
}

func findJobPostings(payload any) []map[string]any {
	var out []map[string]any
	switch t := payload.(type) {
	case map[string]any:
		if isJobPostingType(t["@type"]) {
			out = append(out, t)
		}
		if graph, ok := t["@graph"].([]any); ok {
			for _, item := range graph {
				out = append(out, findJobPostings(item)...)
			}
		}
	case []any:
		for _, item := range t {
			out = append(out, findJobPostings(item)...)
		}
	}
	return out
}

func isJobPostingType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "JobPosting"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "JobPosting" {
				return true
			}
		}
	}
	return false
}

func jobFromPosting(p map[string]any) models.RawJobData {
	raw := models.RawJobData{}
	set := func(key string, value any) {
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return
		}
		if value != nil {
			raw[key] = value
		}
	}

	set("id", firstNonNil(identifier(p["identifier"]), scalar(p["id"])))
	set("title", scalar(p["title"]))
	set("description", scalar(p["description"]))
	set("type", employmentType(p["employmentType"]))
	set("posted_date", scalar(p["datePosted"]))
	set("apply_url", firstNonNil(scalar(p["url"]), scalar(p["applicationUrl"])))
	set("location", jobLocation(p["jobLocation"], p["jobLocationType"]))
	set("department", organizationName(p["hiringOrganization"]))
	return raw
}

// scalar returns strings and numbers as a string, and unwraps {"@value": ...}.
func scalar(v any) any {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return s
		}
	case float64:
		return formatNumber(t)
	case map[string]any:
		if val, ok := t["@value"]; ok {
			return scalar(val)
		}
	}
	return nil
}

func identifier(v any) any {
	if s := scalar(v); s != nil {
		return s
	}
	if m, ok := v.(map[string]any); ok {
		return firstNonNil(scalar(m["value"]), scalar(m["name"]))
	}
	return nil
}

func employmentType(v any) any {
	switch t := v.(type) {
	case string:
		return scalar(t)
	case []any:
		var types []string
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				types = append(types, strings.TrimSpace(s))
			}
		}
		if len(types) > 0 {
			return types
		}
	}
	return nil
}

func jobLocation(v any, locationType any) any {
	switch t := v.(type) {
	case string:
		return scalar(t)
	case []any:
		for _, item := range t {
			if loc := jobLocation(item, nil); loc != nil {
				return loc
			}
		}
	case map[string]any:
		switch addr := t["address"].(type) {
		case map[string]any:
			if loc := scalar(addr["addressLocality"]); loc != nil {
				return loc
			}
		case string:
			return scalar(addr)
		}
		if name := scalar(t["name"]); name != nil {
			return name
		}
	}
	if s, ok := locationType.(string); ok && strings.EqualFold(s, "TELECOMMUTE") {
		return "Remote"
	}
	return nil
}

func organizationName(v any) any {
	if s, ok := v.(string); ok {
		return scalar(s)
	}
	if m, ok := v.(map[string]any); ok {
		return scalar(m["name"])
	}
	return nil
}

func firstNonNil(values ...any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
