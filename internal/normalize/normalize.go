// Package normalize converts raw extracted records into NormalizedJob values.
package normalize

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"go-careers-scraper/internal/extract"
	"go-careers-scraper/internal/logger"
	"go-careers-scraper/internal/models"
)

var (
	titleKeys       = []string{"title", "position_title", "name"}
	idKeys          = []string{"id", "job_id"}
	departmentKeys  = []string{"department", "category", "division"}
	locationKeys    = []string{"location", "city", "office"}
	typeKeys        = []string{"type", "employment_type", "schedule"}
	postedDateKeys  = []string{"posted_date", "created_at", "date_posted"}
	applyURLKeys    = []string{"apply_url", "applyUrl", "url", "link"}
	descriptionKeys = []string{"description", "summary"}
)

// employmentTypes maps schema.org employmentType values to display names.
var employmentTypes = map[string]string{
	"FULL_TIME":  "Full-time",
	"PART_TIME":  "Part-time",
	"CONTRACTOR": "Contract",
	"TEMPORARY":  "Temporary",
	"INTERN":     "Internship",
	"VOLUNTEER":  "Volunteer",
	"PER_DIEM":   "Per diem",
	"OTHER":      "Other",
}

// Batch is the context shared by every record of one extraction.
type Batch struct {
	Source string
	// BaseURL resolves relative apply links. Empty leaves them as found.
	BaseURL     string
	ProcessedAt time.Time
}

type Normalizer struct {
	log    logger.Logger
	policy *bluemonday.Policy
	now    func() time.Time
}

func New(log logger.Logger) *Normalizer {
	policy := bluemonday.StrictPolicy()
	policy.AddSpaceWhenStrippingTag(true)
	return &Normalizer{log: log, policy: policy, now: time.Now}
}

// uniqueID returns id, or the first of id-2, id-3, ... not yet taken.
func uniqueID(id string, taken map[string]struct{}) string {
	if _, ok := taken[id]; !ok {
		return id
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// NormalizeJobs normalizes raw in order, dropping records without a title.
// Every returned job carries the same ProcessedAt.
func (n *Normalizer) NormalizeJobs(raw []models.RawJobData, source, baseURL string) []models.NormalizedJob {
	batch := Batch{Source: source, BaseURL: baseURL, ProcessedAt: n.now().UTC()}

	jobs := make([]models.NormalizedJob, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for i, record := range raw {
		job, ok := n.NormalizeJob(record, batch, i)
		if !ok {
			continue
		}
		job.ID = uniqueID(job.ID, seen)
		seen[job.ID] = struct{}{}
		jobs = append(jobs, job)
	}

	if dropped := len(raw) - len(jobs); dropped > 0 {
		n.log.Debug("Dropped records without a title",
			logger.String("source", source),
			logger.Int("dropped", dropped),
		)
	}
	return jobs
}

// NormalizeJob converts one record. index is the record's position in its batch
// and seeds generated ids. It reports false when the record has no usable title.
func (n *Normalizer) NormalizeJob(raw models.RawJobData, batch Batch, index int) (models.NormalizedJob, bool) {
	title := firstText(raw, titleKeys)
	if title == "" {
		return models.NormalizedJob{}, false
	}

	id := firstIdentifier(raw, idKeys)
	if id == "" {
		id = fmt.Sprintf("%s-%d", Slugify(title), index+1)
	}

	jobType := employmentType(firstValue(raw, typeKeys))
	if jobType == "" {
		jobType = models.DefaultJobType
	}

	posted, ok := ParseDate(firstValue(raw, postedDateKeys))
	if !ok {
		posted = batch.ProcessedAt
	}

	return models.NormalizedJob{
		ID:          id,
		Title:       title,
		Department:  firstText(raw, departmentKeys),
		Location:    firstText(raw, locationKeys),
		Type:        jobType,
		Description: n.cleanDescription(firstText(raw, descriptionKeys)),
		PostedDate:  posted,
		ApplyURL:    extract.ResolveURL(batch.BaseURL, firstText(raw, applyURLKeys)),
		Source:      batch.Source,
		RawData:     raw,
		ProcessedAt: batch.ProcessedAt,
	}, true
}

func (n *Normalizer) cleanDescription(s string) string {
	if s == "" {
		return ""
	}
	text := html.UnescapeString(n.policy.Sanitize(s))
	return strings.Join(strings.Fields(text), " ")
}

func firstValue(raw models.RawJobData, keys []string) any {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
				continue
			}
			return v
		}
	}
	return nil
}

// firstText only accepts string values; anything else counts as absent.
func firstText(raw models.RawJobData, keys []string) string {
	for _, key := range keys {
		if s, ok := raw[key].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

func firstIdentifier(raw models.RawJobData, keys []string) string {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		}
	}
	return ""
}

func employmentType(v any) string {
	switch t := v.(type) {
	case string:
		return humanizeType(t)
	case []string:
		return joinTypes(t)
	case []any:
		var parts []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return joinTypes(parts)
	}
	return ""
}

func joinTypes(values []string) string {
	var out []string
	for _, v := range values {
		if h := humanizeType(v); h != "" {
			out = append(out, h)
		}
	}
	return strings.Join(out, ", ")
}

func humanizeType(s string) string {
	s = strings.TrimSpace(s)
	key := strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(s))
	if human, ok := employmentTypes[key]; ok {
		return human
	}
	return s
}
