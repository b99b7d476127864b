package extract

import (
	"context"
	"regexp"
	"strings"

	"go-careers-scraper/internal/logger"
	"go-careers-scraper/internal/models"
)

// MaxTextMatches bounds how many postings the free-text fallback may report.
const MaxTextMatches = 20

// rolePattern matches a role keyword followed by 5-50 characters on the same line.
// It is a heuristic and produces false positives by nature.
var rolePattern = regexp.MustCompile(`(?i)\b(?:engineer|developer|manager|analyst|designer|scientist|architect|specialist|consultant|coordinator|administrator|director|intern)\b[^\n]{5,50}`)

// TextExtractor is the last resort: it pattern-matches role phrases in the visible
// body text. Results are best effort.
type TextExtractor struct {
	MaxMatches int
	log        logger.Logger
}

func NewTextExtractor(log logger.Logger) *TextExtractor {
	return &TextExtractor{MaxMatches: MaxTextMatches, log: log}
}

func (e *TextExtractor) Name() string {
	return "text-pattern"
}

func (e *TextExtractor) TryExtract(ctx context.Context, page Page) ([]models.RawJobData, error) {
	text, err := VisibleText(page)
	if err != nil {
		return nil, &models.ExtractionError{Extractor: e.Name(), Err: err}
	}
	titles := MatchRoles(text, e.MaxMatches)
	if len(titles) > 0 {
		e.log.Debug("Free-text role phrases matched", logger.Int("matches", len(titles)))
	}

	jobs := make([]models.RawJobData, 0, len(titles))
	for _, title := range titles {
		jobs = append(jobs, models.RawJobData{"title": title})
	}
	return jobs, nil
}

// MatchRoles returns up to limit distinct role phrases found in text.
func MatchRoles(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxTextMatches
	}
	seen := make(map[string]struct{})
	var out []string
	for _, m := range rolePattern.FindAllString(text, -1) {
		phrase := strings.Join(strings.Fields(m), " ")
		key := strings.ToLower(phrase)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, phrase)
		if len(out) >= limit {
			break
		}
	}
	return out
}
