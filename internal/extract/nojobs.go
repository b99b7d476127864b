package extract

import (
	"strings"
)

// DefaultNoJobsPhrases are the indicators of a careers page with nothing open.
var DefaultNoJobsPhrases = []string{
	"no positions available",
	"no current openings",
	"no job availabilities",
	"no opportunities",
	"no open positions",
	"no openings at this time",
}

// NoJobsDetector recognises pages that legitimately list no openings.
type NoJobsDetector struct {
	Phrases []string
}

func NewNoJobsDetector() *NoJobsDetector {
	return &NoJobsDetector{Phrases: DefaultNoJobsPhrases}
}

// Detect returns the matched phrase, if any.
func (d *NoJobsDetector) Detect(page Page) (string, bool, error) {
	text, err := VisibleText(page)
	if err != nil {
		return "", false, err
	}
	phrase, ok := d.Match(text)
	return phrase, ok, nil
}

// Match checks text against the configured phrases, ignoring case and spacing.
func (d *NoJobsDetector) Match(text string) (string, bool) {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	for _, phrase := range d.Phrases {
		if strings.Contains(normalized, phrase) {
			return phrase, true
		}
	}
	return "", false
}
