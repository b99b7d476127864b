package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-careers-scraper/internal/logger"
)

// Screenshotter is anything that can write a full-page PNG to path.
type Screenshotter interface {
	Screenshot(path string) error
}

// ScreenshotDebugger handles debug screenshots
type ScreenshotDebugger struct {
	outputDir string
	log       logger.Logger
	now       func() time.Time
}

func NewScreenshotDebugger(outputDir string, log logger.Logger) *ScreenshotDebugger {
	if outputDir == "" {
		outputDir = "temp"
	}
	return &ScreenshotDebugger{outputDir: outputDir, log: log, now: time.Now}
}

// Capture saves a screenshot named after the company and returns its path.
// Failures are logged and reported as an empty path; they never fail a scrape.
func (s *ScreenshotDebugger) Capture(page Screenshotter, companyID string) string {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		s.log.Warn("Could not create screenshot directory", logger.String("dir", s.outputDir), logger.Error(err))
		return ""
	}

	filename := fmt.Sprintf("scrape-debug-%s-%d.png", safeName(companyID), s.now().UnixMilli())
	path := filepath.Join(s.outputDir, filename)
	if err := page.Screenshot(path); err != nil {
		s.log.Warn("Failed to capture screenshot", logger.String("path", path), logger.Error(err))
		return ""
	}

	s.log.Debug("Screenshot saved", logger.String("path", path))
	return path
}

func safeName(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator || r == ' ' {
			return '_'
		}
		return r
	}, id)
}
