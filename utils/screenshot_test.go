package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-careers-scraper/internal/logger"
)

type fileShot struct{ err error }

func (f fileShot) Screenshot(path string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(path, []byte("png"), 0o644)
}

func TestCapture_WritesNamedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "temp")
	s := NewScreenshotDebugger(dir, logger.NewNop())
	s.now = func() time.Time { return time.UnixMilli(1717243200000) }

	path := s.Capture(fileShot{}, "acme/eu")
	assert.Equal(t, filepath.Join(dir, "scrape-debug-acme_eu-1717243200000.png"), path)
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestCapture_FailureIsNotFatal(t *testing.T) {
	s := NewScreenshotDebugger(t.TempDir(), logger.NewNop())
	assert.Empty(t, s.Capture(fileShot{err: errors.New("page crashed")}, ""))
}
