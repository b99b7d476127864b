package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-careers-scraper/internal/models"
)

func ids(jobs []models.NormalizedJob) []string {
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.ID)
	}
	return out
}

func TestUnseen_OnlyNewPostingsAcrossRuns(t *testing.T) {
	s := NewJobSet(DefaultTTL)
	first := []models.NormalizedJob{
		{ID: "req-1", Title: "Software Engineer", ApplyURL: "https://acme.example/jobs/1"},
		{ID: "req-2", Title: "Software Engineer", ApplyURL: "https://acme.example/jobs/2"},
	}
	second := append(first, models.NormalizedJob{ID: "req-3", Title: "Designer"})

	assert.Equal(t, []string{"req-1", "req-2"}, ids(s.Unseen("acme", first)))
	assert.Equal(t, []string{"req-3"}, ids(s.Unseen("acme", second)))
	assert.Empty(t, s.Unseen("acme", second))
}

func TestUnseen_SameTitleDifferentIDsAreDistinct(t *testing.T) {
	s := NewJobSet(0)
	jobs := []models.NormalizedJob{
		{ID: "req-1", Title: "Software Engineer", Location: "Remote"},
		{ID: "req-2", Title: "Software Engineer", Location: "Remote"},
	}
	assert.Len(t, s.Unseen("acme", jobs), 2)
}

func TestUnseen_ScopedPerCompany(t *testing.T) {
	s := NewJobSet(0)
	job := models.NormalizedJob{ID: "1", ApplyURL: "https://jobs.example/1/"}

	assert.Len(t, s.Unseen("acme", []models.NormalizedJob{job}), 1)
	assert.Len(t, s.Unseen("globex", []models.NormalizedJob{job}), 1)
	job.ApplyURL = "https://JOBS.example/1"
	assert.Empty(t, s.Unseen("ACME", []models.NormalizedJob{job}))
}

func TestUnseen_Expiry(t *testing.T) {
	s := NewJobSet(time.Hour)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	jobs := []models.NormalizedJob{{ID: "1"}}

	assert.Len(t, s.Unseen("acme", jobs), 1)
	now = now.Add(30 * time.Minute)
	assert.Empty(t, s.Unseen("acme", jobs))
	now = now.Add(2 * time.Hour)
	assert.Len(t, s.Unseen("acme", jobs), 1)
}

func TestUnseen_Empty(t *testing.T) {
	assert.Empty(t, NewJobSet(0).Unseen("acme", nil))
}
