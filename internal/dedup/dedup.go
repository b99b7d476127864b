// Package dedup remembers which postings were already announced so repeated
// runs only report new ones. Fetch results themselves are never filtered.
package dedup

import (
	"strings"
	"sync"
	"time"

	"go-careers-scraper/internal/models"
)

// DefaultTTL is how long an announced posting stays suppressed.
const DefaultTTL = 30 * 24 * time.Hour

// JobSet is an in-memory seen cache keyed per company.
// Mutex is required because maps are not safe for concurrent use.
type JobSet struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	seen map[string]time.Time
}

// NewJobSet returns an empty set. Entries older than ttl are forgotten;
// ttl <= 0 keeps them forever.
func NewJobSet(ttl time.Duration) *JobSet {
	return &JobSet{ttl: ttl, now: time.Now, seen: make(map[string]time.Time)}
}

// Key identifies a posting within scope by its id and apply URL.
func Key(scope string, job models.NormalizedJob) string {
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(scope)),
		job.ID,
		strings.TrimRight(strings.ToLower(job.ApplyURL), "/"),
	}, "|")
}

// Unseen returns the jobs not announced for scope yet, in order, and marks
// them as seen.
func (s *JobSet) Unseen(scope string, jobs []models.NormalizedJob) []models.NormalizedJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expire(now)

	out := make([]models.NormalizedJob, 0, len(jobs))
	for _, job := range jobs {
		k := Key(scope, job)
		if _, exists := s.seen[k]; exists {
			continue
		}
		s.seen[k] = now
		out = append(out, job)
	}
	return out
}

func (s *JobSet) expire(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	cutoff := now.Add(-s.ttl)
	for k, at := range s.seen {
		if at.Before(cutoff) {
			delete(s.seen, k)
		}
	}
}
