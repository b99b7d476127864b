package browser

import (
	"go-careers-scraper/internal/logger"
)

// Session is one isolated context and page. It is never shared between invocations.
type Session struct {
	context Context
	page    Page
	log     logger.Logger
}

func (s *Session) Page() Page {
	return s.page
}

// Close tears down the page and then the context. Each step runs even if the
// previous failed; errors are logged and swallowed. Safe to call more than once
// and on a partially opened session.
func (s *Session) Close() {
	if s == nil {
		return
	}
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			s.log.Warn("Failed to close page", logger.Error(err))
		}
		s.page = nil
	}
	if s.context != nil {
		if err := s.context.Close(); err != nil {
			s.log.Warn("Failed to close browser context", logger.Error(err))
		}
		s.context = nil
	}
}
