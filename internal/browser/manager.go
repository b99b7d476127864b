package browser

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-careers-scraper/internal/logger"
	"go-careers-scraper/internal/models"
)

// DefaultSettleDelay is waited after the network-idle fallback so late SPA renders land.
const DefaultSettleDelay = 2 * time.Second

const scrollToBottomScript = `() => window.scrollTo(0, document.body ? document.body.scrollHeight : 0)`

type Options struct {
	Headless  bool
	Args      []string
	UserAgent string
	// WaitUntil is the Goto readiness event; empty means "networkidle".
	WaitUntil    string
	WaitSelector string
	SettleScroll bool
	Debug        bool
	// Reuse keeps the browser process alive once no session is active.
	Reuse bool
}

// Manager launches one browser and hands out isolated sessions on it.
// Launch/Release are reference counted and safe for concurrent use.
type Manager struct {
	opts        Options
	log         logger.Logger
	start       func() (Driver, error)
	settleDelay time.Duration

	mu      sync.Mutex
	driver  Driver
	browser Browser
	active  int
}

// NewManager returns a Manager that starts browsers with start, or with
// playwright when start is nil.
func NewManager(log logger.Logger, opts Options, start func() (Driver, error)) *Manager {
	if start == nil {
		start = StartPlaywright
	}
	if opts.WaitUntil == "" {
		opts.WaitUntil = "networkidle"
	}
	return &Manager{
		opts:        opts,
		log:         log,
		start:       start,
		settleDelay: DefaultSettleDelay,
	}
}

// Launch makes sure a connected browser exists and registers one user of it.
// Every successful Launch must be paired with Release.
func (m *Manager) Launch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil && m.browser.IsConnected() {
		m.active++
		return nil
	}
	if m.browser != nil {
		m.log.Warn("Browser disconnected, relaunching")
		m.browser = nil
	}

	if m.driver == nil {
		d, err := m.start()
		if err != nil {
			return err
		}
		m.driver = d
	}

	b, err := m.driver.Launch(LaunchOptions{Headless: m.opts.Headless, Args: m.opts.Args})
	if err != nil {
		return err
	}
	m.log.Debug("Browser launched", logger.Bool("headless", m.opts.Headless))
	m.browser = b
	m.active++
	return nil
}

// OpenPage creates a fresh context and page on the launched browser.
func (m *Manager) OpenPage() (*Session, error) {
	m.mu.Lock()
	b := m.browser
	m.mu.Unlock()
	if b == nil {
		return nil, errors.New("browser not launched")
	}

	s := &Session{log: m.log}
	bctx, err := b.NewContext(ContextOptions{
		UserAgent: m.opts.UserAgent,
		Width:     Viewport.Width,
		Height:    Viewport.Height,
	})
	if err != nil {
		m.log.Debug("Context creation failed", logger.Error(err))
		return nil, err
	}
	s.context = bctx

	page, err := bctx.NewPage()
	if err != nil {
		m.log.Debug("Page creation failed", logger.Error(err))
		s.Close()
		return nil, err
	}
	s.page = page

	if err := page.BlockResources(shouldBlock); err != nil {
		m.log.Warn("Could not install resource filter", logger.Error(err))
	}
	if m.opts.Debug {
		page.OnConsole(func(kind, text string) {
			m.log.Debug("Page console", logger.String("type", kind), logger.String("text", text))
		})
	}
	return s, nil
}

// Navigate loads url in the session's page and waits until it is ready for extraction.
func (m *Manager) Navigate(ctx context.Context, s *Session, url string, timeout time.Duration) error {
	if s == nil || s.page == nil {
		return errors.New("no page to navigate")
	}
	if err := s.page.Goto(url, m.opts.WaitUntil, timeout); err != nil {
		return &models.NavigationError{URL: url, Err: err}
	}

	if m.opts.WaitSelector != "" {
		if err := s.page.WaitForSelector(m.opts.WaitSelector, timeout); err != nil {
			m.log.Debug("Wait selector not found, falling back to network idle",
				logger.String("selector", m.opts.WaitSelector),
				logger.Error(err),
			)
			if err := s.page.WaitForNetworkIdle(timeout); err != nil {
				m.log.Debug("Network idle wait failed", logger.Error(err))
			}
			if err := sleep(ctx, m.settleDelay); err != nil {
				return err
			}
		}
	}

	if m.opts.SettleScroll {
		// lazy-loaded lists render on scroll
		if _, err := s.page.Evaluate(scrollToBottomScript); err != nil {
			m.log.Debug("Settle scroll failed", logger.Error(err))
		}
		if err := s.page.WaitForNetworkIdle(timeout); err != nil {
			m.log.Debug("Network idle wait after scroll failed", logger.Error(err))
		}
	}
	return ctx.Err()
}

// Release drops one user of the browser. The browser is closed when nobody
// uses it any more, unless the manager reuses browsers.
func (m *Manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active > 0 {
		m.active--
	}
	if m.active > 0 || m.opts.Reuse {
		return
	}
	m.closeLocked()
}

// Shutdown closes the browser and driver regardless of reuse or active sessions.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = 0
	m.closeLocked()
}

func (m *Manager) closeLocked() {
	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			m.log.Warn("Failed to close browser", logger.Error(err))
		}
		m.browser = nil
	}
	if m.driver != nil {
		if err := m.driver.Stop(); err != nil {
			m.log.Warn("Failed to stop browser driver", logger.Error(err))
		}
		m.driver = nil
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
