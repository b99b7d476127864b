// Package browsertest provides an in-memory browser.Driver for tests.
package browsertest

import (
	"errors"
	"os"
	"sync"
	"time"

	"go-careers-scraper/internal/browser"
	"go-careers-scraper/internal/extract"
)

// Driver records every browser, context and page it hands out. Configure the
// error fields before use; Content answers page evaluations.
type Driver struct {
	mu sync.Mutex

	LaunchErr  error
	ContextErr error
	PageErr    error
	// GotoErrs are returned by successive Goto calls; missing or nil entries succeed.
	GotoErrs        []error
	WaitSelectorErr error
	Content         extract.Page

	Launches int
	Stops    int
	Browsers []*Browser
	Contexts []*Context
	Pages    []*Page

	gotoCalls int
}

// Start satisfies the browser.NewManager start hook.
func (d *Driver) Start() (browser.Driver, error) {
	return d, nil
}

func (d *Driver) Launch(browser.LaunchOptions) (browser.Browser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Launches++
	if d.LaunchErr != nil {
		return nil, d.LaunchErr
	}
	b := &Browser{d: d, connected: true}
	d.Browsers = append(d.Browsers, b)
	return b, nil
}

func (d *Driver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Stops++
	return nil
}

// GotoCalls reports how many navigations were attempted.
func (d *Driver) GotoCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gotoCalls
}

func (d *Driver) nextGotoErr() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.gotoCalls
	d.gotoCalls++
	if i < len(d.GotoErrs) {
		return d.GotoErrs[i]
	}
	return nil
}

type Browser struct {
	d         *Driver
	connected bool
	Closed    int
}

func (b *Browser) NewContext(opts browser.ContextOptions) (browser.Context, error) {
	b.d.mu.Lock()
	defer b.d.mu.Unlock()
	if b.d.ContextErr != nil {
		return nil, b.d.ContextErr
	}
	c := &Context{d: b.d, Options: opts}
	b.d.Contexts = append(b.d.Contexts, c)
	return c, nil
}

func (b *Browser) IsConnected() bool {
	b.d.mu.Lock()
	defer b.d.mu.Unlock()
	return b.connected
}

// Disconnect simulates a crashed browser process.
func (b *Browser) Disconnect() {
	b.d.mu.Lock()
	defer b.d.mu.Unlock()
	b.connected = false
}

func (b *Browser) Close() error {
	b.d.mu.Lock()
	defer b.d.mu.Unlock()
	b.Closed++
	b.connected = false
	return nil
}

type Context struct {
	d       *Driver
	Options browser.ContextOptions
	Closed  int
}

func (c *Context) NewPage() (browser.Page, error) {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	if c.d.PageErr != nil {
		return nil, c.d.PageErr
	}
	p := &Page{d: c.d}
	c.d.Pages = append(c.d.Pages, p)
	return p, nil
}

func (c *Context) Close() error {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	c.Closed++
	return nil
}

type Page struct {
	d *Driver

	Visited     []string
	Blocker     func(resourceType string) bool
	Console     func(kind, text string)
	Screenshots []string
	IdleWaits   int
	Closed      int
	url         string
}

func (p *Page) Evaluate(expression string, arg ...interface{}) (interface{}, error) {
	if p.d.Content == nil {
		return nil, errors.New("page has no content")
	}
	return p.d.Content.Evaluate(expression, arg...)
}

func (p *Page) Goto(url string, _ string, _ time.Duration) error {
	if err := p.d.nextGotoErr(); err != nil {
		return err
	}
	p.Visited = append(p.Visited, url)
	p.url = url
	return nil
}

func (p *Page) WaitForSelector(string, time.Duration) error {
	return p.d.WaitSelectorErr
}

func (p *Page) WaitForNetworkIdle(time.Duration) error {
	p.IdleWaits++
	return nil
}

func (p *Page) BlockResources(block func(resourceType string) bool) error {
	p.Blocker = block
	return nil
}

func (p *Page) OnConsole(fn func(kind, text string)) {
	p.Console = fn
}

// Screenshot writes a placeholder file so callers can check the path.
func (p *Page) Screenshot(path string) error {
	p.Screenshots = append(p.Screenshots, path)
	return os.WriteFile(path, []byte("png"), 0o644)
}

func (p *Page) URL() string {
	return p.url
}

func (p *Page) Close() error {
	p.d.mu.Lock()
	defer p.d.mu.Unlock()
	p.Closed++
	return nil
}
