package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// DefaultArgs keep Chromium usable inside containers.
var DefaultArgs = []string{
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--disable-blink-features=AutomationControlled",
}

type playwrightDriver struct {
	pw *playwright.Playwright
}

// StartPlaywright runs the playwright driver. Browsers must already be installed.
func StartPlaywright() (Driver, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	return &playwrightDriver{pw: pw}, nil
}

func (d *playwrightDriver) Launch(opts LaunchOptions) (Browser, error) {
	args := opts.Args
	if len(args) == 0 {
		args = DefaultArgs
	}
	b, err := d.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     args,
	})
	if err != nil {
		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}
	return &playwrightBrowser{b: b}, nil
}

func (d *playwrightDriver) Stop() error {
	return d.pw.Stop()
}

type playwrightBrowser struct {
	b playwright.Browser
}

func (b *playwrightBrowser) NewContext(opts ContextOptions) (Context, error) {
	o := playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(true),
		Viewport:          &playwright.Size{Width: opts.Width, Height: opts.Height},
	}
	if opts.UserAgent != "" {
		o.UserAgent = playwright.String(opts.UserAgent)
	}
	c, err := b.b.NewContext(o)
	if err != nil {
		return nil, err
	}
	return &playwrightContext{c: c}, nil
}

func (b *playwrightBrowser) IsConnected() bool {
	return b.b.IsConnected()
}

func (b *playwrightBrowser) Close() error {
	return b.b.Close()
}

type playwrightContext struct {
	c playwright.BrowserContext
}

func (c *playwrightContext) NewPage() (Page, error) {
	p, err := c.c.NewPage()
	if err != nil {
		return nil, err
	}
	return &playwrightPage{p: p}, nil
}

func (c *playwrightContext) Close() error {
	return c.c.Close()
}

type playwrightPage struct {
	p playwright.Page
}

func (p *playwrightPage) Evaluate(expression string, arg ...interface{}) (interface{}, error) {
	return p.p.Evaluate(expression, arg...)
}

func (p *playwrightPage) Goto(url string, waitUntil string, timeout time.Duration) error {
	_, err := p.p.Goto(url, playwright.PageGotoOptions{
		WaitUntil: waitUntilState(waitUntil),
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	return err
}

func (p *playwrightPage) WaitForSelector(selector string, timeout time.Duration) error {
	_, err := p.p.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return err
}

func (p *playwrightPage) WaitForNetworkIdle(timeout time.Duration) error {
	return p.p.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (p *playwrightPage) BlockResources(block func(resourceType string) bool) error {
	return p.p.Route("**/*", func(route playwright.Route) {
		if block(route.Request().ResourceType()) {
			_ = route.Abort()
			return
		}
		_ = route.Continue()
	})
}

func (p *playwrightPage) OnConsole(fn func(kind, text string)) {
	p.p.OnConsole(func(msg playwright.ConsoleMessage) {
		fn(msg.Type(), msg.Text())
	})
}

func (p *playwrightPage) Screenshot(path string) error {
	_, err := p.p.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

func (p *playwrightPage) URL() string {
	return p.p.URL()
}

func (p *playwrightPage) Close() error {
	return p.p.Close()
}

func waitUntilState(s string) *playwright.WaitUntilState {
	switch s {
	case "load":
		return playwright.WaitUntilStateLoad
	case "domcontentloaded":
		return playwright.WaitUntilStateDomcontentloaded
	case "commit":
		return playwright.WaitUntilStateCommit
	default:
		return playwright.WaitUntilStateNetworkidle
	}
}
