// Package browser owns the headless Chromium lifecycle: launch or reuse of the
// process, a fresh context and page per invocation, and guaranteed teardown.
package browser

import (
	"time"
)

// Viewport is fixed so page layout (and lazy loading) is reproducible.
var Viewport = struct{ Width, Height int }{1366, 768}

// Driver starts browsers. Stop releases the driver process itself.
type Driver interface {
	Launch(opts LaunchOptions) (Browser, error)
	Stop() error
}

type Browser interface {
	NewContext(opts ContextOptions) (Context, error)
	IsConnected() bool
	Close() error
}

type Context interface {
	NewPage() (Page, error)
	Close() error
}

// Page is the subset of page operations the scraper needs. Evaluate matches
// extract.Page so a Page can be handed to the extraction chain directly.
type Page interface {
	Evaluate(expression string, arg ...interface{}) (interface{}, error)
	Goto(url string, waitUntil string, timeout time.Duration) error
	WaitForSelector(selector string, timeout time.Duration) error
	WaitForNetworkIdle(timeout time.Duration) error
	// BlockResources installs a request filter; block decides by resource type.
	BlockResources(block func(resourceType string) bool) error
	OnConsole(fn func(kind, text string))
	Screenshot(path string) error
	URL() string
	Close() error
}

type LaunchOptions struct {
	Headless bool
	Args     []string
}

type ContextOptions struct {
	UserAgent string
	Width     int
	Height    int
}

// blockedResources are never needed for extraction.
var blockedResources = map[string]bool{
	"image":      true,
	"stylesheet": true,
	"font":       true,
	"media":      true,
}

func shouldBlock(resourceType string) bool {
	return blockedResources[resourceType]
}
