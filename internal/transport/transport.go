// Package transport fetches documents over plain HTTP for the non-browser strategies.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "careers-scraper/1.0"
)

// Response is the outcome of a request that reached the server.
type Response struct {
	Success bool
	Status  int
	Data    []byte
	Header  http.Header
}

// Transport performs GET requests.
type Transport interface {
	Get(ctx context.Context, rawURL string, headers map[string]string) (*Response, error)
}

type Options struct {
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond is the per-host budget; zero means one request per second.
	RequestsPerSecond float64
	Burst             int
}

// CollyTransport issues each request on a fresh collector and rate limits per host.
type CollyTransport struct {
	opts Options

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewCollyTransport(opts Options) *CollyTransport {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}
	if opts.Burst <= 0 {
		opts.Burst = 2
	}
	return &CollyTransport{opts: opts, limiters: make(map[string]*rate.Limiter)}
}

// Get fetches rawURL. HTTP error statuses come back as an unsuccessful
// Response; only failures to get any response are returned as errors.
func (t *CollyTransport) Get(ctx context.Context, rawURL string, headers map[string]string) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q", rawURL)
	}
	if err := t.limiterFor(u.Hostname()).Wait(ctx); err != nil {
		return nil, err
	}

	c := colly.NewCollector(colly.UserAgent(t.opts.UserAgent), colly.AllowURLRevisit())
	c.ParseHTTPErrorResponse = true
	c.SetRequestTimeout(t.opts.Timeout)

	var (
		resp   *Response
		reqErr error
	)
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})
	c.OnResponse(func(r *colly.Response) {
		resp = &Response{
			Success: r.StatusCode >= 200 && r.StatusCode < 300,
			Status:  r.StatusCode,
			Data:    append([]byte(nil), r.Body...),
		}
		if r.Headers != nil {
			resp.Header = r.Headers.Clone()
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			resp = &Response{Status: r.StatusCode, Data: append([]byte(nil), r.Body...)}
			return
		}
		reqErr = err
	})

	hdr := http.Header{}
	for k, v := range headers {
		hdr.Set(k, v)
	}
	if err := c.Request(http.MethodGet, u.String(), nil, nil, hdr); err != nil && resp == nil {
		return nil, fmt.Errorf("get %s: %w", u.Redacted(), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if reqErr != nil {
		return nil, fmt.Errorf("get %s: %w", u.Redacted(), reqErr)
	}
	if resp == nil {
		return nil, errors.New("no response received")
	}
	return resp, nil
}

func (t *CollyTransport) limiterFor(host string) *rate.Limiter {
	key := strings.TrimPrefix(strings.ToLower(host), "www.")
	t.mu.Lock()
	defer t.mu.Unlock()
	if l, ok := t.limiters[key]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(t.opts.RequestsPerSecond), t.opts.Burst)
	t.limiters[key] = l
	return l
}
