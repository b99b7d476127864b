// Package delivery posts finished fetch results to a subscriber webhook.
package delivery

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"go-careers-scraper/internal/logger"
	"go-careers-scraper/internal/models"
)

const (
	// SignatureHeader carries "sha256=<hex HMAC of the body>".
	SignatureHeader = "X-Signature-256"
	RunIDHeader     = "X-Run-Id"

	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 3
)

type Webhook struct {
	url        string
	secret     []byte
	client     *http.Client
	log        logger.Logger
	maxRetries uint64
	newBackOff func() backoff.BackOff
}

func NewWebhook(url, secret string, log logger.Logger) *Webhook {
	return &Webhook{
		url:        url,
		secret:     []byte(secret),
		client:     &http.Client{Timeout: defaultTimeout},
		log:        log,
		maxRetries: defaultMaxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxElapsedTime = time.Minute
			return b
		},
	}
}

// Sign returns the signature header value for body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches body. Comparison is constant time.
func Verify(secret, body []byte, signature string) bool {
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}

// Deliver posts result as JSON. 5xx responses and network errors are retried
// with jittered exponential backoff; other non-2xx responses fail immediately.
func (w *Webhook) Deliver(ctx context.Context, result models.FetchResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}
	signature := Sign(w.secret, body)

	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("webhook: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(SignatureHeader, signature)
		req.Header.Set(RunIDHeader, result.RunID)

		resp, err := w.client.Do(req)
		if err != nil {
			return fmt.Errorf("webhook: %w", err)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case resp.StatusCode >= 500:
			return fmt.Errorf("webhook: HTTP %d", resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("webhook: HTTP %d", resp.StatusCode))
		}
	}

	b := backoff.WithContext(backoff.WithMaxRetries(w.newBackOff(), w.maxRetries), ctx)
	err = backoff.RetryNotify(op, b, func(err error, next time.Duration) {
		w.log.Warn("Webhook delivery failed, retrying",
			logger.Int("attempt", attempt),
			logger.Duration("next", next),
			logger.Error(err),
		)
	})
	if err != nil {
		return err
	}

	w.log.Info("Webhook delivered", logger.String("run_id", result.RunID), logger.Int("attempts", attempt))
	return nil
}
