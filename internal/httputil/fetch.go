// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultErrorPause is how long a failed fetch waits before reporting
// an absent result.
const DefaultErrorPause = 5 * time.Second

// Fetcher performs GET requests under a shared Pool. Every request holds
// one permit for its whole duration, including the pause after a failure.
// Failures never escape as errors: Fetch logs them and reports ok=false,
// and callers treat that as "skip".
type Fetcher struct {
	Client     *http.Client
	Pool       *Pool
	UserAgent  string
	MaxRetries int

	// ErrorPause overrides DefaultErrorPause when non-zero.
	ErrorPause time.Duration

	Log *zap.Logger
}

// Fetch returns the body of url. timeout bounds each attempt, including
// reading the body. A non-2xx status after retries is a failure.
func (f *Fetcher) Fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, bool) {
	if err := f.Pool.Acquire(ctx); err != nil {
		return nil, false
	}
	defer f.Pool.Release()

	body, err := f.get(ctx, url, timeout)
	if err != nil {
		f.logger().Warn("fetch failed", zap.String("url", url), zap.Error(err))
		f.Pause(ctx)
		return nil, false
	}
	return body, true
}

func (f *Fetcher) get(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := DoWithRetry(ctx, f.client(timeout), req, f.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return body, nil
}

// client returns a copy of the configured client with timeout applied,
// so one Fetcher can serve both page and PDF requests.
func (f *Fetcher) client(timeout time.Duration) *http.Client {
	base := f.Client
	if base == nil {
		base = http.DefaultClient
	}
	c := *base
	if timeout > 0 {
		c.Timeout = timeout
	}
	return &c
}

// Pause waits for the configured error pause or until ctx is done.
func (f *Fetcher) Pause(ctx context.Context) {
	d := f.ErrorPause
	if d <= 0 {
		d = DefaultErrorPause
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func (f *Fetcher) logger() *zap.Logger {
	if f.Log == nil {
		return zap.NewNop()
	}
	return f.Log
}
