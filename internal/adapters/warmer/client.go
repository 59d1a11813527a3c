// Package warmer posts URL lists to a cache warmer webhook
package warmer

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	perr "preloadassist/internal/platform/errors"
	"preloadassist/internal/platform/logger"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUA        = "preload-assist"
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
	maxBackoff       = 30 * time.Second
)

// Options configures the Client
type Options struct {
	URL       string
	Token     string // sent as a bearer token when set
	UserAgent string
	Timeout   time.Duration

	// Retry config for transport errors, 429 and 5xx gateway responses
	MaxRetries int
	RetryBase  time.Duration
}

// Client posts newline separated URL lists to one webhook
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	sleep func(context.Context, time.Duration) error
}

// New creates a Client; an empty URL yields a client that reports itself unconfigured
func New(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	} else if o.MaxRetries == 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("warmer"),
		sleep: sleepCtx,
	}
}

// Configured reports whether a webhook URL is set
func (c *Client) Configured() bool { return c != nil && strings.TrimSpace(c.opts.URL) != "" }

// Warm posts urls, one per line
func (c *Client) Warm(ctx context.Context, urls []string) error {
	if !c.Configured() {
		return perr.Unavailablef("cache warmer webhook is not configured")
	}
	body := []byte(strings.Join(urls, "\n") + "\n")

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.URL, bytes.NewReader(body))
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "warmer new request failed")
		}
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("X-URL-Count", strconv.Itoa(len(urls)))
		if c.opts.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.opts.Token)
		}

		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return perr.FromContext(ctx.Err())
			}
			if attempt >= c.opts.MaxRetries {
				return perr.Wrapf(err, perr.ErrorCodeUnavailable, "warmer post failed")
			}
			if err := c.backoff(ctx, attempt, "warmer transport error retrying"); err != nil {
				return err
			}
			continue
		}

		c.log.Debug().
			Int("status", resp.StatusCode).
			Int("attempt", attempt).
			Int("urls", len(urls)).
			Dur("latency", time.Since(start)).
			Msg("warmer http response")

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			_ = drainAndClose(resp.Body)
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			_ = drainAndClose(resp.Body)
			if attempt >= c.opts.MaxRetries {
				return perr.Unavailablef("warmer responded %d", resp.StatusCode)
			}
			if err := c.backoff(ctx, attempt, "warmer transient status retrying"); err != nil {
				return err
			}
		default:
			// read a small tail for diagnostics then return
			tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return perr.Unavailablef("warmer rejected urls: status %d body %s", resp.StatusCode, strings.TrimSpace(string(tail)))
		}
	}
}

func (c *Client) backoff(ctx context.Context, attempt int, msg string) error {
	d := c.opts.RetryBase << uint(attempt)
	if d > maxBackoff || d <= 0 {
		d = maxBackoff
	}
	c.log.Warn().Dur("retry_in", d).Int("attempt", attempt).Msg(msg)
	return perr.FromContext(c.sleep(ctx, d))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 64<<10))
	return rc.Close()
}
