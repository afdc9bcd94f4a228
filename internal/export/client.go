// Package export implements the client for the analytics export endpoint.
package export

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/newthinker/ampsync/internal/core"
	"go.uber.org/zap"
)

// Credentials carries the export API key pair, passed through as basic auth.
type Credentials struct {
	APIKey    string
	SecretKey string
}

// Recorder receives fetch-level metrics. *metrics.Registry satisfies it.
type Recorder interface {
	RecordFetchRequest(class string)
	RecordFetchRetry()
}

type nopRecorder struct{}

func (nopRecorder) RecordFetchRequest(string) {}
func (nopRecorder) RecordFetchRetry()         {}

// Client fetches export archives with bounded retry. Server errors and rate
// limits retry with a fixed backoff; any other non-200 response fails
// immediately. The attempt budget is per Fetch call.
type Client struct {
	url         string
	httpc       *http.Client
	delay       time.Duration
	maxAttempts int
	sleep       func(time.Duration)
	log         *zap.Logger
	rec         Recorder
}

// New creates an export client. rec may be nil.
func New(url string, delay time.Duration, maxAttempts int, log *zap.Logger, rec Recorder) *Client {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Client{
		url: url,
		httpc: &http.Client{
			Timeout: 10 * time.Minute, // export archives can be large
		},
		delay:       delay,
		maxAttempts: maxAttempts,
		sleep:       time.Sleep,
		log:         log,
		rec:         rec,
	}
}

// Fetch requests the archive for [start, end], both API timestamps
// (YYYYMMDDTHH), possibly equal for a single-hour window. It returns the
// raw archive bytes, or ErrMaxAttempts once the retry budget is spent.
func (c *Client) Fetch(ctx context.Context, creds Credentials, start, end string) ([]byte, error) {
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		c.log.Info("fetching export data",
			zap.String("start", start), zap.String("end", end), zap.Int("attempt", attempt))
		if attempt > 1 {
			c.rec.RecordFetchRetry()
		}

		body, status, err := c.request(ctx, creds, start, end)
		if err != nil {
			return nil, err
		}

		switch {
		case status == http.StatusOK:
			c.rec.RecordFetchRequest("ok")
			c.log.Info("export data fetched", zap.Int("bytes", len(body)))
			return body, nil

		case status >= 500 && status < 600:
			c.rec.RecordFetchRequest("server_error")
			c.log.Warn("export server error, retrying",
				zap.Int("status", status), zap.Duration("delay", c.delay))
			c.sleep(c.delay)

		case status == http.StatusTooManyRequests:
			c.rec.RecordFetchRequest("rate_limited")
			c.log.Warn("export rate limited, retrying",
				zap.Int("status", status), zap.Duration("delay", 2*c.delay))
			c.sleep(2 * c.delay)

		default:
			c.rec.RecordFetchRequest("rejected")
			return nil, core.WrapError(core.ErrFetch,
				fmt.Errorf("status %d: %s", status, truncate(body, 512)))
		}
	}

	return nil, core.WrapError(core.ErrMaxAttempts,
		fmt.Errorf("gave up after %d attempts for %s..%s", c.maxAttempts, start, end))
}

func (c *Client) request(ctx context.Context, creds Credentials, start, end string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, 0, core.WrapError(core.ErrFetch, fmt.Errorf("building request: %w", err))
	}

	q := req.URL.Query()
	q.Set("start", start)
	q.Set("end", end)
	req.URL.RawQuery = q.Encode()
	req.SetBasicAuth(creds.APIKey, creds.SecretKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.rec.RecordFetchRequest("transport")
		return nil, 0, core.WrapError(core.ErrFetch, fmt.Errorf("requesting export: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.rec.RecordFetchRequest("transport")
		return nil, 0, core.WrapError(core.ErrFetch, fmt.Errorf("reading response: %w", err))
	}

	return body, resp.StatusCode, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
