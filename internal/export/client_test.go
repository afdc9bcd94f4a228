package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newthinker/ampsync/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedServer returns each status in sequence, then repeats the last.
func scriptedServer(t *testing.T, statuses []int, body string) (*httptest.Server, *[]*http.Request) {
	t.Helper()
	var requests []*http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Clone(context.Background()))
		i := len(requests) - 1
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		w.WriteHeader(statuses[i])
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestClient(url string, delay time.Duration, maxAttempts int) (*Client, *[]time.Duration) {
	c := New(url, delay, maxAttempts, zap.NewNop(), nil)
	var slept []time.Duration
	c.sleep = func(d time.Duration) { slept = append(slept, d) }
	return c, &slept
}

func TestFetch_Success(t *testing.T) {
	srv, requests := scriptedServer(t, []int{200}, "archive-bytes")
	c, slept := newTestClient(srv.URL, time.Second, 5)

	body, err := c.Fetch(context.Background(), Credentials{APIKey: "k", SecretKey: "s"},
		"20251110T00", "20251110T23")
	require.NoError(t, err)
	assert.Equal(t, "archive-bytes", string(body))
	assert.Len(t, *requests, 1)
	assert.Empty(t, *slept)

	req := (*requests)[0]
	user, pass, ok := req.BasicAuth()
	require.True(t, ok, "expected basic auth")
	assert.Equal(t, "k", user)
	assert.Equal(t, "s", pass)
	assert.Equal(t, "20251110T00", req.URL.Query().Get("start"))
	assert.Equal(t, "20251110T23", req.URL.Query().Get("end"))
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	srv, requests := scriptedServer(t, []int{503, 503, 200}, "ok")
	c, slept := newTestClient(srv.URL, time.Second, 5)

	body, err := c.Fetch(context.Background(), Credentials{}, "20251110T00", "20251110T00")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Len(t, *requests, 3)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, *slept)
}

func TestFetch_RateLimitDoublesDelay(t *testing.T) {
	srv, requests := scriptedServer(t, []int{429, 200}, "ok")
	c, slept := newTestClient(srv.URL, time.Second, 5)

	_, err := c.Fetch(context.Background(), Credentials{}, "20251110T00", "20251110T00")
	require.NoError(t, err)
	assert.Len(t, *requests, 2)
	assert.Equal(t, []time.Duration{2 * time.Second}, *slept)
}

func TestFetch_MaxAttemptsExhausted(t *testing.T) {
	srv, requests := scriptedServer(t, []int{500}, "boom")
	c, _ := newTestClient(srv.URL, time.Second, 5)

	_, err := c.Fetch(context.Background(), Credentials{}, "20251110T00", "20251110T00")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMaxAttempts)
	assert.Len(t, *requests, 5)
}

func TestFetch_NonRetryableFailsImmediately(t *testing.T) {
	srv, requests := scriptedServer(t, []int{403}, "forbidden")
	c, slept := newTestClient(srv.URL, time.Second, 5)

	_, err := c.Fetch(context.Background(), Credentials{}, "20251110T00", "20251110T00")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrFetch)
	assert.NotErrorIs(t, err, core.ErrMaxAttempts)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "forbidden")
	assert.Len(t, *requests, 1)
	assert.Empty(t, *slept)
}

func TestFetch_TransportErrorFailsImmediately(t *testing.T) {
	c, _ := newTestClient("http://127.0.0.1:1", time.Second, 5)

	_, err := c.Fetch(context.Background(), Credentials{}, "20251110T00", "20251110T00")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrFetch)
}
