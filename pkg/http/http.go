// Package http delivers outgoing webhook calls: low-stock alerts and Slack
// messages. Transport errors and 5xx answers are retried with exponential
// backoff; any other status is handed back to the caller on the first try.
//
//	resp, err := http.Default.PostJSON(ctx, url, alert, nil)
//	if err == nil {
//	    err = resp.Err()
//	}
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	gohttp "net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/shashiranjanraj/bodega/pkg/logger"
	"github.com/shashiranjanraj/bodega/pkg/reqid"
)

// Client holds the retry policy around an *http.Client.
type Client struct {
	HTTP *gohttp.Client
	// Attempts counts the first try. Values below 1 mean a single try.
	Attempts int
	// Backoff is the wait after the first failure; it doubles afterwards.
	Backoff time.Duration
	// Timeout bounds each attempt.
	Timeout time.Duration
}

// New returns a client with three attempts and a 10s per-attempt timeout.
func New() *Client {
	return &Client{
		HTTP: &gohttp.Client{Transport: &gohttp.Transport{
			Proxy:               gohttp.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		}},
		Attempts: 3,
		Backoff:  500 * time.Millisecond,
		Timeout:  10 * time.Second,
	}
}

// Default is shared by the notifier. Tests swap Default.HTTP.Transport.
var Default = New()

// StatusError is returned when the last attempt ended in a 5xx answer.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http: server returned %d: %s", e.StatusCode, e.Body)
}

// Response is a fully read answer.
type Response struct {
	StatusCode int
	Header     gohttp.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// Err turns a non-2xx answer into an error.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("http: endpoint answered %d: %s", r.StatusCode, clip(r.Body))
}

// Decode unmarshals the JSON body into dest.
func (r *Response) Decode(dest any) error {
	if err := json.Unmarshal(r.Body, dest); err != nil {
		return fmt.Errorf("http: decode response: %w", err)
	}
	return nil
}

// PostJSON marshals payload and POSTs it with the extra headers.
func (c *Client) PostJSON(ctx context.Context, url string, payload any, headers map[string]string) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("http: marshal payload: %w", err)
	}
	return c.send(ctx, gohttp.MethodPost, url, body, headers)
}

// Get fetches url, used by readiness probes of webhook receivers.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	return c.send(ctx, gohttp.MethodGet, url, nil, nil)
}

func (c *Client) send(ctx context.Context, method, url string, body []byte, headers map[string]string) (*Response, error) {
	attempts := max(c.Attempts, 1)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.Backoff
	policy.RandomizationFactor = 0
	policy.Multiplier = 2
	policy.MaxElapsedTime = 0

	var resp *Response
	try := func() error {
		r, err := c.once(ctx, method, url, body, headers)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		if r.StatusCode >= 500 {
			return &StatusError{StatusCode: r.StatusCode, Body: clip(r.Body)}
		}
		resp = r
		return nil
	}
	warn := func(err error, wait time.Duration) {
		logger.WithCtx(ctx).Warn("http: retrying webhook", "method", method, "url", url, "wait", wait, "error", err)
	}

	err := backoff.RetryNotify(try, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(attempts-1)), ctx), warn)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("http: %s %s failed after %d attempts: %w", method, url, attempts, err)
		}
		return nil, fmt.Errorf("http: %s %s: %w", method, url, err)
	}
	return resp, nil
}

func (c *Client) once(ctx context.Context, method, url string, body []byte, headers map[string]string) (*Response, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := gohttp.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if id := reqid.FromCtx(ctx); id != "" {
		req.Header.Set(reqid.Header, id)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &Response{StatusCode: res.StatusCode, Header: res.Header, Body: raw}, nil
}

func clip(b []byte) string {
	if len(b) <= 200 {
		return string(b)
	}
	return string(b[:200]) + "..."
}
