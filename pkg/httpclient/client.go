// Package httpclient is a small retry-aware client for outgoing JSON calls.
//
//	c := httpclient.New(5*time.Second)
//	resp, err := c.Get(tokenInfoURL).
//	    Query("id_token", raw).
//	    Retry(3, 200*time.Millisecond).
//	    Send(ctx)
//	var out Profile
//	err = resp.JSON(&out)
//
// Network errors and 5xx responses are retried with exponential backoff;
// any other response is returned to the caller as is.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/reflaxess123/obedi/pkg/logger"
)

// Client sends requests through one pooled transport.
type Client struct {
	HTTP    *http.Client
	timeout time.Duration
}

// New returns a Client whose attempts each time out after timeout.
func New(timeout time.Duration) *Client {
	return &Client{
		HTTP: &http.Client{Transport: &http.Transport{
			MaxIdleConns:        50,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}},
		timeout: timeout,
	}
}

// Request is a request being built.
type Request struct {
	c         *Client
	method    string
	url       string
	query     url.Values
	headers   map[string]string
	body      interface{}
	attempts  int
	retryWait time.Duration
}

func (c *Client) Get(rawURL string) *Request  { return c.newRequest(http.MethodGet, rawURL) }
func (c *Client) Post(rawURL string) *Request { return c.newRequest(http.MethodPost, rawURL) }

func (c *Client) newRequest(method, rawURL string) *Request {
	return &Request{
		c:         c,
		method:    method,
		url:       rawURL,
		query:     url.Values{},
		headers:   map[string]string{"Accept": "application/json"},
		attempts:  1,
		retryWait: 200 * time.Millisecond,
	}
}

// Query adds a query string parameter.
func (r *Request) Query(key, value string) *Request {
	r.query.Add(key, value)
	return r
}

// Header sets a request header.
func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Body sets a JSON body.
func (r *Request) Body(v interface{}) *Request {
	r.body = v
	return r
}

// Retry sets the total number of attempts and the first backoff, which
// doubles on every further attempt.
func (r *Request) Retry(attempts int, wait time.Duration) *Request {
	if attempts < 1 {
		attempts = 1
	}
	r.attempts = attempts
	r.retryWait = wait
	return r
}

// Send runs the request, retrying transient failures until ctx is done.
func (r *Request) Send(ctx context.Context) (*Response, error) {
	var lastErr error
	wait := r.retryWait

	for attempt := 1; attempt <= r.attempts; attempt++ {
		resp, err := r.do(ctx)
		switch {
		case err == nil && resp.StatusCode < 500:
			return resp, nil
		case err == nil:
			lastErr = fmt.Errorf("httpclient: status %d", resp.StatusCode)
		default:
			lastErr = err
		}

		if attempt == r.attempts {
			break
		}
		logger.WithCtx(ctx).Warn("httpclient: request failed, retrying",
			"method", r.method, "url", r.url, "attempt", attempt, "backoff", wait, "error", lastErr)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}

	return nil, fmt.Errorf("httpclient: %s %s failed after %d attempts: %w", r.method, r.url, r.attempts, lastErr)
}

func (r *Request) do(ctx context.Context) (*Response, error) {
	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("httpclient: marshal body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	target := r.url
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	if r.c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: build request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: send: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Raw: raw}, nil
}

// Response is a fully read response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Raw        []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON decodes the body into dest.
func (r *Response) JSON(dest interface{}) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("httpclient: decode JSON: %w", err)
	}
	return nil
}
