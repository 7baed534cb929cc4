package httpclient

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultRetryCount = 4
	retryBaseDelay    = 10 * time.Second
)

// Response is the subset of an HTTP response the fetchers need.
type Response interface {
	StatusCode() int
	Body() []byte
}

// Client issues GET requests with per-call header overrides.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// restyClient implements Client on top of resty with retries and
// cache-busting on retry attempts.
type restyClient struct {
	rc *resty.Client
}

// NewRestyClient builds a Client with the given request timeout.
func NewRestyClient(timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	rc := resty.New().
		SetTimeout(timeout).
		SetRetryCount(defaultRetryCount).
		SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
			attempt := resp.Request.Attempt
			delay := time.Duration(attempt) * retryBaseDelay
			jitter := time.Duration(rand.Int63n(int64(2 * time.Second)))
			return delay + jitter, nil
		}).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			code := resp.StatusCode()
			return code == http.StatusTooManyRequests || code >= 500
		}).
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			if req.Attempt > 1 {
				req.SetQueryParam("t", strconv.FormatInt(time.Now().Unix(), 10))
			}
			return nil
		})

	return &restyClient{rc: rc}
}

// Get fetches the URL with the provided headers.
func (c *restyClient) Get(ctx context.Context, rawURL string, headers map[string]string) (Response, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	req := c.rc.R().SetContext(ctx)
	for k, v := range headers {
		req.SetHeader(k, v)
	}

	resp, err := req.Get(rawURL)
	if err != nil {
		return nil, err
	}
	return &restyResponse{resp: resp}, nil
}

type restyResponse struct {
	resp *resty.Response
}

func (r *restyResponse) StatusCode() int { return r.resp.StatusCode() }
func (r *restyResponse) Body() []byte    { return r.resp.Body() }
