package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/kbeauty-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
	"github.com/angelmondragon/kbeauty-storefront/pkg/metrics"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// Client talks to the commerce REST API. Reads are retried by the transport on
// connection failures; writes never are.
type Client struct {
	http    *resty.Client
	rl      ratelimit.Limiter
	metrics *metrics.UpstreamMetrics
	logg    *logger.Logger
}

// Request describes a single call. Token is the caller's bearer token, forwarded as-is.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Token  string
	Body   any
}

func New(cfg config.UpstreamConfig, m *metrics.UpstreamMetrics, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("upstream base url is required")
	}
	rps := cfg.RequestsPerSecond
	if rps < 1 {
		rps = 1
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(4*cfg.RetryWait).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")

	return &Client{
		http:    httpClient,
		rl:      ratelimit.New(rps),
		metrics: m,
		logg:    logg,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	if c == nil || c.http == nil {
		return nil
	}
	return c.http.Close()
}

// Get issues a GET and returns the raw body of a 2xx response.
func (c *Client) Get(ctx context.Context, path string, query url.Values, token string) ([]byte, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Token: token})
}

// Ping checks that the commerce API answers a cheap read.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Get(ctx, "/categories", nil, "")
	return err
}

// Do executes req. Non-2xx answers become typed errors carrying an *HTTPError cause.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	endpoint := req.Method + " " + templatePath(req.Path)

	// Take cannot be interrupted; the wait is bounded by one slot at the configured rate.
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request cancelled")
	}
	c.rl.Take()
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request cancelled")
	}

	r := c.http.R().SetContext(ctx)
	if req.Token != "" {
		r = r.SetAuthToken(req.Token)
	}
	if len(req.Query) > 0 {
		r = r.SetQueryParamsFromValues(req.Query)
	}
	if req.Body != nil {
		r = r.SetHeader("Content-Type", "application/json").SetBody(req.Body)
	}

	start := time.Now()
	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		c.metrics.Observe(endpoint, metrics.OutcomeTransport, time.Since(start))
		if ctx.Err() != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "request cancelled")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s failed", endpoint))
	}
	c.metrics.Observe(endpoint, metrics.OutcomeForStatus(resp.StatusCode()), time.Since(start))

	body := resp.Bytes()
	if resp.IsError() {
		httpErr := &HTTPError{
			Method: req.Method,
			Path:   req.Path,
			Status: resp.StatusCode(),
			Body:   string(body),
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeForStatus(httpErr.Status), httpErr, httpErr.publicMessage())
	}
	return body, nil
}

// DecodeJSON unmarshals data into out, reporting shape errors as dependency failures.
func DecodeJSON(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unexpected upstream response shape")
	}
	return nil
}

// templatePath collapses identifiers so metric labels stay bounded:
// /products/abc123 -> /products/:id.
func templatePath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) > 1 {
		for i := 1; i < len(segments); i++ {
			segments[i] = ":id"
		}
	}
	return "/" + strings.Join(segments, "/")
}
