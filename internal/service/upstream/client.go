// Package upstream talks to the registry REST API that owns the managed resources.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/janisto/enseada-console/internal/listpage"
	"github.com/janisto/enseada-console/internal/platform/auth"
	applog "github.com/janisto/enseada-console/internal/platform/logging"
	"github.com/janisto/enseada-console/internal/platform/pagination"
)

const (
	defaultBaseURL = "http://localhost:9623"
	apiPrefix      = "/api/v1/"
	userAgent      = "enseada-console"
	acceptHeader   = "application/json"
	defaultTimeout = 10 * time.Second
)

// Client holds the connection settings shared by every resource collection.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the registry root URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithToken sets a fixed bearer token. Without it, the token on the request context is used.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithRateLimit caps outbound requests per second. Non-positive rps disables the limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// NewClient creates a registry client. A nil httpClient gets a traced client with a timeout.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   defaultTimeout,
		}
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collection is a listpage.Service over one registry collection such as "users".
type Collection[T any] struct {
	client *Client
	path   string
}

// NewCollection binds c to the collection at path.
func NewCollection[T any](c *Client, path string) *Collection[T] {
	return &Collection[T]{client: c, path: strings.Trim(path, "/")}
}

// Accessor returns a listpage.Accessor that checks for credentials on every call,
// so the collection is only reachable from a request that carries a token.
func Accessor[T any](c *Client, path string) listpage.Accessor[T] {
	col := NewCollection[T](c, path)
	return func(ctx context.Context) (listpage.Service[T], error) {
		if c.token == "" {
			if _, ok := auth.TokenFromContext(ctx); !ok {
				return nil, &UpstreamError{Kind: ErrorKindUnauthorized, Status: http.StatusUnauthorized, cause: ErrUnauthorized}
			}
		}
		return col, nil
	}
}

// List fetches GET {base}/api/v1/{path}?offset=&limit=.
func (col *Collection[T]) List(ctx context.Context, q pagination.Query) (pagination.Page[T], error) {
	q = q.Normalize()
	query := url.Values{
		"offset": {strconv.Itoa(q.Offset)},
		"limit":  {strconv.Itoa(q.Limit)},
	}

	resp, err := col.client.doRequest(ctx, http.MethodGet, apiPrefix+col.path, query)
	if err != nil {
		return pagination.Page[T]{}, fmt.Errorf("fetching %s: %w", col.path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var page pagination.Page[T]
	if err := col.client.decodeResponse(ctx, resp, &page); err != nil {
		return pagination.Page[T]{}, err
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page, nil
}

// Remove issues DELETE {base}/api/v1/{path}/{id}. The identifier is escaped as a single
// path segment.
func (col *Collection[T]) Remove(ctx context.Context, id string) error {
	resp, err := col.client.doRequest(ctx, http.MethodDelete, apiPrefix+col.path+"/"+url.PathEscape(id), nil)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", col.path, id, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := col.client.decodeResponse(ctx, resp, nil); err != nil {
		applog.LogAuditEvent(ctx, "delete", col.path, id, applog.AuditFailure,
			map[string]any{"error": string(errorKind(err))})
		return err
	}

	applog.LogAuditEvent(ctx, "delete", col.path, id, applog.AuditSuccess, nil)
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", userAgent)
	if token := c.bearerToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpClient.Do(req)
}

func (c *Client) bearerToken(ctx context.Context) string {
	if c.token != "" {
		return c.token
	}
	token, _ := auth.TokenFromContext(ctx)
	return token
}

// decodeResponse decodes a 2xx body into target, or maps the status to an UpstreamError.
// A nil target discards the body.
func (c *Client) decodeResponse(ctx context.Context, resp *http.Response, target any) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if target == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("decoding registry response: %w", err)
		}
		return nil
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return upstreamErrorFromResponse(resp, ErrorKindNotFound, ErrNotFound)
	case http.StatusUnauthorized:
		return upstreamErrorFromResponse(resp, ErrorKindUnauthorized, ErrUnauthorized)
	case http.StatusForbidden:
		applog.LogWarn(ctx, "registry access denied", zap.Int("status", resp.StatusCode))
		return upstreamErrorFromResponse(resp, ErrorKindForbidden, ErrForbidden)
	case http.StatusTooManyRequests:
		applog.LogWarn(ctx, "registry rate limit exceeded",
			zap.Int("status", resp.StatusCode),
			zap.String("Retry-After", resp.Header.Get("Retry-After")),
		)
		return upstreamErrorFromResponse(resp, ErrorKindRateLimited, ErrRateLimited)
	}

	return upstreamErrorFromResponse(resp, ErrorKindUpstream, ErrUpstream)
}

func upstreamErrorFromResponse(resp *http.Response, kind ErrorKind, cause error) *UpstreamError {
	return &UpstreamError{
		Kind:       kind,
		Status:     resp.StatusCode,
		RetryAfter: strings.TrimSpace(resp.Header.Get("Retry-After")),
		cause:      cause,
	}
}

func errorKind(err error) ErrorKind {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return ErrorKindUpstream
}
