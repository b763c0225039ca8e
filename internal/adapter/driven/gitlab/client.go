// Package gitlab implements the GitLabClient port over the GitLab REST API v4.
package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-querystring/query"

	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/model"
	"github.com/ericfisherdev/gitlab-bulk-tools/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitLabClient = (*Client)(nil)

// apiRoot is joined onto the user-supplied server URL.
const apiRoot = "api/v4/"

// UserAgent identifies this tool to GitLab.
const UserAgent = "gitlab-bulk-tools"

// Client talks to exactly one GitLab host with one bearer token. It is safe
// for concurrent use; its configuration never changes after construction.
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. The redirect policy is
// always overridden so the client never leaves its host.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		clone := *hc
		c.http = &clone
	}
}

// NewClient parses baseURL (e.g. "https://gitlab.example.com") and joins it
// with the API root. A URL that does not parse, or lacks an http(s) scheme or a
// host, fails here with a *driven.ConfigError before any request is made.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	u, err := parseServerURL(baseURL)
	if err != nil {
		return nil, err
	}
	return newClient(u.ResolveReference(&url.URL{Path: apiRoot}), token, opts...), nil
}

// NewClientFromEndpoint rebuilds a client from an Endpoint previously obtained
// via Client.Endpoint. The URL is used as is, without joining the API root again.
func NewClientFromEndpoint(ep model.Endpoint, opts ...Option) (*Client, error) {
	u, err := parseServerURL(ep.URL)
	if err != nil {
		return nil, err
	}
	return newClient(u, ep.Token, opts...), nil
}

func newClient(u *url.URL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: u,
		token:   token,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return c
}

func parseServerURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &driven.ConfigError{URL: raw, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &driven.ConfigError{URL: raw, Err: fmt.Errorf("unsupported or missing scheme in %q", raw)}
	}
	if u.Host == "" {
		return nil, &driven.ConfigError{URL: raw, Err: fmt.Errorf("missing host in %q", raw)}
	}
	return u, nil
}

// Endpoint returns the API root URL and token of the client.
func (c *Client) Endpoint() model.Endpoint {
	return model.Endpoint{URL: c.baseURL.String(), Token: c.token}
}

// BaseURL returns the API root the client resolves relative paths against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// String returns the GitLab host name.
func (c *Client) String() string {
	return c.baseURL.Hostname()
}

// Send performs one request against the API and decodes the response into T.
// path is relative to the API root; opts, when non-nil, is a struct encoded
// into the query string with go-querystring `url` tags.
//
// Failures are classified as *driven.TransportError (no response),
// *driven.HTTPStatusError (status > 299, including redirects) or
// *driven.DecodeError (body did not decode into T).
func Send[T any](ctx context.Context, c *Client, method, path string, opts any) (T, error) {
	var zero T

	req, err := c.newRequest(ctx, method, path, opts)
	if err != nil {
		return zero, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return zero, &driven.TransportError{Err: err}
	}
	defer resp.Body.Close()

	slog.Debug("gitlab api call",
		"method", method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return zero, &driven.HTTPStatusError{Status: resp.StatusCode, Body: string(body)}
	}

	var value T
	if err := json.NewDecoder(resp.Body).Decode(&value); err != nil {
		return zero, &driven.DecodeError{Err: err}
	}
	return value, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, opts any) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parsing request path %q: %w", path, err)
	}
	u := c.baseURL.ResolveReference(ref)

	if opts != nil {
		q, err := query.Values(opts)
		if err != nil {
			return nil, fmt.Errorf("encoding query for %s: %w", path, err)
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", path, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}
