// Package network implements the HTTP transport the import resolver uses
// to fetch external stylesheets (spec.md §4.6): a cookie/redirect-aware
// client plus a Cache-Control-aware response cache (see cache.go) and the
// URL resolution helpers url() rewriting and @import need (see url.go).
package network

import (
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Client fetches @import targets over HTTP(S). It carries cookies across
// requests via a public-suffix-aware jar, since a CDN-fronted stylesheet
// host may set one during a redirect chain.
type Client struct {
	httpClient     *http.Client
	cookieJar      http.CookieJar
	timeout        time.Duration
	maxRedirects   int
	userAgent      string
	followRedirect bool

	mu sync.RWMutex
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithMaxRedirects bounds how many redirects a single fetch will follow
// before it's treated as a failure.
func WithMaxRedirects(n int) ClientOption {
	return func(c *Client) { c.maxRedirects = n }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithFollowRedirect enables or disables redirect following.
func WithFollowRedirect(follow bool) ClientOption {
	return func(c *Client) { c.followRedirect = follow }
}

// NewClient builds a Client, layering opts over its defaults (30s
// timeout, 10 redirects, redirects followed).
func NewClient(opts ...ClientOption) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		cookieJar:      jar,
		timeout:        30 * time.Second,
		maxRedirects:   10,
		userAgent:      "cataract-importresolver/1.0",
		followRedirect: true,
	}
	for _, opt := range opts {
		opt(c)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
	}

	c.httpClient = &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   c.timeout,
	}

	if c.followRedirect {
		c.httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= c.maxRedirects {
				return fmt.Errorf("stopped after %d redirects", c.maxRedirects)
			}
			return nil
		}
	} else {
		c.httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return c, nil
}

// Response is a fetched, fully-buffered HTTP response.
type Response struct {
	StatusCode    int
	Status        string
	Headers       http.Header
	Body          []byte
	ContentType   string
	ContentLength int64
	URL           *url.URL // final URL after redirects
	Cached        bool     // never set by Get or by Cache; always false
}

// Get issues a GET request for urlStr, transparently decoding a
// gzip-encoded body and buffering the result.
func (c *Client) Get(ctx context.Context, urlStr string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/css,*/*;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer gzReader.Close()
		reader = gzReader
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{
		StatusCode:    resp.StatusCode,
		Status:        resp.Status,
		Headers:       resp.Header,
		Body:          body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		URL:           resp.Request.URL,
	}, nil
}

// ParseContentType splits a Content-Type header into its media type and
// charset parameter.
func ParseContentType(contentType string) (mediaType string, charset string) {
	if contentType == "" {
		return "application/octet-stream", ""
	}
	parts := strings.Split(contentType, ";")
	mediaType = strings.TrimSpace(parts[0])
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(strings.ToLower(part), "charset=") {
			charset = strings.ToLower(strings.Trim(part[len("charset="):], `"`))
			break
		}
	}
	return mediaType, charset
}

// IsCSSContentType reports whether contentType names a CSS media type.
// The default fetcher uses this to warn when an @import target doesn't
// look like a stylesheet, rather than to reject it outright — a
// misconfigured server serving CSS as text/plain is common enough that a
// hard failure would be too strict.
func IsCSSContentType(contentType string) bool {
	mediaType, _ := ParseContentType(contentType)
	return strings.ToLower(mediaType) == "text/css"
}
