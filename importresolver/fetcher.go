package importresolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jamescook/cataract/network"
)

// Fetcher retrieves the raw CSS text an @import URL refers to. Callers
// supply their own implementation (e.g. one backed by an in-memory cache
// or a sandboxed filesystem); DefaultFetcher covers file:// and plain
// relative-path reads plus http(s) GETs via network.Client (spec.md §4.6).
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, opts Options) (string, error)
}

var sensitivePrefixes = []string{"/etc/", "/proc/", "/sys/", "/dev/"}

// DefaultFetcher implements Fetcher for file paths (resolved against
// Options.BasePath) and http(s) URLs (resolved against Options.BaseURI),
// delegating HTTP to network.Client and caching responses in a
// network.Cache keyed by resolved URL — a resolution pass with diamond
// imports (two sheets importing the same URL) issues that GET once.
type DefaultFetcher struct {
	mu     sync.Mutex
	client *network.Client
	cache  *network.Cache
}

func (f *DefaultFetcher) httpCache() *network.Cache {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cache == nil {
		f.cache = network.NewCache(256)
	}
	return f.cache
}

func (f *DefaultFetcher) httpClient(opts Options) (*network.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client != nil {
		return f.client, nil
	}
	client, err := network.NewClient(
		network.WithTimeout(opts.Timeout),
		network.WithFollowRedirect(opts.FollowRedirects),
		network.WithMaxRedirects(opts.MaxRedirects),
		network.WithUserAgent("cataract-importresolver/1.0"),
	)
	if err != nil {
		return nil, err
	}
	f.client = client
	return client, nil
}

// Fetch retrieves rawURL. file:// and bare (schemeless) paths are read
// from disk relative to opts.BasePath; http/https URLs are GET relative
// to opts.BaseURI.
func (f *DefaultFetcher) Fetch(ctx context.Context, rawURL string, opts Options) (string, error) {
	scheme, path := classifyURL(rawURL)

	if scheme == "file" || scheme == "" {
		full := path
		if !filepath.IsAbs(full) && opts.BasePath != "" {
			full = filepath.Join(opts.BasePath, full)
		}
		for _, prefix := range sensitivePrefixes {
			if strings.HasPrefix(full, prefix) {
				return "", newImportError(ErrSensitivePath, rawURL, "refused sensitive path")
			}
		}
		data, err := os.ReadFile(full)
		if err != nil {
			return "", newImportError(ErrNotFound, rawURL, err.Error())
		}
		return string(data), nil
	}

	if scheme != "http" && scheme != "https" {
		return "", newImportError(ErrDisallowedScheme, rawURL, "unsupported scheme "+scheme)
	}

	resolved := rawURL
	if opts.BaseURI != "" {
		if r, err := network.ResolveURL(opts.BaseURI, rawURL); err == nil {
			resolved = r
		}
	}

	cache := f.httpCache()
	if entry, ok := cache.Get(resolved); ok && !entry.IsExpired() {
		return string(entry.Response.Body), nil
	}

	client, err := f.httpClient(opts)
	if err != nil {
		return "", newImportError(ErrFetch, rawURL, err.Error())
	}
	resp, err := client.Get(ctx, resolved)
	if err != nil {
		return "", newImportError(ErrFetch, rawURL, err.Error())
	}
	if resp.StatusCode >= 400 {
		return "", newImportError(ErrFetch, rawURL, fmt.Sprintf("status %d", resp.StatusCode))
	}
	if !network.IsCSSContentType(resp.ContentType) {
		opts.log().Warn("import response is not text/css",
			zap.String("url", resolved), zap.String("content_type", resp.ContentType))
	}
	cache.Set(resolved, resp, resp.Headers)
	return string(resp.Body), nil
}

// classifyURL splits a URL into its scheme (empty for a bare path) and the
// remaining path/URL text.
func classifyURL(raw string) (scheme, rest string) {
	if strings.HasPrefix(raw, "file://") {
		return "file", strings.TrimPrefix(raw, "file://")
	}
	if i := strings.Index(raw, "://"); i > 0 {
		return raw[:i], raw
	}
	return "", raw
}
