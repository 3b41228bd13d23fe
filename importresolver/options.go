// Package importresolver resolves an @import tree attached to a parsed
// cataract.Stylesheet: fetching each referenced file, recursively parsing
// and resolving its own imports, composing media context, and splicing the
// result into the parent at the position the @import was declared
// (spec.md §4.6).
package importresolver

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Options configures a resolution pass. The zero value is not usable
// directly; construct with NewOptions, which applies the documented
// defaults.
type Options struct {
	MaxDepth        int
	AllowedSchemes  map[string]bool
	Extensions      map[string]bool
	Timeout         time.Duration
	FollowRedirects bool
	MaxRedirects    int
	BasePath        string
	BaseURI         string
	Fetcher         Fetcher
	Logger          *zap.Logger
}

// Option mutates an Options during construction.
type Option func(*Options)

// NewOptions returns an Options populated with spec.md §4.6 defaults:
// max_depth=5, allowed_schemes={https}, extensions={css, ""} (extensionless
// paths permitted), timeout=10s, follow_redirects=true, max_redirects=10,
// and a DefaultFetcher.
func NewOptions(opts ...Option) Options {
	o := Options{
		MaxDepth:        5,
		AllowedSchemes:  map[string]bool{"https": true},
		Extensions:      map[string]bool{"css": true, "": true},
		Timeout:         10 * time.Second,
		FollowRedirects: true,
		MaxRedirects:    10,
		Logger:          zap.NewNop(),
	}
	o.Fetcher = &DefaultFetcher{}
	for _, f := range opts {
		f(&o)
	}
	return o
}

// WithMaxDepth overrides the import-nesting depth limit.
func WithMaxDepth(n int) Option {
	return func(o *Options) { o.MaxDepth = n }
}

// WithAllowedSchemes overrides the permitted URL schemes.
func WithAllowedSchemes(schemes ...string) Option {
	return func(o *Options) {
		o.AllowedSchemes = make(map[string]bool, len(schemes))
		for _, s := range schemes {
			o.AllowedSchemes[s] = true
		}
	}
}

// WithExtensions overrides the permitted URL path extensions (without the
// leading dot; "" permits extensionless paths).
func WithExtensions(exts ...string) Option {
	return func(o *Options) {
		o.Extensions = make(map[string]bool, len(exts))
		for _, e := range exts {
			o.Extensions[e] = true
		}
	}
}

// WithTimeout overrides the per-fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithFollowRedirects overrides whether the default HTTP fetcher follows
// redirects.
func WithFollowRedirects(follow bool) Option {
	return func(o *Options) { o.FollowRedirects = follow }
}

// WithMaxRedirects bounds how many redirects the default HTTP fetcher
// will follow for a single @import GET.
func WithMaxRedirects(n int) Option {
	return func(o *Options) { o.MaxRedirects = n }
}

// WithBasePath sets the base directory against which relative file-scheme
// imports resolve.
func WithBasePath(path string) Option {
	return func(o *Options) { o.BasePath = path }
}

// WithBaseURI sets the base URI against which relative HTTP imports resolve.
func WithBaseURI(uri string) Option {
	return func(o *Options) { o.BaseURI = uri }
}

// WithFetcher overrides the pluggable fetcher.
func WithFetcher(f Fetcher) Option {
	return func(o *Options) { o.Fetcher = f }
}

// WithLogger overrides the structured logger (default: a no-op logger).
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func (o Options) log() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) fetchContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), o.Timeout)
}
