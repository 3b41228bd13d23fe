package cataract

import "go.uber.org/zap"

// URIResolver rewrites a relative URL found inside a url(...) token to an
// absolute one, given the stylesheet's base URI (spec.md §6 "URI resolver
// contract").
type URIResolver interface {
	Resolve(base, relative string) string
}

// uriResolverFunc adapts a function to URIResolver.
type uriResolverFunc func(base, relative string) string

func (f uriResolverFunc) Resolve(base, relative string) string { return f(base, relative) }

// ParserOptions configures a Stylesheet's parsing behavior. Use Option
// functions (With...) to set them; the zero value is never constructed
// directly by callers.
type ParserOptions struct {
	// SelectorLists enables grouping of comma-separated selectors under a
	// shared selector_list_id (spec.md §4.1, default true).
	SelectorLists bool
	// RaiseParseErrors upgrades soft recoveries (malformed declarations,
	// missing ':') into hard parse errors instead of skip-and-continue.
	RaiseParseErrors bool
	// AbsolutePaths rewrites relative url(...) references using BaseURI
	// and URIResolver.
	AbsolutePaths bool
	BaseURI       string
	URIResolver   URIResolver

	// parentImportMediaType/parentImportConditions are not set or read
	// anywhere; the import resolver composes an imported sheet's media
	// after parsing it (importresolver's composeImportMedia).
	parentImportMediaType   string
	parentImportConditions  *string

	logger *zap.Logger
}

func defaultOptions() ParserOptions {
	return ParserOptions{
		SelectorLists: true,
		logger:        zap.NewNop(),
	}
}

// Option configures a Stylesheet or Parser at construction time.
type Option func(*ParserOptions)

// WithLogger attaches a zap logger; soft-recovery warnings and similar
// diagnostics are emitted to it. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *ParserOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSelectorLists toggles selector-list grouping (default true).
func WithSelectorLists(enabled bool) Option {
	return func(o *ParserOptions) { o.SelectorLists = enabled }
}

// WithRaiseParseErrors toggles strict mode (default false).
func WithRaiseParseErrors(enabled bool) Option {
	return func(o *ParserOptions) { o.RaiseParseErrors = enabled }
}

// WithBaseURI sets the base URI used for url(...) rewriting.
func WithBaseURI(uri string) Option {
	return func(o *ParserOptions) { o.BaseURI = uri }
}

// WithAbsolutePaths enables url(...) rewriting against BaseURI, using
// resolver if non-nil or DefaultURIResolver otherwise.
func WithAbsolutePaths(enabled bool, resolver URIResolver) Option {
	return func(o *ParserOptions) {
		o.AbsolutePaths = enabled
		if resolver != nil {
			o.URIResolver = resolver
		} else if o.URIResolver == nil {
			o.URIResolver = DefaultURIResolver{}
		}
	}
}

func (o *ParserOptions) log() *zap.Logger {
	if o.logger == nil {
		return zap.NewNop()
	}
	return o.logger
}
