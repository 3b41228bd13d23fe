package cataract

import "github.com/jamescook/cataract/network"

// DefaultURIResolver resolves relative url(...) references against a base
// URI. It delegates to network.ResolveURL for base/reference
// resolution. Not a full URI-normalization
// library (out of scope per spec.md §1) — just enough resolution to make
// AbsolutePaths usable without a caller-supplied resolver.
type DefaultURIResolver struct{}

// Resolve implements URIResolver. On any resolution failure it returns
// relative unchanged rather than erroring, since url() rewriting is
// best-effort.
func (DefaultURIResolver) Resolve(base, relative string) string {
	if base == "" {
		return relative
	}
	resolved, err := network.ResolveURL(base, relative)
	if err != nil {
		return relative
	}
	return resolved
}

// isRelativeURL reports whether a url() token content should be rewritten:
// no scheme, not a fragment, not a data: URI (spec.md §4.1 "URL rewriting").
func isRelativeURL(u string) bool {
	if u == "" {
		return false
	}
	if u[0] == '#' {
		return false
	}
	if network.IsDataURL(u) {
		return false
	}
	return !network.IsAbsoluteURL(u)
}
