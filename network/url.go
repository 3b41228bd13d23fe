package network

import (
	"fmt"
	"net/url"
	"strings"
)

// ResolveURL resolves ref against base, as a browser resolves a url()
// or @import target against its containing stylesheet. An absolute ref
// (including a data: URL or any other scheme) is returned untouched; a
// fragment-only ref is merged onto base; everything else is resolved per
// RFC 3986.
func ResolveURL(base, ref string) (string, error) {
	if ref == "" {
		return base, nil
	}
	if IsDataURL(ref) {
		return ref, nil
	}
	if strings.HasPrefix(ref, "#") {
		baseURL, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("invalid base URL: %w", err)
		}
		baseURL.Fragment = ref[1:]
		return baseURL.String(), nil
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid reference URL: %w", err)
	}
	if refURL.IsAbs() {
		return refURL.String(), nil
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

// IsAbsoluteURL reports whether urlStr carries its own scheme.
func IsAbsoluteURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	return u.IsAbs()
}

// IsDataURL reports whether urlStr is a data: URL. These are never
// fetched or resolved against a base — the resolver's fetcher refuses
// any scheme outside its allow-list, and data: URLs carry their content
// inline already.
func IsDataURL(urlStr string) bool {
	return strings.HasPrefix(strings.ToLower(urlStr), "data:")
}
