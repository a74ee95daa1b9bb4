// Package source holds helpers shared by the platform adapters.
package source

import (
	"fmt"
	"net/url"
	"strings"

	"premise_fetcher/internal/domain"
)

// ParseURL parses a user supplied URL, defaulting the scheme to https, and checks
// that its host is one of domains or a subdomain of one.
func ParseURL(raw string, domains ...string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrValidation)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url %q", domain.ErrValidation, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", domain.ErrValidation, u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: host %q is not one of %v", domain.ErrValidation, host, domains)
}

// PathSegments splits a URL path into its non-empty segments.
func PathSegments(u *url.URL) []string {
	var out []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ClampLimit applies a default and an optional upper bound to a requested item count.
// A negative limit is a validation error; ceiling <= 0 means no upper bound.
func ClampLimit(limit, def, ceiling int) (int, error) {
	switch {
	case limit < 0:
		return 0, fmt.Errorf("%w: limit must not be negative", domain.ErrValidation)
	case limit == 0:
		return def, nil
	case ceiling > 0 && limit > ceiling:
		return ceiling, nil
	}
	return limit, nil
}

// CheckSort returns order, or def when order is empty, if it is one of allowed.
func CheckSort(order, def string, allowed ...string) (string, error) {
	if order == "" {
		return def, nil
	}
	for _, a := range allowed {
		if order == a {
			return order, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported sort order %q, expected one of %v", domain.ErrValidation, order, allowed)
}
