// Package rootdomain extracts registrable root domains from URLs.
//
// It is deliberately a heuristic: a fixed set of two-part public suffixes
// instead of the full public-suffix list, and no network lookups. The
// extension lookup path only needs "good enough" canonicalization for the
// domains stored on products.
package rootdomain

import (
	"net/url"
	"strings"
)

// twoPartTLDs is the fixed set of registrable two-part suffixes we handle.
var twoPartTLDs = map[string]struct{}{
	"co.uk":  {},
	"com.au": {},
	"co.nz":  {},
	"co.jp":  {},
	"com.br": {},
	"co.in":  {},
}

// Extract returns the root domain of rawURL.
//
//	https://www.netflix.com/signup -> netflix.com
//	https://app.slack.com/client   -> slack.com
//	https://foo.bar.co.uk          -> bar.co.uk
//	https://zoom.us/join           -> zoom.us
//
// Extract is total: malformed input degrades to returning the input-derived
// hostname as-is, never an error.
func Extract(rawURL string) string {
	hostname := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		// Bare hostnames without a scheme parse with an empty host and the
		// hostname in the path component.
		hostname = u.Host
		if hostname == "" {
			hostname = u.Path
		}
	}

	hostname = strings.TrimPrefix(hostname, "www.")

	parts := strings.Split(hostname, ".")
	if len(parts) >= 3 {
		potentialTLD := strings.Join(parts[len(parts)-2:], ".")
		if _, ok := twoPartTLDs[potentialTLD]; ok {
			return strings.Join(parts[len(parts)-3:], ".")
		}
		return strings.Join(parts[len(parts)-2:], ".")
	}

	return hostname
}

// Base strips a single extra label layer: for a domain with more than two
// labels it returns the last two joined, otherwise the domain unchanged.
// The extension check uses it to retry "app.notion.so" as "notion.so".
func Base(domain string) string {
	parts := strings.Split(domain, ".")
	if len(parts) > 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return domain
}
