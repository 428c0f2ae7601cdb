// Package classify resolves an AggregatedCookie down to a ClassificationCategory
// through the ordered pipeline from spec §4.1: per-domain override, vendor
// list, regex rule engine, ML feature model, then Unknown fallback.
package classify

import "strings"

// RegistrableDomain strips a leading "www." and any subdomain labels beyond
// the last two, approximating the public-suffix "registrable domain" used to
// decide first- vs third-party without pulling in a full PSL dependency —
// good enough for the two- and three-label domains this scanner targets.
func RegistrableDomain(host string) string {
	host = strings.TrimPrefix(strings.ToLower(host), ".")
	host = strings.TrimPrefix(host, "www.")
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// IsThirdParty reports whether a cookie's domain falls outside the site
// being scanned (spec §4.1's third-party flag).
func IsThirdParty(scannedDomain, cookieDomain string) bool {
	return RegistrableDomain(scannedDomain) != RegistrableDomain(cookieDomain)
}
