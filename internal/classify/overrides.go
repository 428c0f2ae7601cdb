package classify

import "github.com/arc-self/apps/cookie-scan-core/internal/cookiemodel"

// OverrideEntry pins one cookie name (on one domain) to a category,
// bypassing the vendor list and rule engine entirely (spec §4.1, highest
// priority in the resolution order).
type OverrideEntry struct {
	Category ClassificationCategory
	Notes    string
}

// DomainOverrides holds per-domain, per-cookie-name overrides — the
// operator-maintained table a privacy team uses to correct a misclassified
// cookie without waiting on a vendor-list or model update.
//
// Keyed by (domain, cookieName) only, not the full (domain, cookieName,
// cookieDomain) triple: this scan core has not yet seen two cookies sharing
// a name but set from different cookieDomains within one scan target need
// different overrides. See DESIGN.md.
type DomainOverrides struct {
	entries map[string]map[string]OverrideEntry
}

// NewDomainOverrides builds an override table from domain -> cookie name -> entry.
func NewDomainOverrides(seed map[string]map[string]OverrideEntry) *DomainOverrides {
	if seed == nil {
		seed = make(map[string]map[string]OverrideEntry)
	}
	return &DomainOverrides{entries: seed}
}

// Lookup returns the override for (domain, cookieName), if one exists.
func (d *DomainOverrides) Lookup(domain, cookieName string) (OverrideEntry, bool) {
	if d == nil {
		return OverrideEntry{}, false
	}
	byName, ok := d.entries[domain]
	if !ok {
		return OverrideEntry{}, false
	}
	entry, ok := byName[cookieName]
	return entry, ok
}

// Set installs or replaces a single override. Domains are matched exactly,
// mirroring a config-ID scoped table rather than a wildcard matcher.
func (d *DomainOverrides) Set(domain, cookieName string, entry OverrideEntry) {
	if d.entries[domain] == nil {
		d.entries[domain] = make(map[string]OverrideEntry)
	}
	d.entries[domain][cookieName] = entry
}

// ClassificationCategory is re-exported here for package ergonomics;
// callers normally use cookiemodel.ClassificationCategory directly.
type ClassificationCategory = cookiemodel.ClassificationCategory

const (
	CategoryStrictlyNecessary = cookiemodel.CategoryStrictlyNecessary
	CategoryFunctional        = cookiemodel.CategoryFunctional
	CategoryAnalytics         = cookiemodel.CategoryAnalytics
	CategoryAdvertising       = cookiemodel.CategoryAdvertising
	CategoryUnknown           = cookiemodel.CategoryUnknown
)
