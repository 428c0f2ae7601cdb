package cookiemodel

// AggregatedCookie is the per-domain merge of every CookieObservation seen
// for a (name, domain) pair across all pages of one scan (spec §3).
type AggregatedCookie struct {
	Name         string
	Domain       string
	Path         string
	Expires      string
	HTTPOnly     bool
	Secure       bool
	SameSite     SameSite
	HashedValue  string
	Size         int
	FoundOnPages []string
}

// AggregateKey is the (name, domain) identity used for merging across pages
// (spec §3) — note this is coarser than CookieObservation.IdentityKey, which
// also carries Path; two cookies differing only in Path collapse into one
// AggregatedCookie per spec's explicit identity rule.
type AggregateKey struct {
	Name   string
	Domain string
}

// Aggregator merges PageResults into AggregatedCookies and storage maps.
//
// Feed() must be called with PageResults in URL-input order (the index the
// URL was scheduled at), not completion order — concurrent Page Visitors may
// finish in any order, but the scanner collects results into a slice sized
// to the URL list and feeds them back in that slice's order, which keeps
// aggregation deterministic per spec §5/§8 property 8: the first occurrence
// by URL index supplies the canonical properties, later occurrences only
// append to FoundOnPages.
type Aggregator struct {
	order   []AggregateKey
	cookies map[AggregateKey]*AggregatedCookie
	local   map[string]string
	session map[string]string
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		cookies: make(map[AggregateKey]*AggregatedCookie),
		local:   make(map[string]string),
		session: make(map[string]string),
	}
}

// Feed folds one PageResult into the running aggregate. Failed pages
// contribute nothing (their cookies/storage were never captured).
func (a *Aggregator) Feed(pr PageResult) {
	if !pr.Success {
		return
	}

	for _, c := range pr.Cookies {
		key := AggregateKey{Name: c.Name, Domain: c.Domain}
		existing, ok := a.cookies[key]
		if !ok {
			existing = &AggregatedCookie{
				Name:        c.Name,
				Domain:      c.Domain,
				Path:        c.Path,
				Expires:     c.Expires,
				HTTPOnly:    c.HTTPOnly,
				Secure:      c.Secure,
				SameSite:    c.SameSite,
				HashedValue: c.HashedValue,
				Size:        c.Size,
			}
			a.cookies[key] = existing
			a.order = append(a.order, key)
		}
		existing.appendPage(pr.URL)
	}

	// Storage maps are shallow-merged last-writer-wins per key (spec §4.3);
	// since Feed is called in URL-index order, "last" means highest index.
	for k, v := range pr.Storage.LocalStorage {
		a.local[k] = v
	}
	for k, v := range pr.Storage.SessionStorage {
		a.session[k] = v
	}
}

func (c *AggregatedCookie) appendPage(url string) {
	for _, seen := range c.FoundOnPages {
		if seen == url {
			return
		}
	}
	c.FoundOnPages = append(c.FoundOnPages, url)
}

// Cookies returns the aggregated cookies in first-seen order.
func (a *Aggregator) Cookies() []AggregatedCookie {
	out := make([]AggregatedCookie, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, *a.cookies[key])
	}
	return out
}

// Storage returns the merged storage snapshot.
func (a *Aggregator) Storage() StorageSnapshot {
	return StorageSnapshot{LocalStorage: a.local, SessionStorage: a.session}
}
