package cookiemodel

// ScanMode selects which scanner runs a request (spec §4).
type ScanMode string

const (
	ModeQuick      ScanMode = "quick"
	ModeDeep       ScanMode = "deep"
	ModeEnterprise ScanMode = "enterprise"
)

// ClassificationCategory is the final bucket a cookie is placed into
// (spec §4.1).
type ClassificationCategory string

const (
	CategoryStrictlyNecessary ClassificationCategory = "strictly_necessary"
	CategoryFunctional        ClassificationCategory = "functional"
	CategoryAnalytics         ClassificationCategory = "analytics"
	CategoryAdvertising       ClassificationCategory = "advertising"
	CategoryUnknown           ClassificationCategory = "unknown"
)

// ClassificationSource records which stage of the resolution pipeline
// produced a cookie's category (spec §4.1), so the caller can tell a vendor
// match apart from an ML guess.
type ClassificationSource string

const (
	SourceOverride  ClassificationSource = "domain_override"
	SourceVendor    ClassificationSource = "vendor_list"
	SourceRuleEngine ClassificationSource = "rule_engine"
	SourceML        ClassificationSource = "ml_model"
	SourceFallback  ClassificationSource = "fallback"
)

// ClassifiedCookie is an AggregatedCookie decorated with a classification
// verdict (spec §4.1).
type ClassifiedCookie struct {
	AggregatedCookie
	Category        ClassificationCategory
	Source          ClassificationSource
	Confidence      float64
	RequiresReview  bool
	IsThirdParty    bool
	VendorName      string
	Evidence        []string
}

// ScanResult is the top-level output of a completed scan (spec §3).
type ScanResult struct {
	ScanID          string
	Domain          string
	Mode            ScanMode
	Cookies         []ClassifiedCookie
	Storage         StorageSnapshot
	PagesScanned    int
	PagesVisited    []string
	PagesFailed     []FailedPage
	Cancelled       bool
	StartedAt       string // RFC3339
	CompletedAt     string // RFC3339
	DurationSeconds float64
}

// CompletionEvent is the outbox-style record emitted when a scan finishes,
// shaped for a consumer (notification, audit, downstream index) that only
// needs the summary, not the full cookie list.
type CompletionEvent struct {
	EventType       string
	ScanID          string
	Domain          string
	Mode            ScanMode
	CookieCount     int
	ThirdPartyCount int
	UnknownCount    int
	PagesScanned    int
	PagesFailedCount int
	CompletedAt     string
}

// CompletionEvent builds the outbox record for this result.
func (r ScanResult) CompletionEvent() CompletionEvent {
	thirdParty, unknown := 0, 0
	for _, c := range r.Cookies {
		if c.IsThirdParty {
			thirdParty++
		}
		if c.Category == CategoryUnknown {
			unknown++
		}
	}
	return CompletionEvent{
		EventType:        "scan.completed",
		ScanID:           r.ScanID,
		Domain:           r.Domain,
		Mode:             r.Mode,
		CookieCount:      len(r.Cookies),
		ThirdPartyCount:  thirdParty,
		UnknownCount:     unknown,
		PagesScanned:     r.PagesScanned,
		PagesFailedCount: len(r.PagesFailed),
		CompletedAt:      r.CompletedAt,
	}
}
