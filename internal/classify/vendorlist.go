package classify

import "strings"

// VendorEntry is one known cookie-name-to-vendor mapping (spec §4.1). This
// supersedes the cookie-scanner service's flat categorizeCookie switch with
// a registry that also names the vendor and the match basis for evidence.
type VendorEntry struct {
	VendorName string
	Category   ClassificationCategory
	MatchNames []string // exact, case-insensitive cookie names
	MatchAny   []string // substrings, case-insensitive, checked if MatchNames misses
}

// VendorList is the built-in registry of well-known tracking/analytics/
// advertising cookie name families: Google Analytics, Hotjar, Facebook
// Pixel, consent-banner cookies, session/auth cookies.
var VendorList = []VendorEntry{
	{
		VendorName: "Google Analytics",
		Category:   CategoryAnalytics,
		MatchAny:   []string{"_ga", "_gid", "_gat", "utma", "utmb", "utmc", "utmz"},
	},
	{
		VendorName: "Hotjar",
		Category:   CategoryAnalytics,
		MatchAny:   []string{"_hjid", "_hjsession", "_hjincluded"},
	},
	{
		VendorName: "Meta Pixel",
		Category:   CategoryAdvertising,
		MatchAny:   []string{"_fbp", "_fbc", "fr"},
	},
	{
		VendorName: "Google Ads",
		Category:   CategoryAdvertising,
		MatchAny:   []string{"ide", "test_cookie", "_ttp"},
	},
	{
		VendorName: "Microsoft Advertising",
		Category:   CategoryAdvertising,
		MatchAny:   []string{"muid", "anonchk"},
	},
	{
		VendorName: "Consent Management",
		Category:   CategoryFunctional,
		MatchAny:   []string{"cookie_notice", "cookie_consent", "cookieconsent", "gdpr", "euconsent"},
	},
	{
		VendorName: "Locale Preference",
		Category:   CategoryFunctional,
		MatchAny:   []string{"lang", "locale", "language"},
	},
	{
		VendorName: "Platform Session",
		Category:   CategoryStrictlyNecessary,
		MatchAny:   []string{"jsessionid", "phpsessid", "asp.net_sessionid", "cf_clearance", "__cfduid"},
	},
	{
		VendorName: "CSRF / Auth Token",
		Category:   CategoryStrictlyNecessary,
		MatchAny:   []string{"csrf", "xsrf", "auth_token"},
	},
}

// Match reports whether a lowercase cookie name matches this entry: an exact
// MatchNames hit first, then any MatchAny substring.
func (v VendorEntry) Match(lowerName string) bool {
	for _, exact := range v.MatchNames {
		if lowerName == strings.ToLower(exact) {
			return true
		}
	}
	for _, sub := range v.MatchAny {
		if strings.Contains(lowerName, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// LookupVendor returns the first VendorList entry matching cookieName.
func LookupVendor(cookieName string) (VendorEntry, bool) {
	lower := strings.ToLower(cookieName)
	for _, entry := range VendorList {
		if entry.Match(lower) {
			return entry, true
		}
	}
	return VendorEntry{}, false
}
