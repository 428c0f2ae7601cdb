package classify

import "regexp"

// Rule is one regex-driven classification rule, applied after the vendor
// list misses (spec §4.1) — broader pattern families than the vendor list's
// exact/substring names, for cookies that follow a convention without being
// a specifically known vendor.
type Rule struct {
	Name     string
	Pattern  *regexp.Regexp
	Category ClassificationCategory
}

var ruleEngine = []Rule{
	{
		Name:     "session-or-auth-token",
		Pattern:  regexp.MustCompile(`(?i)(session|token|auth|sid|csrf|xsrf)`),
		Category: CategoryStrictlyNecessary,
	},
	{
		Name:     "analytics-convention",
		Pattern:  regexp.MustCompile(`(?i)(analytics|_track|stat(s|counter)?|_pk_)`),
		Category: CategoryAnalytics,
	},
	{
		Name:     "advertising-convention",
		Pattern:  regexp.MustCompile(`(?i)(^ad[s_-]|_ad$|advert|retarget|doubleclick|banner)`),
		Category: CategoryAdvertising,
	},
	{
		Name:     "preference-convention",
		Pattern:  regexp.MustCompile(`(?i)(pref|settings|theme|consent)`),
		Category: CategoryFunctional,
	},
}

// RuleResult is a rule engine hit, carrying the rule name as evidence.
type RuleResult struct {
	RuleName string
	Category ClassificationCategory
}

// MatchRules runs the rule engine against a cookie name and returns the
// first match in declaration order.
func MatchRules(cookieName string) (RuleResult, bool) {
	for _, r := range ruleEngine {
		if r.Pattern.MatchString(cookieName) {
			return RuleResult{RuleName: r.Name, Category: r.Category}, true
		}
	}
	return RuleResult{}, false
}
