package classify

import (
	"fmt"

	"github.com/arc-self/apps/cookie-scan-core/internal/cookiemodel"
)

// Confidence thresholds from spec §4.1: at or above HighConfidence the ML
// verdict is taken as-is; between ReviewConfidence and HighConfidence it's
// taken but flagged for human review; below ReviewConfidence it falls
// through to Unknown.
const (
	HighConfidenceThreshold   = 0.75
	ReviewConfidenceThreshold = 0.50
)

// Classifier runs the ordered resolution pipeline: per-domain override,
// vendor list, rule engine, ML model, Unknown fallback (spec §4.1).
type Classifier struct {
	overrides *DomainOverrides
}

// NewClassifier builds a Classifier against an (optionally nil) override table.
func NewClassifier(overrides *DomainOverrides) *Classifier {
	return &Classifier{overrides: overrides}
}

// Classify resolves one AggregatedCookie into a ClassifiedCookie. scanDomain
// is the site under scan, used to compute the third-party flag.
func (cl *Classifier) Classify(c cookiemodel.AggregatedCookie, scanDomain string) cookiemodel.ClassifiedCookie {
	isThirdParty := IsThirdParty(scanDomain, c.Domain)

	if cl.overrides != nil {
		if entry, ok := cl.overrides.Lookup(scanDomain, c.Name); ok {
			return cookiemodel.ClassifiedCookie{
				AggregatedCookie: c,
				Category:         entry.Category,
				Source:           cookiemodel.SourceOverride,
				Confidence:       1.0,
				IsThirdParty:     isThirdParty,
				Evidence:         []string{fmt.Sprintf("domain override: %s", entry.Notes)},
			}
		}
	}

	if vendor, ok := LookupVendor(c.Name); ok {
		return cookiemodel.ClassifiedCookie{
			AggregatedCookie: c,
			Category:         vendor.Category,
			Source:           cookiemodel.SourceVendor,
			Confidence:       1.0,
			IsThirdParty:     isThirdParty,
			VendorName:       vendor.VendorName,
			Evidence:         []string{fmt.Sprintf("matched vendor list entry %q", vendor.VendorName)},
		}
	}

	if rule, ok := MatchRules(c.Name); ok {
		return cookiemodel.ClassifiedCookie{
			AggregatedCookie: c,
			Category:         rule.Category,
			Source:           cookiemodel.SourceRuleEngine,
			Confidence:       0.95,
			IsThirdParty:     isThirdParty,
			Evidence:         []string{fmt.Sprintf("matched rule %q", rule.RuleName)},
		}
	}

	features := ExtractFeatures(c, isThirdParty)
	prediction := Predict(features)

	switch {
	case prediction.Confidence >= HighConfidenceThreshold:
		return cookiemodel.ClassifiedCookie{
			AggregatedCookie: c,
			Category:         prediction.Category,
			Source:           cookiemodel.SourceML,
			Confidence:       prediction.Confidence,
			IsThirdParty:     isThirdParty,
			Evidence:         []string{fmt.Sprintf("model predicted %s at %.2f confidence", prediction.Category, prediction.Confidence)},
		}
	case prediction.Confidence >= ReviewConfidenceThreshold:
		return cookiemodel.ClassifiedCookie{
			AggregatedCookie: c,
			Category:         prediction.Category,
			Source:           cookiemodel.SourceML,
			Confidence:       prediction.Confidence,
			RequiresReview:   true,
			IsThirdParty:     isThirdParty,
			Evidence:         []string{fmt.Sprintf("model predicted %s at %.2f confidence, below high-confidence threshold", prediction.Category, prediction.Confidence)},
		}
	default:
		return cookiemodel.ClassifiedCookie{
			AggregatedCookie: c,
			Category:         cookiemodel.CategoryUnknown,
			Source:           cookiemodel.SourceFallback,
			Confidence:       prediction.Confidence,
			RequiresReview:   true,
			IsThirdParty:     isThirdParty,
			Evidence:         []string{"no override, vendor, or rule match; model confidence below review threshold"},
		}
	}
}

// ClassifyAll classifies a batch of aggregated cookies against one domain.
func (cl *Classifier) ClassifyAll(cookies []cookiemodel.AggregatedCookie, scanDomain string) []cookiemodel.ClassifiedCookie {
	out := make([]cookiemodel.ClassifiedCookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, cl.Classify(c, scanDomain))
	}
	return out
}
