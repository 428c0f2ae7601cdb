package classify

import (
	"math"
	"strconv"
	"time"

	"github.com/arc-self/apps/cookie-scan-core/internal/cookiemodel"
)

// DurationBucket is the four-way (plus expired) lifetime classification a
// cookie's Expires value falls into (spec §4.1 duration bucketing).
type DurationBucket string

const (
	DurationSession DurationBucket = "session"
	DurationShort   DurationBucket = "short"   // < 30 days
	DurationMedium  DurationBucket = "medium"  // 30-365 days
	DurationLong    DurationBucket = "long"    // > 365 days
	DurationExpired DurationBucket = "expired" // expires <= now
)

// BucketDuration resolves a cookie's Expires value into its duration bucket
// relative to now. An unparsable non-session Expires is treated as session,
// matching the fail-open stance the rest of the classifier takes on bad
// input.
func BucketDuration(expires string, now time.Time) DurationBucket {
	if expires == cookiemodel.SessionSentinel || expires == "" {
		return DurationSession
	}
	secs, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return DurationSession
	}
	expiry := time.Unix(secs, 0)
	if !expiry.After(now) {
		return DurationExpired
	}
	days := expiry.Sub(now).Hours() / 24
	switch {
	case days < 30:
		return DurationShort
	case days <= 365:
		return DurationMedium
	default:
		return DurationLong
	}
}

// FeatureVector is the structural signal set the model scores when a cookie
// matches neither the vendor list nor the rule engine (spec §4.1). Apart from
// NameLength, which score does not weigh, it carries no part of the name.
type FeatureVector struct {
	IsThirdParty bool
	IsSession    bool
	IsExpired    bool
	DurationDays float64
	Bucket       DurationBucket
	HTTPOnly     bool
	Secure       bool
	SameSiteNone bool
	NameLength   int
}

// ExtractFeatures builds a FeatureVector from an aggregated cookie and the
// third-party flag computed against the scanned domain.
func ExtractFeatures(c cookiemodel.AggregatedCookie, isThirdParty bool) FeatureVector {
	now := time.Now()
	bucket := BucketDuration(c.Expires, now)
	return FeatureVector{
		IsThirdParty: isThirdParty,
		IsSession:    bucket == DurationSession,
		IsExpired:    bucket == DurationExpired,
		DurationDays: durationDays(c.Expires, now),
		Bucket:       bucket,
		HTTPOnly:     c.HTTPOnly,
		Secure:       c.Secure,
		SameSiteNone: c.SameSite == cookiemodel.SameSiteNone,
		NameLength:   len(c.Name),
	}
}

// modelWeights are fixed coefficients for a small logistic classifier over
// FeatureVector, one set of weights per candidate category. There is no
// training pipeline in this repo; the weights encode the same heuristics the
// rule engine and vendor list use in word form (long-lived + third-party +
// SameSite=None correlates with advertising; short-lived + first-party +
// HttpOnly correlates with strictly-necessary) so the model acts as a
// fallback scorer rather than an independent classifier.
type modelWeights struct {
	bias         float64
	thirdParty   float64
	longDuration float64
	httpOnly     float64
	sameSiteNone float64
	isSession    float64
}

// categoryOrder fixes the evaluation order so that exact confidence ties
// resolve the same way on every run, independent of map iteration order.
var categoryOrder = []ClassificationCategory{
	CategoryStrictlyNecessary,
	CategoryAdvertising,
	CategoryAnalytics,
	CategoryFunctional,
}

var categoryWeights = map[ClassificationCategory]modelWeights{
	CategoryAdvertising: {
		bias: -1.2, thirdParty: 2.1, longDuration: 1.4, sameSiteNone: 0.9, httpOnly: -1.0, isSession: -1.1,
	},
	CategoryAnalytics: {
		bias: -1.0, thirdParty: 0.8, longDuration: 0.6, sameSiteNone: 0.2, httpOnly: -0.4, isSession: -0.6,
	},
	CategoryStrictlyNecessary: {
		bias: -0.8, thirdParty: -1.6, longDuration: -1.2, sameSiteNone: -0.8, httpOnly: 1.5, isSession: 1.3,
	},
	CategoryFunctional: {
		bias: -1.1, thirdParty: -0.6, longDuration: 0.1, sameSiteNone: -0.3, httpOnly: 0.3, isSession: 0.2,
	},
}

// durationDays returns the signed number of days between now and expiry: 0
// for session cookies, negative once a cookie has already expired.
func durationDays(expires string, now time.Time) float64 {
	if expires == cookiemodel.SessionSentinel || expires == "" {
		return 0
	}
	secs, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return 0
	}
	return time.Unix(secs, 0).Sub(now).Hours() / 24
}

func score(w modelWeights, f FeatureVector) float64 {
	z := w.bias
	if f.IsThirdParty {
		z += w.thirdParty
	}
	if f.Bucket == DurationLong {
		z += w.longDuration
	}
	if f.HTTPOnly {
		z += w.httpOnly
	}
	if f.SameSiteNone {
		z += w.sameSiteNone
	}
	if f.IsSession {
		z += w.isSession
	}
	return 1 / (1 + math.Exp(-z))
}

// PredictResult is the model's best guess plus its confidence (spec §4.1:
// ≥0.75 is high-confidence, 0.50-0.75 requires human review, <0.50 falls
// through to Unknown).
type PredictResult struct {
	Category   ClassificationCategory
	Confidence float64
}

// Predict scores every category and returns the highest-confidence one.
func Predict(f FeatureVector) PredictResult {
	best := PredictResult{Category: CategoryUnknown, Confidence: 0}
	for _, cat := range categoryOrder {
		conf := score(categoryWeights[cat], f)
		if conf > best.Confidence {
			best = PredictResult{Category: cat, Confidence: conf}
		}
	}
	return best
}
