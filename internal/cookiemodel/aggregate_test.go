package cookiemodel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/apps/cookie-scan-core/internal/cookiemodel"
)

func TestAggregator_CanonicalPropertiesComeFromFirstFedPage(t *testing.T) {
	a := cookiemodel.NewAggregator()

	a.Feed(cookiemodel.PageResult{
		URL:     "https://example.com/a",
		Success: true,
		Cookies: []cookiemodel.CookieObservation{
			{Name: "sid", Domain: "example.com", Path: "/", Expires: cookiemodel.SessionSentinel, HashedValue: "h1"},
		},
	})
	a.Feed(cookiemodel.PageResult{
		URL:     "https://example.com/b",
		Success: true,
		Cookies: []cookiemodel.CookieObservation{
			{Name: "sid", Domain: "example.com", Path: "/other", Expires: "1999999999", HashedValue: "h2"},
		},
	})

	cookies := a.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "/", cookies[0].Path, "canonical record must come from the first page the cookie was seen on")
	assert.Equal(t, cookiemodel.SessionSentinel, cookies[0].Expires)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, cookies[0].FoundOnPages)
}

func TestAggregator_FailedPageContributesNothing(t *testing.T) {
	a := cookiemodel.NewAggregator()
	a.Feed(cookiemodel.PageResult{
		URL:     "https://example.com/broken",
		Success: false,
		Error:   "navigation timeout",
		Cookies: []cookiemodel.CookieObservation{{Name: "sid", Domain: "example.com"}},
	})
	assert.Empty(t, a.Cookies())
}

func TestAggregator_DeterministicForRepeatedInOrderFeed(t *testing.T) {
	build := func(order []int) []cookiemodel.AggregatedCookie {
		pages := []cookiemodel.PageResult{
			{URL: "https://example.com/0", Success: true, Cookies: []cookiemodel.CookieObservation{
				{Name: "sid", Domain: "example.com", Path: "/", HashedValue: "h0"},
			}},
			{URL: "https://example.com/1", Success: true, Cookies: []cookiemodel.CookieObservation{
				{Name: "sid", Domain: "example.com", Path: "/", HashedValue: "h0"},
				{Name: "_ga", Domain: "example.com", Path: "/", HashedValue: "h1"},
			}},
		}
		a := cookiemodel.NewAggregator()
		for _, i := range order {
			a.Feed(pages[i])
		}
		return a.Cookies()
	}

	// Feeding strictly in URL-index order is the contract Feed documents;
	// repeating the same in-order sequence must always produce the same result.
	first := build([]int{0, 1})
	second := build([]int{0, 1})
	assert.Equal(t, first, second)
}
